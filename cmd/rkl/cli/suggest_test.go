// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"health", "health", 0},
		{"helth", "health", 1},
		{"mainfest", "manifest", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if got := levenshtein(test.b, test.a); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetric)", test.b, test.a, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "log"}, {Name: "manifest"}, {Name: "export"}}
	if got := suggestCommand("mainfest", commands); got != "manifest" {
		t.Errorf("suggestCommand(mainfest) = %q", got)
	}
	if got := suggestCommand("unrelated-words", commands); got != "" {
		t.Errorf("suggestCommand(unrelated-words) = %q, want empty", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("base-dir", "", "")
	flagSet.StringP("type", "t", "", "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--base-dri", "x"}, "--base-dir"},
		{[]string{"--typ=x"}, "--type"},
		{[]string{"--type", "x", "--basedir"}, "--base-dir"},
		{[]string{"-t", "x"}, ""},
		{[]string{"--completely-different"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, flagSet); got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
