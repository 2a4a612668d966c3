// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"fmt"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusWarn  Status = "warn"
	StatusSkip  Status = "skip"
	StatusFixed Status = "fixed"
)

// FixAction repairs a failed check.
type FixAction func(ctx context.Context) error

// Result holds the outcome of a single check. Fixable failures carry a
// FixHint and an unexported fix function.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	FixHint string `json:"fix_hint,omitempty"`
	fix     FixAction
}

// HasFix reports whether this result carries a fix action.
func (r *Result) HasFix() bool {
	return r.fix != nil
}

// Pass creates a passing result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing result with no automatic fix.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// FailWithFix creates a failing result with an automatic fix.
func FailWithFix(name, message, fixHint string, fix FixAction) Result {
	return Result{Name: name, Status: StatusFail, Message: message, FixHint: fixHint, fix: fix}
}

// Warn creates a warning. Warnings do not fail the health check.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped result, used when a prerequisite check
// failed.
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// ExecuteFixes runs the fix action of each fixable failure, updating
// results in place, and returns the number of fixes applied. Failed
// fixes leave the result failing with the error appended.
func ExecuteFixes(ctx context.Context, results []Result) int {
	fixed := 0
	for i := range results {
		if results[i].Status != StatusFail || results[i].fix == nil {
			continue
		}
		if err := results[i].fix(ctx); err != nil {
			results[i].Message = fmt.Sprintf("%s (fix failed: %v)", results[i].Message, err)
			continue
		}
		results[i].Status = StatusFixed
		fixed++
	}
	return fixed
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// Summary is the machine-readable form of a health run.
type Summary struct {
	Checks   []Result `json:"checks"`
	OK       bool     `json:"ok"`
	Manifest string   `json:"manifest,omitempty"`
	Fixed    int      `json:"fixed,omitempty"`
}

// Summarize builds the Summary of results. manifestDate is the date
// of the manifest the checks read, empty when none was found.
func Summarize(results []Result, manifestDate string, fixed int) Summary {
	return Summary{
		Checks:   results,
		OK:       !Failed(results),
		Manifest: manifestDate,
		Fixed:    fixed,
	}
}
