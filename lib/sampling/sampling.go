// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampling decides per artifact type whether a record is kept.
//
// Each artifact type has a keep probability in [0,1]; types without a
// configured rate are always kept. A rate of 1 (or more) keeps every
// record and a rate of 0 (or less) drops every record without
// consulting the random source, so the boundary cases are exact.
package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Source supplies uniform floats in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// globalSource draws from the math/rand/v2 top-level generator, which
// is safe for concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Sampler holds per-type keep rates. Safe for concurrent use.
type Sampler struct {
	rates map[string]float64

	// mu serializes draws from a caller-supplied source. The default
	// global source needs no locking and leaves lock false.
	mu     sync.Mutex
	lock   bool
	source Source
}

// New returns a sampler for the given rates. The map is copied. A nil
// source selects the process-wide math/rand/v2 generator.
func New(rates map[string]float64, source Source) *Sampler {
	copied := make(map[string]float64, len(rates))
	for artifactType, rate := range rates {
		copied[artifactType] = rate
	}
	sampler := &Sampler{rates: copied, source: source, lock: source != nil}
	if source == nil {
		sampler.source = globalSource{}
	}
	return sampler
}

// Rate returns the keep probability for artifactType, 1.0 when none is
// configured.
func (s *Sampler) Rate(artifactType string) float64 {
	if rate, ok := s.rates[artifactType]; ok {
		return rate
	}
	return 1.0
}

// ShouldSample reports whether a record of artifactType should be
// kept. Only rates strictly between 0 and 1 consume a random draw.
func (s *Sampler) ShouldSample(artifactType string) bool {
	rate := s.Rate(artifactType)
	if rate >= 1.0 {
		return true
	}
	if rate <= 0.0 {
		return false
	}
	return s.draw() < rate
}

func (s *Sampler) draw() float64 {
	if !s.lock {
		return s.source.Float64()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source.Float64()
}

// ValidateRates checks that every rate lies in [0,1].
func ValidateRates(rates map[string]float64) error {
	for artifactType, rate := range rates {
		if math.IsNaN(rate) || rate < 0 || rate > 1 {
			return fmt.Errorf("sampling rate for %q is %v, must be within [0,1]", artifactType, rate)
		}
	}
	return nil
}
