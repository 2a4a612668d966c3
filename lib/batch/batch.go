// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch accumulates telemetry records per artifact type and
// hands full batches to a flush target.
//
// A [Manager] keeps one ordered buffer per artifact type, created
// lazily on the first append. When a buffer reaches the batch size, or
// an append is forced, the buffer is drained and passed whole to the
// [FlushFunc]. A single mutex covers every buffer and every flush, so a
// flush always writes exactly the records that were buffered for that
// type, in append order, and no append can slip in between the drain
// and the write.
//
// Counters per type:
//
//   - Rows counts every appended record, whether or not it was later
//     written.
//   - Writes counts successful flushes.
//   - Failed counts flushes whose target returned an error. The drained
//     records of a failed flush are not re-queued, so Rows can exceed
//     the rows actually on disk. Failed makes that gap visible.
package batch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// FlushFunc persists one drained batch. It is called with the
// manager's lock held and must not call back into the manager.
type FlushFunc func(artifactType string, records []*record.Record) error

// Counts are the per-type statistics of a manager.
type Counts struct {
	Rows   int64 `json:"rows"`
	Writes int64 `json:"writes"`
	Failed int64 `json:"failed"`
}

// Manager buffers records per artifact type. Safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	batchSize int
	flush     FlushFunc
	buffers   map[string][]*record.Record
	counts    map[string]*Counts

	// order lists artifact types in first-seen order so that FlushAll
	// and Stats iterate deterministically.
	order []string
}

// NewManager returns a manager that flushes a type's buffer when it
// holds batchSize records. batchSize must be positive.
func NewManager(batchSize int, flush FlushFunc) *Manager {
	if batchSize <= 0 {
		panic(fmt.Sprintf("batch: batchSize must be positive, got %d", batchSize))
	}
	if flush == nil {
		panic("batch: nil FlushFunc")
	}
	return &Manager{
		batchSize: batchSize,
		flush:     flush,
		buffers:   make(map[string][]*record.Record),
		counts:    make(map[string]*Counts),
	}
}

// Append adds rec to the buffer for artifactType and counts it as a
// row. If the buffer then holds batchSize records, or force is set,
// the buffer is flushed before Append returns and the flush error (if
// any) is returned. The manager takes ownership of rec.
func (m *Manager) Append(artifactType string, rec *record.Record, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := m.countsLocked(artifactType)
	m.buffers[artifactType] = append(m.buffers[artifactType], rec)
	counts.Rows++

	if force || len(m.buffers[artifactType]) >= m.batchSize {
		return m.flushLocked(artifactType)
	}
	return nil
}

// Flush drains the buffer for artifactType. Flushing an empty or
// unknown buffer is a no-op.
func (m *Manager) Flush(artifactType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked(artifactType)
}

// FlushAll drains every non-empty buffer in first-seen type order. A
// failing type does not stop the others; all errors are joined.
func (m *Manager) FlushAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, artifactType := range m.order {
		if err := m.flushLocked(artifactType); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) flushLocked(artifactType string) error {
	records := m.buffers[artifactType]
	if len(records) == 0 {
		return nil
	}
	// Detach before writing: the records leave the buffer whether or
	// not the write succeeds.
	m.buffers[artifactType] = nil

	counts := m.countsLocked(artifactType)
	if err := m.flush(artifactType, records); err != nil {
		counts.Failed++
		return fmt.Errorf("writing batch for %s: %w", artifactType, err)
	}
	counts.Writes++
	return nil
}

func (m *Manager) countsLocked(artifactType string) *Counts {
	counts, ok := m.counts[artifactType]
	if !ok {
		counts = &Counts{}
		m.counts[artifactType] = counts
		m.order = append(m.order, artifactType)
	}
	return counts
}

// Stats returns a snapshot of the per-type counters.
func (m *Manager) Stats() map[string]Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]Counts, len(m.counts))
	for artifactType, counts := range m.counts {
		snapshot[artifactType] = *counts
	}
	return snapshot
}

// Types returns every artifact type seen so far, in first-seen order.
func (m *Manager) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Pending returns the number of buffered records for artifactType.
func (m *Manager) Pending(artifactType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers[artifactType])
}

// PendingTypes returns the artifact types with buffered records, in
// first-seen order.
func (m *Manager) PendingTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []string
	for _, artifactType := range m.order {
		if len(m.buffers[artifactType]) > 0 {
			pending = append(pending, artifactType)
		}
	}
	return pending
}
