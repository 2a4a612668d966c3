// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable wall clock.
//
// The telemetry logger derives three things from the current time: the
// record timestamp added by enrichment, the UTC date and HHMMSS name of
// every partition file, and the date of the daily manifest. Production
// code injects Real(); tests inject Fake() and move time explicitly, for
// example across UTC midnight between two flushes.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 23, 59, 59, 0, time.UTC))
//	logger, _ := structlog.New(cfg, structlog.WithClock(c))
//	// ... log, flush ...
//	c.Advance(2 * time.Second) // next flush lands in the 2026/01/02 partition
//
// The logger never sleeps or waits on timers, so unlike a scheduling
// clock this interface only exposes Now.
package clock
