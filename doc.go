// Copyright ©2025 The vsbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vsbench is a cross-backend benchmark-and-verify harness.
//
// It runs the same logical computation on two execution backends (a trusted
// eager reference backend and a deferred-evaluation candidate backend),
// measures wall-clock latency over repeated trials, derives throughput from
// engine-reported work counters, and asserts numerical equivalence of the two
// outputs within tolerance.
//
// The harness is backend-agnostic. A backend exposes results through the
// Handle interface and advertises optional capabilities (queue draining,
// transfer-based synchronization, work counters) through small capability
// interfaces that the harness queries at runtime. The two backends shipped
// with this repository live in the eager and tensor subpackages; the concrete
// benchmark scenarios live in suite.
//
// Typical use:
//
//	dev := tensor.New()
//	h := vsbench.New(dev)
//	h.Group()
//	err := h.Compare("sum", refBuild, candBuild)
package vsbench
