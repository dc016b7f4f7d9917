// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

// Options configures queue creation.
type Options struct {
	// Ring capacity (rounds up to next power of 2)
	ringSize int

	// Consecutive failed enqueue rounds before a ring closes itself.
	// -1 selects the default of 2R; 0 disables the heuristic.
	starvation int
}

// resolveStarvation maps the configured threshold onto a ring of the
// given capacity.
func (o Options) resolveStarvation(ringSize uint64) int64 {
	if o.starvation >= 0 {
		return int64(o.starvation)
	}
	return 2 * int64(ringSize)
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Unbounded queue with production-sized rings
//	q := lcrq.New(1024).Build()
//
//	// Close rings aggressively under contention
//	q := lcrq.New(1024).StarvationThreshold(64).Build()
//
//	// Pointer payloads
//	q := lcrq.New(4096).BuildPtr()
type Builder struct {
	opts Options
}

// New creates a queue builder with the given ring size.
//
// Ring size is the capacity of each ring segment in the linked chain,
// not a bound on the queue: the queue grows by splicing segments. It
// rounds up to the next power of 2.
//
// Panics if ringSize < 2.
func New(ringSize int) *Builder {
	if ringSize < 2 {
		panic("lcrq: ring size must be >= 2")
	}
	return &Builder{opts: Options{ringSize: ringSize, starvation: -1}}
}

// StarvationThreshold sets how many consecutive failed enqueue rounds a
// producer tolerates before force-closing the current ring and splicing
// a fresh one. Lower values favor progress under heavy per-slot
// contention at the cost of ring utilization.
//
// The default is 2R for ring capacity R. Zero disables the heuristic;
// rings then close only when full.
//
// Panics if n < 0.
func (b *Builder) StarvationThreshold(n int) *Builder {
	if n < 0 {
		panic("lcrq: starvation threshold must be >= 0")
	}
	b.opts.starvation = n
	return b
}

// Build creates an unbounded LCRQ for uint64 payloads.
func (b *Builder) Build() *LCRQ {
	return newLCRQ(b.opts)
}

// BuildPtr creates an unbounded LCRQ for unsafe.Pointer payloads.
func (b *Builder) BuildPtr() *LCRQPtr {
	q := &LCRQPtr{}
	q.q.init(b.opts)
	return q
}

// BuildCRQ creates a single bounded ring. Most callers want Build;
// a lone ring closes itself when it fills up and never reopens.
func (b *Builder) BuildCRQ() *CRQ {
	size := uint64(roundToPow2(b.opts.ringSize))
	return newCRQ(size, b.opts.resolveStarvation(size))
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
