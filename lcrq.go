// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

import (
	"sync/atomic"
	"unsafe"
)

// LCRQ is an unbounded lock-free MPMC FIFO queue of uint64 payloads.
//
// The queue is a linked chain of bounded rings. Producers enqueue into
// the tail ring; when it closes (full or starving), the producer splices
// a fresh ring onto the chain. Consumers dequeue from the head ring and
// unlink it once it drains and a successor exists. The chain is
// append-only at the tail and unlink-only at the head, so it never
// cycles, and it always contains at least one ring.
//
// Unlinked rings are reclaimed by the garbage collector once no
// goroutine can reach them; the chain links are traced pointers.
//
// head and tail live on separate cache lines to keep producer and
// consumer traffic apart.
type LCRQ struct {
	_          pad
	tail       atomic.Pointer[CRQ] // Ring accepting enqueues
	_          pad
	head       atomic.Pointer[CRQ] // Ring serving dequeues
	_          pad
	size       uint64 // Capacity of each spliced ring
	starvation int64
}

// NewLCRQ creates an unbounded queue whose ring segments hold ringSize
// values each. Ring size rounds up to the next power of 2; it tunes
// splice frequency, not queue capacity.
//
// Panics if ringSize < 2.
func NewLCRQ(ringSize int) *LCRQ {
	return New(ringSize).Build()
}

func newLCRQ(o Options) *LCRQ {
	q := &LCRQ{}
	q.init(o)
	return q
}

func (q *LCRQ) init(o Options) {
	q.size = uint64(roundToPow2(o.ringSize))
	q.starvation = o.resolveStarvation(q.size)

	first := newCRQ(q.size, q.starvation)
	q.tail.Store(first)
	q.head.Store(first)
}

// Enqueue adds a value to the queue. It always succeeds: a closed tail
// ring is replaced by splicing a fresh one onto the chain.
//
// Panics if v is zero (the reserved slot sentinel).
func (q *LCRQ) Enqueue(v uint64) {
	if v == empty {
		panic("lcrq: value must be nonzero")
	}

	for {
		c := q.tail.Load()

		if next := c.next.Load(); next != nil {
			// Tail lags behind a finished splice; help it forward.
			q.tail.CompareAndSwap(c, next)
			continue
		}

		if c.Enqueue(v) == nil {
			return
		}

		// Ring closed. Seed a fresh ring with v and try to splice it.
		n := newCRQ(q.size, q.starvation)
		n.Enqueue(v)
		if c.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(c, n) // best effort; the lag check above fixes losses
			return
		}
		// Lost the splice race: drop n (no other goroutine has seen it)
		// and retry against the winner's ring.
	}
}

// Dequeue removes and returns the oldest value in the queue.
// Returns (0, ErrWouldBlock) if the queue was observed empty.
func (q *LCRQ) Dequeue() (uint64, error) {
	for {
		c := q.head.Load()

		if v, err := c.Dequeue(); err == nil {
			return v, nil
		}

		next := c.next.Load()
		if next == nil {
			// Head ring empty with no successor: the queue is empty.
			return 0, ErrWouldBlock
		}

		// A producer may have slipped in between the empty observation
		// and the next check; only after a second empty observation is
		// it safe to abandon this ring.
		if v, err := c.Dequeue(); err == nil {
			return v, nil
		}

		q.head.CompareAndSwap(c, next)
	}
}

// RingSize returns the capacity of each ring segment.
func (q *LCRQ) RingSize() int {
	return int(q.size)
}

// LCRQPtr is an unbounded lock-free MPMC FIFO queue of unsafe.Pointer
// payloads, sharing the LCRQ core with the pointer word stored as the
// slot payload.
//
// Ownership semantics: the producer transfers ownership to the consumer.
// After enqueueing, the producer should not access the object. The
// caller must keep enqueued objects reachable (pool, arena, or another
// live reference): inside the ring the pointer travels as a payload word
// the collector does not trace.
type LCRQPtr struct {
	q LCRQ
}

// NewLCRQPtr creates an unbounded pointer queue whose ring segments hold
// ringSize values each. Ring size rounds up to the next power of 2.
//
// Panics if ringSize < 2.
func NewLCRQPtr(ringSize int) *LCRQPtr {
	return New(ringSize).BuildPtr()
}

// Enqueue adds a pointer to the queue. It always succeeds.
// Panics if p is nil (nil maps to the reserved slot sentinel).
func (q *LCRQPtr) Enqueue(p unsafe.Pointer) {
	if p == nil {
		panic("lcrq: pointer must be non-nil")
	}
	q.q.Enqueue(uint64(uintptr(p)))
}

// Dequeue removes and returns the oldest pointer in the queue.
// Returns (nil, ErrWouldBlock) if the queue was observed empty.
func (q *LCRQPtr) Dequeue() (unsafe.Pointer, error) {
	v, err := q.q.Dequeue()
	if err != nil {
		return nil, err
	}
	return *(*unsafe.Pointer)(unsafe.Pointer(&v)), nil
}

// RingSize returns the capacity of each ring segment.
func (q *LCRQPtr) RingSize() int {
	return q.q.RingSize()
}
