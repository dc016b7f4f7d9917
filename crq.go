// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// CRQ is a bounded lock-free MPMC ring of uint64 payloads, the segment
// type of the linked queue.
//
// Based on the CRQ algorithm from "Fast Concurrent Queues for x86
// Processors" (Morrison & Afek, PPoPP 2013). Producers and consumers
// claim positions with fetch-and-add on independent counters; a 128-bit
// CAS over each slot's (index, safe, value) entry commits operations,
// giving one heavyweight atomic per uncontended operation.
//
// A CRQ never reports full: when a producer finds the ring saturated (or
// starves), it sets the closed bit in the tail word. A closed ring
// refuses all further enqueues and never reopens; the linked queue
// reacts by splicing a successor ring onto next.
//
// Memory: n slots, 16 bytes of state per slot padded to a cache line.
type CRQ struct {
	_          pad
	head       atomix.Uint64 // Consumer index (FAA)
	_          pad
	tail       atomix.Uint64 // Producer index (FAA); bit 63 is the closed flag
	_          pad
	next       atomic.Pointer[CRQ] // Successor ring once this one closes
	_          pad
	ring       []slot
	mask       uint64 // R - 1
	size       uint64 // R
	starvation int64  // Failed enqueue rounds before closing; 0 disables
}

// NewCRQ creates a bounded ring with the default starvation threshold.
// Capacity rounds up to the next power of 2.
//
// Panics if ringSize < 2.
func NewCRQ(ringSize int) *CRQ {
	return New(ringSize).BuildCRQ()
}

// newCRQ builds a ring of exactly size slots; size must be a power of 2.
// Slot i starts as (index=i, safe, empty).
func newCRQ(size uint64, starvation int64) *CRQ {
	q := &CRQ{
		ring:       make([]slot, size),
		mask:       size - 1,
		size:       size,
		starvation: starvation,
	}

	for i := uint64(0); i < size; i++ {
		q.ring[i].entry.StoreRelaxed(packFlag63(true, i), empty)
	}

	return q
}

// Enqueue adds a value to the ring.
// Returns ErrClosed if the ring is closed or closes during the attempt.
//
// Panics if v is zero (the reserved slot sentinel).
func (q *CRQ) Enqueue(v uint64) error {
	if v == empty {
		panic("lcrq: value must be nonzero")
	}

	sw := spin.Wait{}
	var fails int64
	for {
		closed, t := splitFlag63(q.tail.AddAcqRel(1) - 1)
		if closed {
			return ErrClosed
		}

		s := &q.ring[t&q.mask]
		is, val := s.entry.LoadAcquire()
		safe, idx := splitFlag63(is)

		// The slot takes position t only when it is empty, belongs to
		// this lap or an earlier one, and no racing dequeue invalidated
		// it (or head proves no consumer owns t yet).
		if val == empty && idx <= t && (safe || q.head.LoadAcquire() <= t) {
			if s.entry.CompareAndSwapAcqRel(is, val, packFlag63(true, t), v) {
				return nil
			}
		}

		fails++
		head := q.head.LoadAcquire()
		if (head < t && t-head >= q.size) || q.isStarving(fails) {
			q.close()
			return ErrClosed
		}

		sw.Once()
	}
}

// Dequeue removes and returns the oldest value in the ring.
// Returns (0, ErrWouldBlock) if the ring was observed empty.
func (q *CRQ) Dequeue() (uint64, error) {
	sw := spin.Wait{}
	for {
		h := q.head.AddAcqRel(1) - 1
		s := &q.ring[h&q.mask]

		for {
			is, val := s.entry.LoadAcquire()
			safe, idx := splitFlag63(is)

			if idx > h {
				// A later lap already owns this cell; position h is gone.
				break
			}

			if val != empty {
				if idx == h {
					if s.entry.CompareAndSwapAcqRel(is, val, packFlag63(safe, h+q.size), empty) {
						return val, nil
					}
					continue
				}
				// The value belongs to an earlier position. Strip the
				// safe bit so a producer reusing this cell must consult
				// head before taking it.
				s.entry.CompareAndSwapAcqRel(is, val, packFlag63(false, idx), val)
				break
			}

			// Empty cell: advance its index past h so no producer can
			// fill the position this consumer has given up on.
			s.entry.CompareAndSwapAcqRel(is, val, packFlag63(safe, h+q.size), empty)
			break
		}

		if tail := flag63Value(q.tail.LoadAcquire()); tail <= h+1 {
			q.fixState()
			return 0, ErrWouldBlock
		}

		sw.Once()
	}
}

// isStarving reports whether an enqueuer has failed enough consecutive
// rounds to force the ring closed. Closing trades ring utilization for
// progress at the linked-queue layer.
func (q *CRQ) isStarving(fails int64) bool {
	return q.starvation > 0 && fails >= q.starvation
}

// close sets the closed bit in the tail word, preserving the counter.
func (q *CRQ) close() {
	for {
		w := q.tail.LoadAcquire()
		if w&flagBit != 0 {
			return
		}
		if q.tail.CompareAndSwapAcqRel(w, w|flagBit) {
			return
		}
	}
}

// fixState realigns tail with head after an emptiness observation.
// Consumers that overran the producers leave tail behind head, which
// would skew the close-on-full check; the CAS catches tail up while the
// closed bit rides along untouched.
func (q *CRQ) fixState() {
	for {
		t := q.tail.LoadAcquire()
		h := q.head.LoadAcquire()
		if t != q.tail.LoadAcquire() {
			continue
		}

		closed, tail := splitFlag63(t)
		if h <= tail {
			return
		}
		if q.tail.CompareAndSwapAcqRel(t, packFlag63(closed, h)) {
			return
		}
	}
}

// Closed reports whether the ring has been closed. A closed ring refuses
// all enqueues; values already inside remain dequeueable.
func (q *CRQ) Closed() bool {
	return q.tail.LoadAcquire()&flagBit != 0
}

// Cap returns the ring capacity.
func (q *CRQ) Cap() int {
	return int(q.size)
}
