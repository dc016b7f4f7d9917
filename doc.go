// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lcrq provides an unbounded lock-free MPMC FIFO queue.
//
// The queue is a linked chain of bounded concurrent rings (LCRQ,
// Morrison & Afek, "Fast Concurrent Queues for x86 Processors",
// PPoPP 2013). Each ring commits operations with a single 128-bit
// compare-and-swap per slot; when a ring saturates, producers splice a
// fresh ring onto the tail, and consumers unlink drained rings from the
// head. Enqueue therefore never fails and never blocks.
//
// # Quick Start
//
//	q := lcrq.NewLCRQ(1024)
//
//	// Producer: always succeeds
//	q.Enqueue(42)
//
//	// Consumer: non-blocking
//	v, err := q.Dequeue()
//	if lcrq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Builder API for tuning:
//
//	q := lcrq.New(1024).StarvationThreshold(64).Build()  // → *LCRQ
//	q := lcrq.New(4096).BuildPtr()                       // → *LCRQPtr
//	q := lcrq.New(16).BuildCRQ()                         // → *CRQ (single bounded ring)
//
// # Payload Flavors
//
// Two flavors share the same core:
//
//	LCRQ    - uint64 payloads (indices, handles, packed records)
//	LCRQPtr - unsafe.Pointer payloads (zero-copy object passing)
//
// Zero is the reserved slot sentinel: enqueueing 0 (or a nil pointer)
// panics. This is part of the package ABI — it keeps each slot a single
// 128-bit word with no separate occupancy bit.
//
// # Common Patterns
//
// Work distribution (MPMC):
//
//	q := lcrq.NewLCRQ(1024)
//
//	// Workers
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            job, err := q.Dequeue()
//	            if err != nil {
//	                backoff.Wait()
//	                continue
//	            }
//	            backoff.Reset()
//	            run(job)
//	        }
//	    }()
//	}
//
//	// Submit from anywhere: no backpressure handling needed
//	q.Enqueue(jobID)
//
// Zero-copy object passing:
//
//	q := lcrq.NewLCRQPtr(1024)
//
//	// Producer creates object once
//	msg := &Message{Data: largePayload}
//	q.Enqueue(unsafe.Pointer(msg))
//
//	// Consumer receives same pointer - no copy
//	ptr, _ := q.Dequeue()
//	msg := (*Message)(ptr)
//
// Pointer payloads travel as untyped words inside the rings, so the
// caller must keep enqueued objects reachable through another live
// reference (pool, arena, registry) until they are dequeued.
//
// # Ring Size and Growth
//
// NewLCRQ's ringSize is the capacity of each ring segment, not of the
// queue: the queue grows without bound by splicing segments. Ring size
// rounds up to the next power of 2 (minimum 2) and tunes the trade-off
// between allocation frequency and memory held per segment. 1024 is a
// reasonable production value.
//
// Drained, unlinked segments are reclaimed by the garbage collector;
// there is no Free or Close.
//
// # Starvation Closing
//
// Under pathological per-slot contention a producer can fail its
// compare-and-swap indefinitely while other producers succeed. A
// producer that fails StarvationThreshold consecutive rounds
// force-closes the ring and splices a fresh one, converting per-slot
// starvation into queue-level progress. The default threshold is 2R;
// StarvationThreshold(0) disables the heuristic.
//
// # Error Handling
//
// Dequeue returns [ErrWouldBlock] when the queue is observed empty. The
// error is sourced from [code.hybscloud.com/iox] for ecosystem
// consistency; it is a control flow signal, not a failure:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        process(v)
//	        continue
//	    }
//	    backoff.Wait()
//	}
//
// [ErrClosed] surfaces only from the bounded [CRQ] building block; the
// linked queue consumes it internally when splicing.
//
// For semantic error classification (delegates to iox):
//
//	lcrq.IsWouldBlock(err)  // true if queue empty
//	lcrq.IsSemantic(err)    // true if control flow signal
//	lcrq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Thread Safety
//
// All operations are safe for any number of concurrent producer and
// consumer goroutines. FIFO order is defined relative to the
// happens-before edges of the committing atomics: values enqueued before
// others (in that order) dequeue before them; ordering between
// concurrent enqueues is unspecified.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm
// verification. It tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established through atomic memory orderings on separate variables, and
// may report false positives on these algorithms. Tests incompatible
// with race detection are skipped via RaceEnabled.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering (including the 128-bit slot CAS), and
// [code.hybscloud.com/spin] for CPU pause instructions.
package lcrq
