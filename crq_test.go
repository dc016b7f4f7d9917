// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

import (
	"errors"
	"testing"
)

// Ring internals are exercised white-box here; the small ring size
// forces wrap-around and closing within a handful of operations.

func TestCRQNewState(t *testing.T) {
	q := newCRQ(4, 0)

	if h := q.head.LoadAcquire(); h != 0 {
		t.Fatalf("head: got %d, want 0", h)
	}
	closed, tail := splitFlag63(q.tail.LoadAcquire())
	if closed || tail != 0 {
		t.Fatalf("tail: got (closed=%v, %d), want (false, 0)", closed, tail)
	}
	if q.next.Load() != nil {
		t.Fatal("next: got non-nil, want nil")
	}
	if len(q.ring) != 4 {
		t.Fatalf("ring length: got %d, want 4", len(q.ring))
	}
	if q.Closed() {
		t.Fatal("fresh ring reports closed")
	}
}

func TestCRQEnqueueDequeue(t *testing.T) {
	q := NewCRQ(4)

	for i := range 4 {
		if err := q.Enqueue(uint64(100 + i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if val != uint64(100+i) {
			t.Fatalf("dequeue %d: got %d, want %d", i, val, 100+i)
		}
	}
}

func TestCRQFullClosesRing(t *testing.T) {
	q := NewCRQ(4)

	for i := range 4 {
		if err := q.Enqueue(uint64(100 + i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	// The ring never reports full: the saturated enqueue closes it.
	if err := q.Enqueue(999); !errors.Is(err, ErrClosed) {
		t.Fatalf("full enqueue: got %v, want ErrClosed", err)
	}
	if !q.Closed() {
		t.Fatal("ring not closed after saturated enqueue")
	}

	// Values already inside remain dequeueable.
	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("dequeue %d after close: %v", i, err)
		}
		if val != uint64(100+i) {
			t.Fatalf("dequeue %d after close: got %d, want %d", i, val, 100+i)
		}
	}
	if _, err := q.Dequeue(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("drained dequeue: got %v, want ErrWouldBlock", err)
	}
}

func TestCRQEmptyDequeue(t *testing.T) {
	q := NewCRQ(4)

	if _, err := q.Dequeue(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("empty dequeue: got %v, want ErrWouldBlock", err)
	}

	// An empty dequeue consumes a position but must not break the ring.
	if err := q.Enqueue(7); err != nil {
		t.Fatalf("enqueue after empty dequeue: %v", err)
	}
	val, err := q.Dequeue()
	if err != nil || val != 7 {
		t.Fatalf("dequeue: got (%d, %v), want (7, nil)", val, err)
	}
}

func TestCRQWrapAround(t *testing.T) {
	q := NewCRQ(4)

	// Alternating enqueue/dequeue crosses the ring boundary many times
	// without ever filling it, so the ring stays open throughout.
	for i := range 40 {
		if err := q.Enqueue(uint64(1000 + i)); err != nil {
			t.Fatalf("round %d enqueue: %v", i, err)
		}
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("round %d dequeue: %v", i, err)
		}
		if val != uint64(1000+i) {
			t.Fatalf("round %d: got %d, want %d", i, val, 1000+i)
		}
	}
	if q.Closed() {
		t.Fatal("ring closed during alternating use")
	}
}

func TestCRQSlotIndexCongruence(t *testing.T) {
	q := NewCRQ(4)

	check := func(when string) {
		t.Helper()
		for i := range q.ring {
			is, _ := q.ring[i].entry.LoadAcquire()
			_, idx := splitFlag63(is)
			if idx%q.size != uint64(i) {
				t.Fatalf("%s: slot %d index %d not congruent mod %d", when, i, idx, q.size)
			}
			if idx < uint64(i) {
				t.Fatalf("%s: slot %d index %d below position", when, i, idx)
			}
		}
	}

	check("fresh")
	for i := range 10 {
		q.Enqueue(uint64(1 + i))
		check("after enqueue")
		q.Dequeue()
		check("after dequeue")
	}
	q.Dequeue() // empty dequeue advances the slot index too
	check("after empty dequeue")
}

func TestCRQMonotonicCounters(t *testing.T) {
	q := NewCRQ(4)

	prevHead, prevTail := uint64(0), uint64(0)
	step := func() {
		t.Helper()
		h := q.head.LoadAcquire()
		tail := flag63Value(q.tail.LoadAcquire())
		if h < prevHead {
			t.Fatalf("head went backwards: %d -> %d", prevHead, h)
		}
		if tail < prevTail {
			t.Fatalf("tail went backwards: %d -> %d", prevTail, tail)
		}
		prevHead, prevTail = h, tail
	}

	for i := range 8 {
		q.Enqueue(uint64(1 + i))
		step()
		q.Dequeue()
		step()
	}
	q.Dequeue()
	step()
}

func TestCRQClosePreservesTail(t *testing.T) {
	q := NewCRQ(4)

	for i := range 3 {
		q.Enqueue(uint64(10 + i))
	}

	q.close()
	if !q.Closed() {
		t.Fatal("ring not closed")
	}
	if tail := flag63Value(q.tail.LoadAcquire()); tail != 3 {
		t.Fatalf("tail counter after close: got %d, want 3", tail)
	}

	// close is idempotent.
	q.close()
	if tail := flag63Value(q.tail.LoadAcquire()); tail != 3 {
		t.Fatalf("tail counter after double close: got %d, want 3", tail)
	}

	if err := q.Enqueue(99); !errors.Is(err, ErrClosed) {
		t.Fatalf("closed enqueue: got %v, want ErrClosed", err)
	}
}

func TestCRQFixStatePreservesClosedBit(t *testing.T) {
	q := NewCRQ(4)
	q.Enqueue(42)
	q.close()

	if val, err := q.Dequeue(); err != nil || val != 42 {
		t.Fatalf("dequeue on closed ring: got (%d, %v), want (42, nil)", val, err)
	}

	// The drained dequeue overruns tail; fixState realigns tail to head
	// and must not drop the closed bit while doing so.
	if _, err := q.Dequeue(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("drained dequeue: got %v, want ErrWouldBlock", err)
	}
	if !q.Closed() {
		t.Fatal("closed bit lost by fixState")
	}
	closed, tail := splitFlag63(q.tail.LoadAcquire())
	if !closed || tail != q.head.LoadAcquire() {
		t.Fatalf("tail after fixState: got (closed=%v, %d), want (true, %d)",
			closed, tail, q.head.LoadAcquire())
	}
}

func TestCRQStarvationPolicy(t *testing.T) {
	q := newCRQ(4, 8)
	if q.isStarving(7) {
		t.Fatal("starving below threshold")
	}
	if !q.isStarving(8) {
		t.Fatal("not starving at threshold")
	}

	disabled := newCRQ(4, 0)
	if disabled.isStarving(1 << 20) {
		t.Fatal("disabled hook reported starvation")
	}
}

func TestCRQCapacityRounding(t *testing.T) {
	if got := NewCRQ(3).Cap(); got != 4 {
		t.Fatalf("Cap(3): got %d, want 4", got)
	}
	if got := NewCRQ(4).Cap(); got != 4 {
		t.Fatalf("Cap(4): got %d, want 4", got)
	}
	if got := NewCRQ(1000).Cap(); got != 1024 {
		t.Fatalf("Cap(1000): got %d, want 1024", got)
	}
}

func TestCRQZeroValuePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for zero value")
		}
	}()
	NewCRQ(4).Enqueue(0)
}

func TestCRQSmallCapacityPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for capacity < 2")
		}
	}()
	NewCRQ(1)
}
