// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

import "unsafe"

// Queue is the combined producer-consumer interface for an unbounded
// FIFO queue of uint64 payloads.
//
// Enqueue always succeeds (the queue grows by splicing rings), so unlike
// a bounded queue it carries no error. Dequeue returns ErrWouldBlock when
// the queue is observed empty.
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
// Track counts in application logic when needed.
type Queue interface {
	Producer
	Consumer
	RingSize() int
}

// Producer is the interface for enqueueing uint64 payloads.
type Producer interface {
	// Enqueue adds a value to the queue. It never fails; under
	// contention it may retry internally, but some operation always
	// completes in a bounded number of steps (lock-free).
	//
	// Panics if v is zero: zero is the reserved slot sentinel.
	Enqueue(v uint64)
}

// Consumer is the interface for dequeueing uint64 payloads.
type Consumer interface {
	// Dequeue removes and returns the oldest value in the queue.
	// Returns (0, ErrWouldBlock) if the queue was observed empty.
	Dequeue() (uint64, error)
}

// QueuePtr is the combined interface for unsafe.Pointer queues.
//
// QueuePtr passes pointers directly without copying. The producer
// transfers ownership to the consumer: after enqueueing, the producer
// should not access the object.
//
// Example:
//
//	q := lcrq.NewLCRQPtr(1024)
//
//	// Producer
//	msg := &Message{Data: payload}
//	q.Enqueue(unsafe.Pointer(msg))
//	// msg ownership transferred - do not use msg after this
//
//	// Consumer
//	ptr, _ := q.Dequeue()
//	msg := (*Message)(ptr)
type QueuePtr interface {
	ProducerPtr
	ConsumerPtr
	RingSize() int
}

// ProducerPtr enqueues unsafe.Pointer payloads.
type ProducerPtr interface {
	// Enqueue adds a pointer to the queue. It never fails.
	// Panics if p is nil: nil maps to the reserved slot sentinel.
	Enqueue(p unsafe.Pointer)
}

// ConsumerPtr dequeues unsafe.Pointer payloads.
type ConsumerPtr interface {
	// Dequeue removes and returns the oldest pointer in the queue.
	// Returns (nil, ErrWouldBlock) if the queue was observed empty.
	Dequeue() (unsafe.Pointer, error)
}
