package livetranscribe

import (
	"sync"
	"time"
)

// Segment is one contiguous run of accumulated samples, flushed as a unit
// to the speech recognizer.
type Segment []int16

// SegmentQueue hands completed segments from the capture thread to the
// consumer loop. FIFO and unbounded: segments are infrequent relative to
// frames, so the queue never grows far.
type SegmentQueue struct {
	mu    sync.Mutex
	items []Segment
	wake  chan struct{}
}

// NewSegmentQueue creates an empty queue.
func NewSegmentQueue() *SegmentQueue {
	return &SegmentQueue{wake: make(chan struct{}, 1)}
}

// Push appends a segment. Never blocks, safe from the driver thread.
func (q *SegmentQueue) Push(seg Segment) {
	q.mu.Lock()
	q.items = append(q.items, seg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop returns the oldest segment, waiting up to wait for one to arrive.
// The bounded wait lets the consumer re-evaluate phrase timing even when
// no audio is coming in.
func (q *SegmentQueue) Pop(wait time.Duration) (Segment, bool) {
	deadline := time.Now().Add(wait)
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			seg := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return seg, true
		}
		q.mu.Unlock()

		remain := time.Until(deadline)
		if remain <= 0 {
			return nil, false
		}
		timer := time.NewTimer(remain)
		select {
		case <-q.wake:
			timer.Stop()
		case <-timer.C:
			return nil, false
		}
	}
}

// Len returns the number of queued segments.
func (q *SegmentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
