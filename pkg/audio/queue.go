package audio

import "sync"

// Queue is a thread-safe FIFO of sample buffers connecting the audio capture
// callback (the sole producer) to the background processing loop (the sole
// consumer). Push never blocks, which keeps the capture callback real-time
// safe; Pop is non-blocking and reports whether a buffer was available so the
// consumer can cooperatively yield instead of busy-waiting.
type Queue struct {
	mu    sync.Mutex
	items [][]float32
}

// NewQueue returns an empty, ready-to-use Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a sample buffer to the tail of the queue. The queue takes
// ownership of the slice; callers must not modify it afterwards.
func (q *Queue) Push(samples []float32) {
	q.mu.Lock()
	q.items = append(q.items, samples)
	q.mu.Unlock()
}

// Pop removes and returns the buffer at the head of the queue. The second
// return value is false when the queue is empty.
func (q *Queue) Pop() ([]float32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	head := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return head, true
}

// Len returns the number of queued buffers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear discards all queued buffers. Used when the session activates so that
// stale standby audio is not transcribed as a command.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
