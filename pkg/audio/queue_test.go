package audio

import (
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	q.Push([]float32{1})
	q.Push([]float32{2})
	q.Push([]float32{3})

	for _, want := range []float32{1, 2, 3} {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("expected a buffer, queue empty")
		}
		if got[0] != want {
			t.Errorf("got %v, want %v", got[0], want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected empty queue after draining")
	}
}

func TestQueue_Clear(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	q.Push([]float32{1})
	q.Push([]float32{2})
	q.Clear()

	if q.Len() != 0 {
		t.Errorf("got len %d after Clear, want 0", q.Len())
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected Pop to report empty after Clear")
	}
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push([]float32{float32(i)})
		}
	}()

	received := 0
	for received < n {
		if _, ok := q.Pop(); ok {
			received++
		}
	}
	wg.Wait()

	if q.Len() != 0 {
		t.Errorf("queue not drained: %d buffers left", q.Len())
	}
}
