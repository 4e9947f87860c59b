package channel

import (
	"context"
	"sync"
)

// Queue is an unbounded multi-producer single-consumer event queue. Push
// never blocks; Pop waits until an item arrives or the context is cancelled.
// Safe for concurrent use.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	wakeup chan struct{}
	pushed int64
	popped int64
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{wakeup: make(chan struct{}, 1)}
}

// Push appends an item to the queue. It always succeeds without blocking.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.pushed++
	q.mu.Unlock()

	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest item, blocking until one is available
// or the context is cancelled.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.popped++
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.wakeup:
		}
	}
}

// Len reports the current backlog.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pushed reports the total number of items ever pushed.
func (q *Queue[T]) Pushed() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}

// Popped reports the total number of items ever popped.
func (q *Queue[T]) Popped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popped
}
