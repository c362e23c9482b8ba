package client

import (
	"context"
	"sync"

	"github.com/dkeye/Speaker/internal/domain"
)

// Queue is an unbounded FIFO of tokens waiting to be sent.
// Push is safe from any goroutine and never blocks; Pop is meant for a
// single consumer.
type Queue struct {
	mu     sync.Mutex
	items  []domain.Token
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

func (q *Queue) Push(t domain.Token) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop waits until a token is available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (domain.Token, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			t := q.items[0]
			q.items[0] = ""
			q.items = q.items[1:]
			q.mu.Unlock()
			return t, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
