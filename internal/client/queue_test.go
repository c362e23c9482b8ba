package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Speaker/internal/domain"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")
	require.Equal(t, 3, q.Len())

	ctx := context.Background()
	for _, want := range []domain.Token{"a", "b", "c"} {
		got, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueuePopWaitsForPush(t *testing.T) {
	q := NewQueue()
	got := make(chan domain.Token, 1)
	go func() {
		tok, err := q.Pop(context.Background())
		if err == nil {
			got <- tok
		}
	}()

	select {
	case <-got:
		t.Fatal("pop returned on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push("late")
	select {
	case tok := <-got:
		assert.Equal(t, domain.Token("late"), tok)
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestQueuePopHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 100
	q := NewQueue()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(domain.Token(fmt.Sprintf("%d-%d", p, i)))
			}
		}(p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seen := make(map[domain.Token]bool)
	last := make(map[int]int)
	for len(seen) < producers*perProducer {
		tok, err := q.Pop(ctx)
		require.NoError(t, err)
		require.False(t, seen[tok], "duplicate %s", tok)
		seen[tok] = true

		var p, i int
		_, err = fmt.Sscanf(string(tok), "%d-%d", &p, &i)
		require.NoError(t, err)
		if prev, ok := last[p]; ok {
			require.Greater(t, i, prev, "producer %d out of order", p)
		}
		last[p] = i
	}
	wg.Wait()
	assert.Equal(t, 0, q.Len())
}
