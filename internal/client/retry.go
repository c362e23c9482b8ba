package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultRetryDelay = 5 * time.Second

// RetryPolicy paces handshake attempts. MaxAttempts of zero retries
// until the context is cancelled.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts uint64
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return backoff.WithContext(b, ctx)
}
