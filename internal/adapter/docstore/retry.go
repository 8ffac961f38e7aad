package docstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// RetryPolicy bounds read retries.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type retryObserver interface {
	GatewayRetry(op string)
}

// Retrying wraps a Store and retries Get and Query on domain.ErrTransient
// with exponential backoff. Writes are passed through and never retried.
type Retrying struct {
	Store
	policy   RetryPolicy
	log      *slog.Logger
	observer retryObserver
}

// NewRetrying wraps store. observer may be nil.
func NewRetrying(store Store, policy RetryPolicy, log *slog.Logger, observer retryObserver) *Retrying {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Retrying{
		Store:    store,
		policy:   policy,
		log:      log.With("adapter", "docstore_retry"),
		observer: observer,
	}
}

// Get retries transient failures.
func (r *Retrying) Get(ctx context.Context, collection, id string) (Record, error) {
	var rec Record
	err := r.retry(ctx, "get", func() error {
		var err error
		rec, err = r.Store.Get(ctx, collection, id)
		return err
	})
	return rec, err
}

// Query retries transient failures.
func (r *Retrying) Query(ctx context.Context, q Query) (Result, error) {
	var res Result
	err := r.retry(ctx, "query", func() error {
		var err error
		res, err = r.Store.Query(ctx, q)
		return err
	})
	return res, err
}

func (r *Retrying) retry(ctx context.Context, op string, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		exp.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		exp.MaxInterval = r.policy.MaxInterval
	}
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.policy.MaxAttempts-1)), ctx)

	operation := func() error {
		err := fn()
		if err != nil && !errors.Is(err, domain.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.WarnContext(ctx, "retrying read", slog.String("op", op), slog.Duration("wait", wait), slog.String("error", err.Error()))
		if r.observer != nil {
			r.observer.GatewayRetry(op)
		}
	}
	return backoff.RetryNotify(operation, b, notify)
}
