package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// Remote store calls get a bounded retry with exponential backoff.
// Two retries on top of the initial attempt; exhaustion surfaces as
// ErrStoreUnavailable so handlers can report a generic failure.
const maxRetries = 2

type retryStore struct {
	inner interfaces.RowStore
}

// WithRetry wraps a RowStore so each call is retried on transient
// failure. Intended for the remote backends only; the in-memory store
// never needs it.
func WithRetry(inner interfaces.RowStore) interfaces.RowStore {
	return &retryStore{inner: inner}
}

func (r *retryStore) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *retryStore) Rows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := r.retry(ctx, func() error {
		var err error
		rows, err = r.inner.Rows(ctx)
		return err
	})
	return rows, err
}

func (r *retryStore) Row(ctx context.Context, row int) ([]string, error) {
	var cells []string
	err := r.retry(ctx, func() error {
		var err error
		cells, err = r.inner.Row(ctx, row)
		return err
	})
	return cells, err
}

func (r *retryStore) Cell(ctx context.Context, row, col int) (string, error) {
	var value string
	err := r.retry(ctx, func() error {
		var err error
		value, err = r.inner.Cell(ctx, row, col)
		return err
	})
	return value, err
}

func (r *retryStore) SetCell(ctx context.Context, row, col int, value string) error {
	return r.retry(ctx, func() error {
		return r.inner.SetCell(ctx, row, col, value)
	})
}

func (r *retryStore) Append(ctx context.Context, cells []string) error {
	return r.retry(ctx, func() error {
		return r.inner.Append(ctx, cells)
	})
}

var _ interfaces.RowStore = (*retryStore)(nil)
