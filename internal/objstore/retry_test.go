package objstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/internal/errors"
)

// flakyBackend fails with a transient error a fixed number of times before
// succeeding, letting withRetry's backoff loop be exercised without a real
// network call.
type flakyBackend struct {
	failuresLeft int
	failWith     error
	calls        int
}

func (b *flakyBackend) Kind() string { return "flaky" }

func (b *flakyBackend) GetAll(ctx context.Context, key string) ([]byte, error) {
	b.calls++
	if b.failuresLeft > 0 {
		b.failuresLeft--
		return nil, b.failWith
	}
	return []byte("ok"), nil
}

func (b *flakyBackend) ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error {
	return nil
}
func (b *flakyBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	return nil, nil
}
func (b *flakyBackend) Head(ctx context.Context, key string) (int64, error) { return 0, nil }
func (b *flakyBackend) Close() error                                        { return nil }

func fastRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   5,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		TotalBudget:   time.Second,
	}
}

func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	backend := &flakyBackend{failuresLeft: 2, failWith: errors.New(ErrNetwork, "timeout", nil)}
	r := &Reader{backend: backend, retry: fastRetryPolicy()}

	data, err := r.GetAll(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, 3, backend.calls)
}

func TestWithRetry_NonTransientFailsImmediately(t *testing.T) {
	backend := &flakyBackend{failuresLeft: 5, failWith: errors.New(ErrNotFound, "missing", nil)}
	r := &Reader{backend: backend, retry: fastRetryPolicy()}

	_, err := r.GetAll(context.Background(), "key")
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestWithRetry_ExhaustsMaxAttempts(t *testing.T) {
	backend := &flakyBackend{failuresLeft: 100, failWith: errors.New(ErrNetwork, "timeout", nil)}
	policy := fastRetryPolicy()
	r := &Reader{backend: backend, retry: policy}

	_, err := r.GetAll(context.Background(), "key")
	require.Error(t, err)
	assert.Equal(t, policy.MaxAttempts, backend.calls)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	backend := &flakyBackend{failuresLeft: 0}
	r := &Reader{backend: backend, retry: fastRetryPolicy()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetAll(ctx, "key")
	require.Error(t, err)
	assert.Equal(t, errors.KindCancelled, errors.Kind(err))
}
