package cache

import (
	"context"
	"time"
)

// AdvisoryCache holds serialized advisory responses (insight text, inventory
// reports) keyed by a content hash, so repeated questions skip the upstream
// model call.
type AdvisoryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type NoopAdvisoryCache struct{}

func (NoopAdvisoryCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopAdvisoryCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
