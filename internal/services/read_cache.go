package services

import "context"

// ReadCache holds derived read projections between writes. Implementations must
// treat a missing key as (false, nil); errors are logged by callers and never fail a read.
type ReadCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheKeyCounts = "meals:counts"
	cacheKeyNames  = "meals:names"
)

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
func (noopCache) Delete(context.Context, ...string) error        { return nil }

// NoopCache disables read caching.
func NoopCache() ReadCache { return noopCache{} }
