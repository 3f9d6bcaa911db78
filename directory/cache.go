// directory/cache.go
package directory

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrCacheMiss is returned by a Cache when id has no cached name.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	GetName(ctx context.Context, id string) (string, error)
	SetName(ctx context.Context, id, name string) error
	Forget(ctx context.Context, id string) error
}

// Cached puts cache in front of next. Only successful lookups are stored,
// and a failing cache falls through to next. An entry that cannot be read,
// or an id the backend no longer knows, is dropped from the cache.
func Cached(next Resolver, cache Cache, log *zap.Logger) Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return ResolverFunc(func(ctx context.Context, id string) (string, error) {
		if id == "" {
			return "", ErrNoIdentifier
		}
		name, err := cache.GetName(ctx, id)
		if err == nil && name != "" {
			return name, nil
		}
		switch {
		case err == nil:
			// empty entry
			forget(ctx, cache, log, id)
		case !errors.Is(err, ErrCacheMiss):
			log.Warn("directory: cache read failed", zap.String("id", id), zap.Error(err))
			forget(ctx, cache, log, id)
		}

		name, err = next.Resolve(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed) {
				forget(ctx, cache, log, id)
			}
			return "", err
		}
		if err := cache.SetName(ctx, id, name); err != nil {
			log.Warn("directory: cache write failed", zap.String("id", id), zap.Error(err))
		}
		return name, nil
	})
}

func forget(ctx context.Context, cache Cache, log *zap.Logger, id string) {
	if err := cache.Forget(ctx, id); err != nil {
		log.Warn("directory: cache delete failed", zap.String("id", id), zap.Error(err))
	}
}
