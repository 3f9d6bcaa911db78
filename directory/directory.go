// directory/directory.go

// Package directory resolves a scanned badge id to a person's display name.
//
// Every backend reports failures with the errors below so callers can show
// err.Error() as the reason and use errors.Is to tell the kinds apart.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultTimeout = 5 * time.Second

var (
	ErrNoIdentifier = errors.New("no user id provided")
	ErrNotFound     = errors.New("no user found")
	ErrTimeout      = errors.New("directory lookup timed out")
	ErrBackend      = errors.New("directory lookup failed")
	ErrMalformed    = errors.New("user found but name is missing")
	ErrUnknown      = errors.New("unknown error during user lookup")
)

// NotFoundError carries the id that had no match. It matches ErrNotFound.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string        { return fmt.Sprintf("no user found with ID %s", e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Resolver looks up the display name for a scanned id.
type Resolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, id string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, id string) (string, error) { return f(ctx, id) }

// Kind names the failure class of err, for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoIdentifier):
		return "no_identifier"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBackend):
		return "backend"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

// Bounded applies timeout to every call of next and reports an expired
// deadline as ErrTimeout. Empty ids never reach next.
func Bounded(next Resolver, timeout time.Duration) Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return ResolverFunc(func(ctx context.Context, id string) (string, error) {
		if id == "" {
			return "", ErrNoIdentifier
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		name, err := next.Resolve(ctx, id)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrTimeout
			}
			if !isKnown(err) {
				return "", ErrUnknown
			}
			return "", err
		}
		if name == "" {
			return "", ErrMalformed
		}
		return name, nil
	})
}

func isKnown(err error) bool {
	for _, target := range []error{ErrNoIdentifier, ErrNotFound, ErrTimeout, ErrBackend, ErrMalformed, ErrUnknown} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
