// directory/static.go
package directory

import (
	"context"
	"strings"
)

// StaticResolver answers from a fixed map. Used for local runs and tests.
type StaticResolver map[string]string

func (s StaticResolver) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNoIdentifier
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, ok := s[id]
	if !ok {
		return "", &NotFoundError{ID: id}
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrMalformed
	}
	return name, nil
}
