// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports whether the context has been canceled or exceeded its deadline.
// It returns the context error if done, nil otherwise, and is meant for
// entry-point checks before starting an external command.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
