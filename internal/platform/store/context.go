package store

import "context"

type readOnlyKey struct{}

// WithReadOnly marks transactions opened under ctx as read only snapshots
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, readOnlyKey{}, true)
}

// IsReadOnly reports whether ctx asks for a read only transaction
func IsReadOnly(ctx context.Context) bool {
	b, _ := ctx.Value(readOnlyKey{}).(bool)
	return b
}
