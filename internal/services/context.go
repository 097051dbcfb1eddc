package services

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const businessIDKey ctxKey = iota

// WithBusinessID stores the authenticated business id on the context.
func WithBusinessID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, businessIDKey, id)
}

// BusinessIDFromContext returns the authenticated business id, if any.
func BusinessIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(businessIDKey).(uuid.UUID)
	return id, ok
}
