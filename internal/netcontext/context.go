package netcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// NetworkContextKey is the request context key for the active network ID.
type NetworkContextKey struct{}

// WithNetworkID stores the network ID in the context.
func WithNetworkID(ctx context.Context, networkID int64) context.Context {
	return context.WithValue(ctx, NetworkContextKey{}, networkID)
}

// NetworkIDFromContext returns the network ID from context, if set.
func NetworkIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(NetworkContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
