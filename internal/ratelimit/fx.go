package ratelimit

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/washworks/fleetwash/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewSessionCreateLimiter),
	fx.Provide(NewLeaderLocker),
)

// NewLeaderLocker builds the distributed lock used by background jobs.
// It is nil without redis, which limits the deployment to one instance.
func NewLeaderLocker(cfg config.Config) *Locker {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return NewLocker(client)
}
