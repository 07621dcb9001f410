package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/washworks/fleetwash/internal/actorcontext"
	"github.com/washworks/fleetwash/internal/netcontext"
)

const (
	HeaderNetwork   = "X-Network-ID"
	HeaderActorType = "X-Actor-Type"
	HeaderActorID   = "X-Actor-ID"
)

// NetworkContext resolves the tenant from the X-Network-ID header and
// injects it into the request context. Single-tenant installs can omit
// the header and fall back to the configured default network.
func (s *Server) NetworkContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(HeaderNetwork))

		networkID := s.cfg.DefaultNetworkID
		if header != "" {
			parsed, err := snowflake.ParseString(header)
			if err != nil || parsed == 0 {
				AbortWithError(c, newValidationError("network_id", "invalid_network", "invalid network id"))
				return
			}
			networkID = int64(parsed)
		}
		if networkID == 0 {
			AbortWithError(c, newValidationError("network_id", "invalid_network", "network id is required"))
			return
		}

		ctx := netcontext.WithNetworkID(c.Request.Context(), networkID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ActorContext records who is calling for audit attribution. Unknown or
// missing actor types fall back to SYSTEM inside the audit recorder.
func (s *Server) ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorType := strings.TrimSpace(c.GetHeader(HeaderActorType))
		actorID := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if actorType == "" && actorID == "" {
			c.Next()
			return
		}

		ctx := actorcontext.WithActor(c.Request.Context(), actorType, actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
