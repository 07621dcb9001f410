package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	"github.com/washworks/fleetwash/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	SessionID string `form:"session_id"`
	Action    string `form:"action"`
	ActorType string `form:"actor_type"`
	StartAt   string `form:"start_at"`
	EndAt     string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var startAt *time.Time
	if trimmed := strings.TrimSpace(query.StartAt); trimmed != "" {
		parsed, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
			return
		}
		startAt = &parsed
	}

	var endAt *time.Time
	if trimmed := strings.TrimSpace(query.EndAt); trimmed != "" {
		parsed, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
			return
		}
		endAt = &parsed
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  int32(query.PageSize),
		},
		SessionID: strings.TrimSpace(query.SessionID),
		Action:    strings.TrimSpace(query.Action),
		ActorType: strings.ToUpper(strings.TrimSpace(query.ActorType)),
		StartAt:   startAt,
		EndAt:     endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Entries, "page_info": resp.PageInfo})
}
