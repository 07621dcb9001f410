package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/washworks/fleetwash/internal/invoicing"
)

type issueInvoicesRequest struct {
	PartnerID   string `json:"partner_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// IssueInvoices hands the partner's locked sessions for the period to
// the configured invoice provider.
func (s *Server) IssueInvoices(c *gin.Context) {
	var req issueInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	periodStart, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PeriodStart))
	if err != nil {
		AbortWithError(c, newValidationError("period_start", "invalid_period_start", "invalid period_start"))
		return
	}
	periodEnd, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PeriodEnd))
	if err != nil {
		AbortWithError(c, newValidationError("period_end", "invalid_period_end", "invalid period_end"))
		return
	}

	resp, err := s.invoicingSvc.Issue(c.Request.Context(), invoicing.RunRequest{
		PartnerID:   strings.TrimSpace(req.PartnerID),
		PeriodStart: periodStart.UTC(),
		PeriodEnd:   periodEnd.UTC(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
