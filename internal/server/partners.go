package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/washworks/fleetwash/internal/discount"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
)

type createPartnerRequest struct {
	Name         string            `json:"name"`
	BillingCycle string            `json:"billing_cycle"`
	OwnSchedule  discount.Schedule `json:"own_schedule"`
	SubSchedule  discount.Schedule `json:"sub_schedule"`
}

func (s *Server) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.partnerSvc.Create(c.Request.Context(), partnerdomain.CreateRequest{
		Name:         strings.TrimSpace(req.Name),
		BillingCycle: partnerdomain.BillingCycle(strings.ToUpper(strings.TrimSpace(req.BillingCycle))),
		OwnSchedule:  req.OwnSchedule,
		SubSchedule:  req.SubSchedule,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetPartner(c *gin.Context) {
	resp, err := s.partnerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPartners(c *gin.Context) {
	resp, err := s.partnerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetPartnerUsage reports how many sessions count toward the partner's
// current discount tier on the given track, as of now or the given time.
func (s *Server) GetPartnerUsage(c *gin.Context) {
	var query struct {
		Track string `form:"track"`
		AsOf  string `form:"as_of"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	partnerID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || partnerID == 0 {
		AbortWithError(c, sessiondomain.ErrInvalidPartner)
		return
	}

	asOf := time.Now().UTC()
	if trimmed := strings.TrimSpace(query.AsOf); trimmed != "" {
		parsed, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("as_of", "invalid_as_of", "invalid as_of"))
			return
		}
		asOf = parsed.UTC()
	}

	track := sessionTrack(query.Track)
	count, err := s.usageSvc.CountForPeriod(c.Request.Context(), partnerID, track, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"partner_id":  partnerID.String(),
		"track":       track,
		"as_of":       asOf.Format(time.RFC3339),
		"usage_count": count,
	}})
}
