package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/netcontext"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
)

func catalogVehicleType(value string) catalogdomain.VehicleType {
	return catalogdomain.VehicleType(strings.ToUpper(strings.TrimSpace(value)))
}

func sessionTrack(value string) partnerdomain.Track {
	return partnerdomain.Track(strings.ToUpper(strings.TrimSpace(value)))
}

type createSessionRequest struct {
	LocationID       string `json:"location_id"`
	ServicePackageID string `json:"service_package_id"`
	PartnerID        string `json:"partner_id"`
	DriverID         string `json:"driver_id"`
	Track            string `json:"track"`
	EntryMode        string `json:"entry_mode"`
	Components       []struct {
		VehicleType string `json:"vehicle_type"`
		PlateNumber string `json:"plate_number"`
	} `json:"components"`
}

func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()

	if s.sessionLimiter != nil && s.sessionLimiter.Enabled() {
		networkID, _ := netcontext.NetworkIDFromContext(ctx)
		result, err := s.sessionLimiter.AllowNetwork(ctx, networkID.String())
		if err == nil && result != nil {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(int64(result.Limit), 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(result.Remaining), 10))
			if !result.Allowed {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
				AbortWithError(c, ErrRateLimited)
				return
			}
		}

		// A plate can only have one session being created at a time;
		// the lock is released as soon as the create settles.
		for _, component := range req.Components {
			plate := strings.TrimSpace(component.PlateNumber)
			if plate == "" {
				continue
			}
			token, ok, err := s.sessionLimiter.TryLockPlate(ctx, networkID.String(), plate)
			if err != nil {
				continue
			}
			if !ok {
				AbortWithError(c, fmt.Errorf("%w: plate %s already has a session in flight", ErrConflict, plate))
				return
			}
			defer s.sessionLimiter.ReleasePlate(ctx, networkID.String(), plate, token)
		}
	}

	components := make([]sessiondomain.ComponentInput, 0, len(req.Components))
	for _, component := range req.Components {
		components = append(components, sessiondomain.ComponentInput{
			VehicleType: catalogVehicleType(component.VehicleType),
			PlateNumber: strings.TrimSpace(component.PlateNumber),
		})
	}

	resp, err := s.sessionSvc.Create(ctx, sessiondomain.CreateRequest{
		LocationID:       strings.TrimSpace(req.LocationID),
		ServicePackageID: strings.TrimSpace(req.ServicePackageID),
		PartnerID:        strings.TrimSpace(req.PartnerID),
		DriverID:         strings.TrimSpace(req.DriverID),
		Track:            sessionTrack(req.Track),
		EntryMode:        sessiondomain.EntryMode(strings.ToUpper(strings.TrimSpace(req.EntryMode))),
		Components:       components,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetSession(c *gin.Context) {
	resp, err := s.sessionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSessions(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		PartnerID string `form:"partner_id"`
		Limit     int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.List(c.Request.Context(), sessiondomain.ListRequest{
		Status:    strings.TrimSpace(query.Status),
		PartnerID: strings.TrimSpace(query.PartnerID),
		Limit:     query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AuthorizeSession(c *gin.Context) {
	s.transitionSession(c, s.sessionSvc.Authorize)
}

func (s *Server) StartSession(c *gin.Context) {
	s.transitionSession(c, s.sessionSvc.Start)
}

func (s *Server) CompleteSession(c *gin.Context) {
	s.transitionSession(c, s.sessionSvc.Complete)
}

func (s *Server) LockSession(c *gin.Context) {
	s.transitionSession(c, s.sessionSvc.Lock)
}

type rejectSessionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectSession(c *gin.Context) {
	var req rejectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) transitionSession(c *gin.Context, op func(ctx context.Context, id string) (*sessiondomain.Response, error)) {
	resp, err := op(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
