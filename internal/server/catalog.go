package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
)

type upsertPriceRequest struct {
	ServicePackageID string `json:"service_package_id"`
	VehicleType      string `json:"vehicle_type"`
	UnitPriceCents   int64  `json:"unit_price_cents"`
	Currency         string `json:"currency"`
}

func (s *Server) UpsertLocationPrice(c *gin.Context) {
	var req upsertPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Upsert(c.Request.Context(), catalogdomain.UpsertRequest{
		LocationID:       strings.TrimSpace(c.Param("location_id")),
		ServicePackageID: strings.TrimSpace(req.ServicePackageID),
		VehicleType:      catalogVehicleType(req.VehicleType),
		UnitPriceCents:   req.UnitPriceCents,
		Currency:         strings.ToUpper(strings.TrimSpace(req.Currency)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLocationPrices(c *gin.Context) {
	resp, err := s.catalogSvc.List(c.Request.Context(), strings.TrimSpace(c.Param("location_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
