package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetBillingLines exposes the invoice-ready line items of one locked
// session. Sessions that are not LOCKED yet cannot be billed.
func (s *Server) GetBillingLines(c *gin.Context) {
	resp, err := s.billingLineSvc.Compose(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
