package server

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	billingdomain "github.com/washworks/fleetwash/internal/billingline/domain"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/invoicing"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"github.com/washworks/fleetwash/internal/providers/invoice"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, billingdomain.ErrSessionNotLocked),
		errors.Is(err, invoicing.ErrNothingToInvoice):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "precondition_failed",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, invoice.ErrProviderRejected):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_rejected",
			Message: "invoice provider rejected the request",
		}
	case errors.Is(err, invoice.ErrProviderNotConfigured),
		errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicing.ErrInvalidPeriod):
		return true
	case isSessionValidationError(err),
		isPartnerValidationError(err),
		isCatalogValidationError(err),
		isAuditValidationError(err),
		isUsageValidationError(err):
		return true
	default:
		return false
	}
}

func isSessionValidationError(err error) bool {
	switch {
	case errors.Is(err, sessiondomain.ErrInvalidNetwork),
		errors.Is(err, sessiondomain.ErrInvalidID),
		errors.Is(err, sessiondomain.ErrInvalidPartner),
		errors.Is(err, sessiondomain.ErrInvalidDriver),
		errors.Is(err, sessiondomain.ErrInvalidTrack),
		errors.Is(err, sessiondomain.ErrInvalidEntryMode),
		errors.Is(err, sessiondomain.ErrInvalidComponents),
		errors.Is(err, sessiondomain.ErrInvalidPlateNumber),
		errors.Is(err, sessiondomain.ErrInvalidReason),
		errors.Is(err, sessiondomain.ErrCurrencyMismatch):
		return true
	default:
		return false
	}
}

func isPartnerValidationError(err error) bool {
	switch {
	case errors.Is(err, partnerdomain.ErrInvalidNetwork),
		errors.Is(err, partnerdomain.ErrInvalidName),
		errors.Is(err, partnerdomain.ErrInvalidBillingCycle),
		errors.Is(err, partnerdomain.ErrInvalidSchedule),
		errors.Is(err, partnerdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidNetwork),
		errors.Is(err, catalogdomain.ErrInvalidLocation),
		errors.Is(err, catalogdomain.ErrInvalidServicePackage),
		errors.Is(err, catalogdomain.ErrInvalidVehicleType),
		errors.Is(err, catalogdomain.ErrInvalidUnitPrice),
		errors.Is(err, catalogdomain.ErrInvalidCurrency):
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidNetwork),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidSession),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isUsageValidationError(err error) bool {
	switch {
	case errors.Is(err, usagedomain.ErrInvalidNetwork),
		errors.Is(err, usagedomain.ErrInvalidPartner),
		errors.Is(err, usagedomain.ErrInvalidTrack):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, sessiondomain.ErrInvalidTransition),
		errors.Is(err, sessiondomain.ErrConcurrentModification):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, sessiondomain.ErrNotFound),
		errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, usagedomain.ErrPartnerMissing),
		errors.Is(err, catalogdomain.ErrPriceNotAvailable),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog buckets an error for the request log without
// leaking internals into structured fields.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if vErr := asValidationErrors(err); vErr != nil && len(vErr.Errors) > 0 {
		return "validation_error", vErr.Errors[0].Code
	}
	switch {
	case isValidationError(err):
		return "validation_error", validationErrorCode(err)
	case isConflictError(err):
		return "conflict", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", "rate_limited"
	default:
		return "internal_error", "internal_error"
	}
}
