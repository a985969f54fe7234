package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/authorization"
	dashboarddomain "github.com/smallbiznis/stockroom/internal/dashboard/domain"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	purchasedomain "github.com/smallbiznis/stockroom/internal/purchase/domain"
	recipientdomain "github.com/smallbiznis/stockroom/internal/recipient/domain"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	salereturndomain "github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/internal/verification"
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
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
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
		code := err.Error()
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
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
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
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, verification.ErrNoNotifyAddress),
		errors.Is(err, verification.ErrSendFailed):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger's error_type and error_code fields.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationErrors = []error{
	ErrInvalidRequest,

	authdomain.ErrMissingFields,
	authdomain.ErrPasswordMismatch,
	authdomain.ErrPasswordTooShort,
	authdomain.ErrInvalidEmail,
	authdomain.ErrInvalidRole,
	authdomain.ErrInvalidVerificationCode,

	productdomain.ErrInvalidCode,
	productdomain.ErrInvalidName,
	productdomain.ErrInvalidRatio,
	productdomain.ErrInvalidID,

	inventorydomain.ErrInvalidProduct,
	inventorydomain.ErrInvalidQuantity,
	inventorydomain.ErrInvalidAvgCost,
	inventorydomain.ErrInvalidUnit,
	inventorydomain.ErrInvalidStatus,

	purchasedomain.ErrPurchaseNoExists,
	purchasedomain.ErrInvalidProduct,
	purchasedomain.ErrInventoryMissing,
	purchasedomain.ErrInvalidQuantity,
	purchasedomain.ErrInvalidUnitCost,
	purchasedomain.ErrInvalidTotalCost,
	purchasedomain.ErrInvalidUnit,
	purchasedomain.ErrInvalidStatus,
	purchasedomain.ErrInvalidID,

	saledomain.ErrMissingUser,
	saledomain.ErrInvalidProduct,
	saledomain.ErrInvalidQuantity,
	saledomain.ErrInvalidSalePrice,
	saledomain.ErrInvalidShipping,
	saledomain.ErrInvalidUnit,
	saledomain.ErrInsufficientStock,

	salereturndomain.ErrMissingUser,
	salereturndomain.ErrInvalidSale,
	salereturndomain.ErrInvalidQuantity,
	salereturndomain.ErrInvalidPrice,
	salereturndomain.ErrInvalidStatus,
	salereturndomain.ErrInvalidID,

	recipientdomain.ErrInvalidEmail,
	recipientdomain.ErrInvalidID,
	recipientdomain.ErrInvalidActive,

	dashboarddomain.ErrInvalidRecordType,
	verification.ErrInvalidEmail,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, productdomain.ErrCodeExists),
		errors.Is(err, recipientdomain.ErrEmailExists),
		errors.Is(err, salereturndomain.ErrReturnNoExhausted):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrProductNotFound),
		errors.Is(err, purchasedomain.ErrProductNotFound),
		errors.Is(err, purchasedomain.ErrNotFound),
		errors.Is(err, saledomain.ErrProductNotFound),
		errors.Is(err, salereturndomain.ErrSaleNotFound),
		errors.Is(err, salereturndomain.ErrNotFound),
		errors.Is(err, recipientdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
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
	case "insufficient_stock":
		return "库存不足"
	case "purchase_no_exists":
		return "采购单号已存在"
	case "invalid_verification_code":
		return "验证码无效或已过期"
	default:
		return "invalid value"
	}
}
