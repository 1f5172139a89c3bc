package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmailInUse is returned when an email is already registered.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInsufficientStock is returned when a product cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus is returned for order statuses outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidID is returned when a path identifier is not a UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrEmptyOrder is returned when an order has no items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrInvalidQuantity is returned when an order line quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrTokenMissing is returned when no Authorization header is present.
	ErrTokenMissing = errors.New("no token provided")
	// ErrTokenFormat is returned when the Authorization header has no bearer token.
	ErrTokenFormat = errors.New("invalid token format")
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when a token cannot be parsed or its signature is wrong.
	ErrTokenMalformed = errors.New("invalid token")
	// ErrTokenRevoked is returned when a token was explicitly logged out.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrRevocationUnavailable is returned when a logout could not be recorded.
	ErrRevocationUnavailable = errors.New("logout could not be recorded, try again later")
	// ErrForbidden is returned when a principal lacks the admin role.
	ErrForbidden = errors.New("access denied, admin rights required")
)

// StockError names the product whose stock could not cover an order.
type StockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for product %s", e.ProductName)
}

// Unwrap lets errors.Is match ErrInsufficientStock.
func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// NotFoundError names the missing entity id.
type NotFoundError struct {
	Err error
	ID  uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain and store errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrOrderNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ORDER_NOT_FOUND")
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_IN_USE")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInsufficientStock):
		return NewHTTPError(http.StatusConflict, err.Error(), "INSUFFICIENT_STOCK")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ID")
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrTokenMissing), errors.Is(err, ErrTokenFormat):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_MISSING")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrTokenMalformed):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrTokenRevoked):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_REVOKED")
	case errors.Is(err, ErrRevocationUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, ErrRevocationUnavailable.Error(), "SERVICE_UNAVAILABLE")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewHTTPError(http.StatusNotFound, "record not found", "NOT_FOUND")
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DATABASE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
