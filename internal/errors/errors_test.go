package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "product not found", err: ErrProductNotFound, wantStatus: http.StatusNotFound, wantCode: "PRODUCT_NOT_FOUND"},
		{name: "wrapped not found", err: &NotFoundError{Err: ErrProductNotFound, ID: uuid.New()}, wantStatus: http.StatusNotFound, wantCode: "PRODUCT_NOT_FOUND"},
		{name: "stock", err: &StockError{ProductName: "Lamp"}, wantStatus: http.StatusConflict, wantCode: "INSUFFICIENT_STOCK"},
		{name: "email in use", err: ErrEmailInUse, wantStatus: http.StatusBadRequest, wantCode: "EMAIL_IN_USE"},
		{name: "expired", err: ErrTokenExpired, wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_EXPIRED"},
		{name: "malformed", err: ErrTokenMalformed, wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "revocation down", err: fmt.Errorf("%w: dial tcp: refused", ErrRevocationUnavailable), wantStatus: http.StatusServiceUnavailable, wantCode: "SERVICE_UNAVAILABLE"},
		{name: "forbidden", err: ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "invalid status", err: ErrInvalidStatus, wantStatus: http.StatusBadRequest, wantCode: "INVALID_STATUS"},
		{name: "duplicate key", err: fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), wantStatus: http.StatusBadRequest, wantCode: "DATABASE_ERROR"},
		{name: "record not found", err: gorm.ErrRecordNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestStockError_NamesProduct(t *testing.T) {
	err := error(&StockError{ProductID: uuid.New(), ProductName: "Desk Lamp", Requested: 3, Available: 1})
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, "insufficient stock for product Desk Lamp", err.Error())
}

func TestMapErrorToHTTP_PassesThroughHTTPError(t *testing.T) {
	in := &HTTPError{StatusCode: http.StatusBadRequest, Message: "bad", Code: "VALIDATION_ERROR", Details: []FieldError{{Field: "name", Message: "is required"}}}
	out := MapErrorToHTTP(fmt.Errorf("wrapped: %w", in))
	assert.Same(t, in, out)
	assert.Len(t, out.ToErrorResponse().Details, 1)
}
