package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/pkg/errors"
)

func TestNotFoundWrapsSentinel(t *testing.T) {
	err := errors.NotFound("product")

	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "product not found", err.Message)
}

func TestInsufficientStockCarriesContext(t *testing.T) {
	err := errors.InsufficientStock("prod-1", "wh-1")

	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, "prod-1", err.Details["product_id"])
	assert.Equal(t, "wh-1", err.Details["warehouse_id"])
}

func TestCyclicDependencyIsConflict(t *testing.T) {
	err := errors.CyclicDependency("t-1", "t-2")

	assert.True(t, errors.Is(err, errors.ErrCyclicDependency))
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, "t-2", err.Details["depends_on_id"])
}

func TestUpstreamUnavailablePreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.UpstreamUnavailable("weather", cause)

	assert.True(t, errors.Is(err, errors.ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.Equal(t, "weather service unavailable", err.Message)
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(errors.Validation(map[string]string{"name": "name is required"}),
		"INTERNAL_ERROR", "saving failed", http.StatusInternalServerError)

	var appErr *errors.AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	assert.True(t, errors.Is(wrapped, errors.ErrValidation))
}

func TestWithDetails(t *testing.T) {
	err := errors.Conflict("warehouse has stock movements").
		WithDetails(map[string]string{"referenced_by": "stock_movement"})

	assert.Equal(t, "stock_movement", err.Details["referenced_by"])
	assert.Equal(t, "CONFLICT", err.Code)
}
