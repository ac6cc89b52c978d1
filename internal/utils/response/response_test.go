package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	response.Success(rr, http.StatusCreated, map[string]int{"itemCount": 2})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success": true, "data": {"itemCount": 2}}`, rr.Body.String())
}

func TestSuccessWithNotices(t *testing.T) {
	rr := httptest.NewRecorder()

	response.SuccessWithNotices(rr, http.StatusOK, map[string]int{"itemCount": 4},
		nil,
		appErrors.LimitedStockError("Only 4 items available"),
		errors.New("plain"),
	)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"itemCount": 4},
		"notices": [
			{"code": "LIMITED_STOCK", "message": "Only 4 items available"},
			{"code": "INTERNAL_ERROR", "message": "plain"}
		]
	}`, rr.Body.String())
}

func TestError(t *testing.T) {
	t.Run("AppError", func(t *testing.T) {
		rr := httptest.NewRecorder()

		response.Error(rr, appErrors.OutOfStockError("Aata (5kg) is currently out of stock").WithDetail("variant 1b"))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"success": false, "error": {"code": "OUT_OF_STOCK", "message": "Aata (5kg) is currently out of stock", "details": ["variant 1b"]}}`, rr.Body.String())
	})

	t.Run("Plain error is hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()

		response.Error(rr, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"success": false, "error": {"code": "INTERNAL_ERROR", "message": "An unexpected error occurred"}}`, rr.Body.String())
	})
}

func TestValidationError(t *testing.T) {
	type request struct {
		ProductID string `validate:"required"`
		Quantity  int    `validate:"min=1"`
		Coupon    string `validate:"max=3"`
		Method    string `validate:"oneof=upi cod"`
	}

	err := validator.New().Struct(request{Quantity: 0, Coupon: "WELCOME10", Method: "cash"})
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)

	rr := httptest.NewRecorder()
	response.ValidationError(rr, errs)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "Validation failed", "details": [
		"Field ProductID is required",
		"Field Quantity must be at least 1",
		"Field Coupon must be at most 3 characters",
		"Field Method must be one of: upi cod"
	]}}`, rr.Body.String())
}
