package utils_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type addRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func TestParseAndValidate(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name         string
		body         string
		ok           bool
		expectedCode int
		expectedBody string
	}{
		{
			name: "Valid",
			body: `{"product_id": "1", "quantity": 2}`,
			ok:   true,
		},
		{
			name:         "Empty body",
			body:         "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success": false, "error": {"code": "BAD_REQUEST", "message": "request body cannot be empty"}}`,
		},
		{
			name:         "Malformed JSON",
			body:         `{"product_id": `,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Validation failure",
			body:         `{"product_id": "", "quantity": 0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "Validation failed", "details": ["Field ProductID is required", "Field Quantity is required"]}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			var dest addRequest

			ok := utils.ParseAndValidate(req, rr, &dest, validate)

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, addRequest{ProductID: "1", Quantity: 2}, dest)
				return
			}
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, 10},
		{"?page=3&size=5", 3, 5},
		{"?page=0&size=0", 1, 10},
		{"?page=-2&size=11", 1, 10},
		{"?page=abc&size=xyz", 1, 10},
		{"?page=2&size=10", 2, 10},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			page, size := utils.Pagination(httptest.NewRequest(http.MethodGet, "/api/v1/orders"+tc.query, nil))

			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.size, size)
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "12 MG Road", utils.Sanitize("  <b>12 MG Road</b> "))
	assert.Equal(t, "Flat 4 & 5", utils.Sanitize("Flat 4 & 5<script>alert(1)</script>"))
	assert.Empty(t, utils.Sanitize("<img src=x onerror=alert(1)>"))
}
