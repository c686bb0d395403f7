package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ptchurch/site/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2" validate:"omitempty,max=10"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr *errors.ErrorWithStatusCode
	}{
		{
			name:        "Valid JSON and Validation",
			requestBody: `{"field1": "value", "field2": 3}`,
		},
		{
			name:        "Valid JSON and Validation [2]",
			requestBody: `{"field1": "value"}`,
		},
		{
			name:        "Invalid JSON",
			requestBody: `{"field1": "value", "field2": 123`,
			expectedErr: &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400, Code: errors.CodeInvalidBody},
		},
		{
			name:        "Missing Required Field",
			requestBody: `{"field2": 1}`,
			expectedErr: &errors.ErrorWithStatusCode{Message: "Invalid or missing fields", StatusCode: 400, Code: errors.CodeValidationFailed, Fields: []string{"field1"}},
		},
		{
			name:        "Out of range",
			requestBody: `{"field1": "v", "field2": 11}`,
			expectedErr: &errors.ErrorWithStatusCode{Message: "Invalid or missing fields", StatusCode: 400, Code: errors.CodeValidationFailed, Fields: []string{"field2"}},
		},
		{
			name:        "Empty Body",
			requestBody: "",
			expectedErr: &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400, Code: errors.CodeInvalidBody},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(tt.requestBody)))

			var target TestStruct
			err := DecodeValidate(req.Body, &target)

			if tt.expectedErr == nil {
				assert.NoError(t, err, "Expected no error")
			} else {
				e, ok := err.(*errors.ErrorWithStatusCode)
				require.True(t, ok, "Error should be ErrorWithStatusCode")
				assert.Equal(t, tt.expectedErr, e)
			}
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("status error keeps its code", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, errors.NotFound("Post not found"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"ok":false,"error":"not_found","message":"Post not found"}`, rr.Body.String())
	})

	t.Run("wrapped status error is unwrapped", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, fmt.Errorf("send: %w", errors.Upstream()))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "upstream_failed", body["error"])
	})

	t.Run("unknown error is opaque 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, fmt.Errorf("disk on fire at /var/data"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "/var/data")
		assert.Contains(t, rr.Body.String(), `"internal_error"`)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSON(rr, map[string]string{"message": "hello"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, `{"message":"hello"}`, rr.Body.String())
	})

	t.Run("unencodable value", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSON(rr, make(chan int))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"first forwarded entry", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, "203.0.113.7"},
		{"real ip fallback", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"blank forwarded falls through", map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"nothing known", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}
