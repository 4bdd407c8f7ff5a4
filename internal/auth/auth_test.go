package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		adminToken string
		header     string
		query      string
		wantStatus int
	}{
		{"open when no token configured", "", "", "", http.StatusOK},
		{"bearer header", "s3cret", "Bearer s3cret", "", http.StatusOK},
		{"raw header", "s3cret", "s3cret", "", http.StatusOK},
		{"query parameter", "s3cret", "", "s3cret", http.StatusOK},
		{"missing token", "s3cret", "", "", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer guess", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			target := "/api/analytics"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Middleware(tt.adminToken)(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			assert.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
