package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubValidator struct {
	claims *shared.Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*shared.Claims, error) {
	return s.claims, s.err
}

func newTestRouter(v shared.TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ZapLogger(zap.NewNop(), &config.Config{GinMode: "test"}))
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/me", AuthMiddleware(v, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, common.GetUserIDFromContext(c).String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("bad")}, http.StatusUnauthorized},
		{"token without user", "Bearer good", stubValidator{claims: &shared.Claims{}}, http.StatusUnauthorized},
		{"valid token", "Bearer good", stubValidator{claims: &shared.Claims{UserID: userID}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeader, tt.header)
			}
			newTestRouter(tt.validator).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(stubValidator{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
