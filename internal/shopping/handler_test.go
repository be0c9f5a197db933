package shopping

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricehive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler_CreateAndSubmit(t *testing.T) {
	f := newShoppingFixture(t)
	gin.SetMode(gin.TestMode)
	common.RegisterValidators()
	r := gin.New()
	authMW := func(c *gin.Context) { c.Set(common.UserIDKey, f.userID); c.Next() }
	NewHandler(f.service, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), authMW)

	item := `{"sellable_product_id":"` + f.sellable.ID.String() + `","unit_id":"` + f.unit.ID.String() + `","quantity":%s}`
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Weekly","supermarket_id":"` + f.supermarket.ID.String() + `","items":[` + strings.Replace(item, "%s", "2", 1) + `]}`, http.StatusCreated},
		{"zero quantity", `{"name":"Weekly","supermarket_id":"` + f.supermarket.ID.String() + `","items":[` + strings.Replace(item, "%s", "0", 1) + `]}`, http.StatusUnprocessableEntity},
		{"missing name", `{"supermarket_id":"` + f.supermarket.ID.String() + `"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/shopping-lists", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/shopping-lists/not-a-uuid/submit-prices", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
