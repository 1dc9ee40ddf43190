package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Donor{},
		&models.Patient{},
		&models.Stock{},
		&models.BloodRequest{},
		&models.SMSOutbox{},
	))

	cfg := &config.Config{
		JWTSecretKey:          "test-secret",
		SMSDefaultCountryCode: "+91",
		SMSMaxRecipients:      25,
		SMSMinNotificationGap: 21600,
		LowStockThresholdMl:   500,
	}

	r, _ := SetupRouter(db, cfg)
	return r
}

func serve(r *gin.Engine, method, path, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestDonorRequestHistoryRouteRegistered(t *testing.T) {
	r := newTestRouter(t)

	// The route must exist; without a token it fails auth, not routing
	w := serve(r, http.MethodGet, "/api/donors/me/requests", "203.0.113.5:40001")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublicBudgetDoesNotThrottleAuthenticatedRoutes(t *testing.T) {
	r := newTestRouter(t)

	// Drain the anonymous budget (burst of 20)
	for i := 0; i < 30; i++ {
		serve(r, http.MethodGet, "/api/ping", "203.0.113.9:40002")
	}
	w := serve(r, http.MethodGet, "/api/ping", "203.0.113.9:40002")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// The authenticated groups carry their own budget, so the same client
	// still reaches them and fails on auth instead
	for i := 0; i < 30; i++ {
		w := serve(r, http.MethodGet, "/api/requests", "203.0.113.9:40002")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "request %d was throttled", i)
	}
}

func TestQuickRequestPathBudgetTighter(t *testing.T) {
	r := newTestRouter(t)

	// Burst of 5 on the quick-request path, from distinct clients so the
	// per-IP budget stays out of the way
	throttled := false
	for i := 0; i < 10; i++ {
		addr := fmt.Sprintf("203.0.113.%d:40003", 20+i)
		w := serve(r, http.MethodPost, "/api/requests/quick", addr)
		if w.Code == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	assert.True(t, throttled)
}
