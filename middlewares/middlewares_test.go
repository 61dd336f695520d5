package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Customer{}))
	return db
}

func perform(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	router := gin.New()
	router.GET("/me", RequireAuth(tokens), func(ctx *gin.Context) {
		claims, ok := ClaimsFrom(ctx)
		require.True(t, ok)
		ctx.JSON(http.StatusOK, gin.H{"id": claims.CustomerID})
	})

	token, err := tokens.Generate(models.Customer{Model: gorm.Model{ID: 5}, Email: "a@b.c"})
	require.NoError(t, err)
	foreign, err := utils.NewTokenManager("other", time.Hour).Generate(models.Customer{Model: gorm.Model{ID: 5}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/me", foreign).Code)

	rec := perform(router, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":5}`, rec.Body.String())
}

func TestRequireAdminChecksCurrentRole(t *testing.T) {
	db := newTestDB(t)
	tokens := utils.NewTokenManager("secret", time.Hour)

	admin := models.Customer{Name: "Admin", Email: "admin@example.com", Phone: "9000000001", Password: "x", IsAdmin: true}
	regular := models.Customer{Name: "Ravi", Email: "ravi@example.com", Phone: "9000000002", Password: "x"}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&regular).Error)

	router := gin.New()
	router.GET("/admin", RequireAuth(tokens), RequireAdmin(db), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	adminToken, err := tokens.Generate(admin)
	require.NoError(t, err)
	regularToken, err := tokens.Generate(regular)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodGet, "/admin", adminToken).Code)
	assert.Equal(t, http.StatusForbidden, perform(router, http.MethodGet, "/admin", regularToken).Code)

	require.NoError(t, db.Model(&admin).Update("is_admin", false).Error)
	rec := perform(router, http.MethodGet, "/admin", adminToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, rec.Body.String())
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	router := gin.New()
	router.GET("/admin", RequireAdmin(nil), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/admin", "").Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	router := gin.New()
	router.POST("/login", limiter.Middleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/login", "").Code)

	rec := perform(router, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.getLimiter("10.0.0.1")
	limiter.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	limiter.getLimiter("10.0.0.2")

	limiter.Cleanup()

	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/ok", func(ctx *gin.Context) {
		LoggerFrom(ctx).Info("inside handler")
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	require.Len(t, hook.Entries, 2)
	for _, entry := range hook.Entries {
		assert.Equal(t, "req-123", entry.Data["request_id"])
	}
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	rec = perform(router, http.MethodGet, "/missing", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics()
	router := gin.New()
	router.Use(metrics.Middleware())
	router.GET("/dishes/:dishId", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET("/metrics", metrics.Handler())

	perform(router, http.MethodGet, "/dishes/3", "")
	metrics.OrdersPlaced.Inc()

	body := perform(router, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `smartbite_http_requests_total{method="GET",route="/dishes/:dishId",status="200"} 1`)
	assert.Contains(t, body, "smartbite_orders_placed_total 1")
}
