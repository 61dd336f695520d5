package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/Kariqs/smartbite-api/initializers"
	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/notifier"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "secret123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	server *gin.Engine
	db     *gorm.DB
	tokens *utils.TokenManager
	queue  *notifier.Queue
}

func newTestApp(t *testing.T, limiter *middlewares.RateLimiter) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, initializers.SyncDatabase(db, &initializers.Config{}, log))

	tokens := utils.NewTokenManager("test-secret", 48*time.Hour)
	queue := notifier.New(db, &utils.LogMailer{Log: log}, log, notifier.Config{QueueSize: 50})
	c := controllers.New(controllers.Controller{
		DB:       db,
		Tokens:   tokens,
		Notifier: queue,
		Log:      log,
	})

	server := gin.New()
	require.NoError(t, server.SetTrustedProxies(nil))
	Setup(server, c, limiter)
	return &testApp{server: server, db: db, tokens: tokens, queue: queue}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

var customerSeq int

func (a *testApp) createCustomer(t *testing.T, name string, admin bool) (models.Customer, string) {
	t.Helper()
	customerSeq++
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	customer := models.Customer{
		Name:     name,
		Email:    fmt.Sprintf("%s%d@example.com", strings.ToLower(name), customerSeq),
		Phone:    fmt.Sprintf("98%08d", customerSeq),
		Password: hash,
		IsAdmin:  admin,
	}
	require.NoError(t, a.db.Create(&customer).Error)

	token, err := a.tokens.Generate(customer)
	require.NoError(t, err)
	return customer, token
}

func (a *testApp) createDish(t *testing.T, name string, price float64) models.Dish {
	t.Helper()
	dish := models.Dish{Name: name, Price: price, MenuID: 1, Type: models.DishTypeVeg, Available: true}
	require.NoError(t, a.db.Create(&dish).Error)
	return dish
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
