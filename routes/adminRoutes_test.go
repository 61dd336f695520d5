package routes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemotedAdminLosesAccess(t *testing.T) {
	app := newTestApp(t, nil)
	head, headToken := app.createCustomer(t, "Head", true)
	deputy, deputyToken := app.createCustomer(t, "Deputy", true)

	requireStatus(t, app.do(t, http.MethodGet, "/api/admin/stats", nil, deputyToken), http.StatusOK)

	requireStatus(t, app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/customers/%d/demote", deputy.ID), nil, headToken), http.StatusOK)

	// The deputy's token still claims admin, but the role is gone.
	rec := app.do(t, http.MethodGet, "/api/admin/stats", nil, deputyToken)
	requireStatus(t, rec, http.StatusForbidden)
	assert.Equal(t, "Admin access required", decode(t, rec)["error"])

	requireStatus(t, app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/customers/%d/demote", head.ID), nil, headToken), http.StatusBadRequest)
}

func TestPromotionNeedsFreshToken(t *testing.T) {
	app := newTestApp(t, nil)
	_, adminToken := app.createCustomer(t, "Admin", true)
	customer, staleToken := app.createCustomer(t, "Asha", false)

	rec := app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/customers/%d/promote", customer.ID), nil, adminToken)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, true, decode(t, rec)["customer"].(map[string]any)["isAdmin"])

	requireStatus(t, app.do(t, http.MethodGet, "/api/admin/stats", nil, staleToken), http.StatusForbidden)

	rec = app.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": customer.Email, "password": testPassword}, "")
	requireStatus(t, rec, http.StatusOK)
	freshToken := decode(t, rec)["token"].(string)
	requireStatus(t, app.do(t, http.MethodGet, "/api/admin/stats", nil, freshToken), http.StatusOK)

	requireStatus(t, app.do(t, http.MethodPut, "/api/admin/customers/999/promote", nil, adminToken), http.StatusNotFound)
}

func TestAdminStatsAndCustomers(t *testing.T) {
	app := newTestApp(t, nil)
	_, adminToken := app.createCustomer(t, "Admin", true)
	customer, token := app.createCustomer(t, "Asha", false)
	tikka := app.createDish(t, "Paneer Tikka", 100)

	body := orderBody(customer.ID, line(tikka, 2))
	body["discount"] = 20
	requireStatus(t, app.do(t, http.MethodPost, "/api/orders/place", body, token), http.StatusCreated)

	rec := app.do(t, http.MethodGet, "/api/admin/stats", nil, adminToken)
	requireStatus(t, rec, http.StatusOK)
	stats := decode(t, rec)
	assert.Equal(t, 2.0, stats["customers"])
	assert.Equal(t, 1.0, stats["orders"])
	assert.Equal(t, 1.0, stats["dishes"])
	assert.Equal(t, 180.0, stats["revenue"])
	notifications := stats["notifications"].(map[string]any)
	assert.Equal(t, 1.0, notifications[models.NotificationStatusPending])

	rec = app.do(t, http.MethodGet, "/api/admin/customers?search=asha", nil, adminToken)
	requireStatus(t, rec, http.StatusOK)
	customers := decode(t, rec)["customers"].([]any)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.Email, customers[0].(map[string]any)["email"])

	rec = app.do(t, http.MethodGet, "/api/admin/notifications?status=pending", nil, adminToken)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode(t, rec)["notifications"], 1)
	requireStatus(t, app.do(t, http.MethodGet, "/api/admin/notifications?status=lost", nil, adminToken), http.StatusBadRequest)
}

func TestAdminDishAndMenuManagement(t *testing.T) {
	app := newTestApp(t, nil)
	_, adminToken := app.createCustomer(t, "Admin", true)
	_, token := app.createCustomer(t, "Asha", false)

	dish := map[string]any{"name": "Dal Makhani", "price": 220, "menuId": 2, "type": "veg"}
	requireStatus(t, app.do(t, http.MethodPost, "/api/admin/dishes", dish, token), http.StatusForbidden)

	rec := app.do(t, http.MethodPost, "/api/admin/dishes", dish, adminToken)
	requireStatus(t, rec, http.StatusCreated)
	created := decode(t, rec)["dish"].(map[string]any)
	assert.Equal(t, true, created["available"])
	dishID := uint(created["ID"].(float64))

	dish["menuId"] = 999
	requireStatus(t, app.do(t, http.MethodPost, "/api/admin/dishes", dish, adminToken), http.StatusBadRequest)

	dish["menuId"] = 2
	dish["available"] = false
	dish["price"] = 240
	rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/dishes/%d", dishID), dish, adminToken)
	requireStatus(t, rec, http.StatusOK)
	updated := decode(t, rec)["dish"].(map[string]any)
	assert.Equal(t, false, updated["available"])
	assert.Equal(t, 240.0, updated["price"])

	rec = app.do(t, http.MethodGet, "/api/dishes?available=false&menuId=2", nil, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode(t, rec)["dishes"], 1)
	requireStatus(t, app.do(t, http.MethodGet, "/api/dishes?type=spicy", nil, ""), http.StatusBadRequest)

	rec = app.do(t, http.MethodGet, "/api/menus/2/dishes?available=true", nil, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode(t, rec)["menu"].(map[string]any)["dishes"])

	menu := map[string]any{"name": "Chaat", "icon": "chaat.png"}
	rec = app.do(t, http.MethodPost, "/api/admin/menus", menu, adminToken)
	requireStatus(t, rec, http.StatusCreated)
	menuID := uint(decode(t, rec)["menu"].(map[string]any)["ID"].(float64))
	requireStatus(t, app.do(t, http.MethodPost, "/api/admin/menus", menu, adminToken), http.StatusBadRequest)

	menu["name"] = "Street Chaat"
	requireStatus(t, app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/menus/%d", menuID), menu, adminToken), http.StatusOK)

	requireStatus(t, app.do(t, http.MethodDelete, "/api/admin/menus/2", nil, adminToken), http.StatusBadRequest)
	requireStatus(t, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/menus/%d", menuID), nil, adminToken), http.StatusOK)
	requireStatus(t, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/menus/%d", menuID), nil, adminToken), http.StatusNotFound)

	rec = app.do(t, http.MethodGet, "/api/menus", nil, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode(t, rec)["menus"], len(models.DefaultMenus))
}

type fakeUploader struct {
	key  string
	body []byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.key, u.body = key, raw
	return "https://cdn.example.com/" + key, nil
}

func TestUploadDishImage(t *testing.T) {
	app := newTestApp(t, nil)
	_, adminToken := app.createCustomer(t, "Admin", true)
	tikka := app.createDish(t, "Paneer Tikka", 100)

	uploadPath := fmt.Sprintf("/api/admin/dishes/%d/image", tikka.ID)
	upload := func(server *gin.Engine, contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="tikka.png"`)
		header.Set("Content-Type", contentType)
		part, err := form.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, uploadPath, &buf)
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	// No storage configured.
	requireStatus(t, upload(app.server, "image/png"), http.StatusServiceUnavailable)

	uploader := &fakeUploader{}
	c := controllers.New(controllers.Controller{DB: app.db, Tokens: app.tokens, Uploader: uploader})
	server := gin.New()
	Setup(server, c, nil)

	requireStatus(t, upload(server, "text/plain"), http.StatusBadRequest)

	rec := upload(server, "image/png")
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, []byte("png-bytes"), uploader.body)
	assert.Contains(t, uploader.key, fmt.Sprintf("dishes/%d-", tikka.ID))

	var dish models.Dish
	require.NoError(t, app.db.First(&dish, tikka.ID).Error)
	assert.Equal(t, decode(t, rec)["imageUrl"], dish.ImageURL)
}
