package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/models/migrations"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/services/invoice"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/heartscript/storefront/app/utils/renderer"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/heartscript/storefront/app/utils/storage"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const adminPassword = "let-me-in"

type testApp struct {
	server  *httptest.Server
	db      *gorm.DB
	product models.Product
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migrations.AutoMigrate(db))

	category := models.Category{Name: "Lockets"}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{Name: "Silver Heart Locket", Price: 1499, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)

	disk, err := storage.NewLocalDisk(t.TempDir(), "/static/uploads")
	require.NoError(t, err)
	tokens, err := token.NewManager(securecookie.GenerateRandomKey(32), time.Hour)
	require.NoError(t, err)

	syncer := mirror.NewSyncer(mirror.Noop{}, 0)
	userRepo := repositories.NewUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	handler := NewRouter(Deps{
		Render:        renderer.New(true),
		Validator:     validator.New(),
		Logger:        zerolog.Nop(),
		Sessions:      sessions.NewCookieSessionStore(false, securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32)),
		Users:         userRepo,
		Accounts:      services.NewAccountService(userRepo, orderRepo, disk, syncer),
		Catalog:       services.NewCatalogService(categoryRepo, productRepo, disk, syncer),
		Orders:        services.NewOrderService(orderRepo, productRepo, invoice.NewPDFRenderer(), nil, syncer),
		Tokens:        tokens,
		AdminPassword: adminPassword,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, db: db, product: product}
}

// client keeps cookies and stops at the first redirect so tests can read
// the Location header.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) postJSON(t *testing.T, c *http.Client, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(a.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (a *testApp) registerAndLogin(t *testing.T, c *http.Client, email string) {
	t.Helper()
	resp := a.postForm(t, c, "/register", url.Values{
		"username": {"Asha"},
		"email":    {email},
		"password": {"secret123"},
		"ans1":     {"Paris"},
		"ans2":     {"Blue"},
		"ans3":     {"Rex"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/user_login?"), resp.Header.Get("Location"))

	resp = a.postForm(t, c, "/user_login", url.Values{"email": {email}, "password": {"secret123"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.registerAndLogin(t, c, "asha@example.com")

	resp := app.postJSON(t, c, "/initiate_payment", map[string]interface{}{
		"product_id": app.product.ID,
		"name":       "Asha",
		"phone":      "9999999999",
		"address":    "12 Rose Lane",
		"pincode":    "560001",
		"mode":       "shipped",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "success", body["status"])
	orderID := uint(body["order_id"].(float64))
	assert.Equal(t, fmt.Sprintf("/thank_you/%d", orderID), body["redirect_url"])

	resp = app.get(t, c, fmt.Sprintf("/thank_you/%d", orderID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode(t, resp)
	order := page["Order"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusCODPending, order["status"])
	assert.Equal(t, "1499", order["total"])
	assert.Equal(t, true, page["IsLoggedIn"])

	resp = app.get(t, c, fmt.Sprintf("/download_invoice/%d", orderID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), fmt.Sprintf("HeartScript_Invoice_%d.pdf", orderID))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestInitiatePaymentUnknownProduct(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.registerAndLogin(t, c, "asha@example.com")

	resp := app.postJSON(t, c, "/initiate_payment", map[string]interface{}{"product_id": 9999, "name": "Asha"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Product not found", body["message"])
}

func TestLoginRequiredRedirects(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := app.get(t, c, fmt.Sprintf("/checkout/%d", app.product.ID))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/user_login"))
}

func TestSubmitOrderRequiresSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := app.postJSON(t, c, "/submit_order", map[string]interface{}{"name": "Anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, false, body["success"])

	var count int64
	require.NoError(t, app.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitOrderDefaults(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.registerAndLogin(t, c, "asha@example.com")

	resp := app.postJSON(t, c, "/submit_order", map[string]interface{}{"name": "Asha", "total": "250.5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["success"])

	var order models.Order
	require.NoError(t, app.db.First(&order, uint(body["order_id"].(float64))).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "Unknown Item", order.Items)
	assert.Equal(t, "N/A", order.Phone)
	assert.Equal(t, "250.5", order.Total)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := app.get(t, c, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	resp = app.postForm(t, c, "/add_category", url.Values{"name": {"Frames"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode(t, resp)["message"])

	resp = app.postForm(t, c, "/admin-login", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/admin-login?"))

	resp = app.get(t, c, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var count int64
	require.NoError(t, app.db.Model(&models.Category{}).Where("name = ?", "Frames").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminBackOffice(t *testing.T) {
	app := newTestApp(t)
	customer := app.client(t)
	app.registerAndLogin(t, customer, "asha@example.com")
	resp := app.postJSON(t, customer, "/submit_order", map[string]interface{}{"name": "Asha", "items": "Locket"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orderID := uint(decode(t, resp)["order_id"].(float64))

	admin := app.client(t)
	resp = app.postForm(t, admin, "/admin-login", url.Values{"password": {adminPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = app.get(t, admin, "/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode(t, resp)
	assert.Equal(t, true, dash["IsAdmin"])
	assert.Len(t, dash["Orders"], 1)

	resp = app.postJSON(t, admin, fmt.Sprintf("/update_status/%d", orderID), map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, resp)["success"])

	resp = app.postJSON(t, admin, "/update_status/9999", map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid Order", decode(t, resp)["message"])

	var order models.Order
	require.NoError(t, app.db.First(&order, orderID).Error)
	assert.Equal(t, "Shipped", order.Status)

	resp = app.postForm(t, admin, "/add_category", url.Values{"name": {"Frames"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "status=success")

	resp = app.postForm(t, admin, "/add_category", url.Values{"name": {"Frames"}})
	assert.Contains(t, resp.Header.Get("Location"), "status=error")

	resp = app.get(t, admin, fmt.Sprintf("/delete_category/%d", app.product.CategoryID))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "status=success")

	var products int64
	require.NoError(t, app.db.Model(&models.Product{}).Count(&products).Error)
	assert.Zero(t, products)

	resp = app.get(t, admin, fmt.Sprintf("/delete_order/%d", orderID))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "status=success")

	resp = app.get(t, admin, "/admin-logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp = app.get(t, admin, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))
}

func TestThankYouHidesOtherCustomersOrders(t *testing.T) {
	app := newTestApp(t)
	owner := app.client(t)
	app.registerAndLogin(t, owner, "owner@example.com")
	resp := app.postJSON(t, owner, "/submit_order", map[string]interface{}{"name": "Owner"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orderID := uint(decode(t, resp)["order_id"].(float64))

	other := app.client(t)
	app.registerAndLogin(t, other, "other@example.com")
	resp = app.get(t, other, fmt.Sprintf("/thank_you/%d", orderID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShopAndProductPages(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := app.get(t, c, "/shop")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["Products"], 1)

	resp = app.get(t, c, fmt.Sprintf("/product/%d", app.product.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode(t, resp)
	assert.Equal(t, "Silver Heart Locket", page["Product"].(map[string]interface{})["name"])

	resp = app.get(t, c, "/product/9999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// redirectTarget splits a 303 Location into its path and flash values.
func redirectTarget(t *testing.T, resp *http.Response) (path, status, message string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Path, loc.Query().Get("status"), loc.Query().Get("message")
}

func TestRegisterFailures(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := app.postForm(t, c, "/register", url.Values{
		"username": {"Asha"},
		"email":    {"short@example.com"},
		"password": {"12345"},
		"ans1":     {"Paris"},
		"ans2":     {"Blue"},
		"ans3":     {"Rex"},
	})
	path, status, _ := redirectTarget(t, resp)
	assert.Equal(t, "/user_login", path)
	assert.Equal(t, "success", status)

	resp = app.postForm(t, c, "/register", url.Values{
		"username": {"Asha"},
		"email":    {"short@example.com"},
		"password": {"other"},
		"ans1":     {"a"},
		"ans2":     {"b"},
		"ans3":     {"c"},
	})
	path, status, message := redirectTarget(t, resp)
	assert.Equal(t, "/register", path)
	assert.Equal(t, "error", status)
	assert.Equal(t, "Email already registered!", message)

	resp = app.postForm(t, c, "/register", url.Values{
		"username": {"Ravi"},
		"email":    {"ravi@example.com"},
		"password": {"secret123"},
		"ans1":     {"a"},
		"ans4":     {"   "},
		"ans7":     {"b"},
	})
	path, status, message = redirectTarget(t, resp)
	assert.Equal(t, "/register", path)
	assert.Equal(t, "error", status)
	assert.Equal(t, "Please answer at least 3 security questions!", message)

	var count int64
	require.NoError(t, app.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestForgotPassword(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.registerAndLogin(t, c, "asha@example.com")
	app.get(t, c, "/logout")

	tests := []struct {
		name        string
		form        url.Values
		wantPath    string
		wantStatus  string
		wantMessage string
	}{
		{
			name:        "unknown email",
			form:        url.Values{"email": {"nobody@example.com"}, "new_password": {"x"}, "ans1": {"paris"}},
			wantPath:    "/forgot_password",
			wantStatus:  "error",
			wantMessage: "No account found with this email.",
		},
		{
			name:        "no matches with short password",
			form:        url.Values{"email": {"asha@example.com"}, "new_password": {"abc"}},
			wantPath:    "/forgot_password",
			wantStatus:  "error",
			wantMessage: "Verification Failed! Only 0 matched.",
		},
		{
			name:        "two matches",
			form:        url.Values{"email": {"asha@example.com"}, "new_password": {"newpass"}, "ans1": {"paris"}, "ans2": {" BLUE "}, "ans3": {"Tom"}},
			wantPath:    "/forgot_password",
			wantStatus:  "error",
			wantMessage: "Verification Failed! Only 2 matched.",
		},
		{
			name:        "three matches with short password",
			form:        url.Values{"email": {"asha@example.com"}, "new_password": {"abc"}, "ans1": {"Paris"}, "ans2": {"blue"}, "ans3": {"REX"}},
			wantPath:    "/user_login",
			wantStatus:  "success",
			wantMessage: "Success! Password updated.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, status, message := redirectTarget(t, app.postForm(t, c, "/forgot_password", tt.form))
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
		})
	}

	resp := app.postForm(t, c, "/user_login", url.Values{"email": {"asha@example.com"}, "password": {"abc"}})
	assert.Equal(t, "/", resp.Header.Get("Location"))
	resp = app.postForm(t, c, "/user_login", url.Values{"email": {"asha@example.com"}, "password": {"secret123"}})
	path, status, _ := redirectTarget(t, resp)
	assert.Equal(t, "/user_login", path)
	assert.Equal(t, "error", status)
}

func TestEmptyShopRendersEmptyList(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Where("1 = 1").Delete(&models.Product{}).Error)

	resp := app.get(t, app.client(t), "/shop")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.JSONEq(t, `[]`, string(page["Products"]))
}
