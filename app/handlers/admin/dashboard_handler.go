package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/heartscript/storefront/app/handlers"
	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

type AdminHandler struct {
	render        *render.Render
	validator     *validator.Validate
	catalog       *services.CatalogService
	orders        *services.OrderService
	tokens        *token.Manager
	adminPassword string
	secureCookie  bool
}

func NewAdminHandler(
	render *render.Render,
	validator *validator.Validate,
	catalog *services.CatalogService,
	orders *services.OrderService,
	tokens *token.Manager,
	adminPassword string,
	secureCookie bool,
) *AdminHandler {
	return &AdminHandler{
		render:        render,
		validator:     validator,
		catalog:       catalog,
		orders:        orders,
		tokens:        tokens,
		adminPassword: adminPassword,
		secureCookie:  secureCookie,
	}
}

// StatusOptions are offered in the dashboard's status picker. Other values
// are still accepted unless the strict transition table is enabled.
var StatusOptions = []string{
	models.OrderStatusPending,
	models.OrderStatusCODPending,
	models.OrderStatusConfirmed,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
}

func (h *AdminHandler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(token.CookieName); err == nil {
		if _, err := h.tokens.Validate(c.Value); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}
	handlers.RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":   "Admin Login",
		"Enabled": h.adminPassword != "",
	})
}

// LoginPostHandler exchanges the admin password for a signed token cookie.
// An empty configured password disables admin login.
func (h *AdminHandler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if h.adminPassword == "" {
		helpers.RedirectWithMessage(w, r, "/admin-login", "error", "Admin login is disabled.")
		return
	}
	if err := r.ParseForm(); err != nil {
		helpers.RedirectWithMessage(w, r, "/admin-login", "error", "Could not read the form.")
		return
	}

	password := r.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(h.adminPassword)) != 1 {
		logger.Warn().Msg("AdminHandler.LoginPostHandler: wrong admin password")
		helpers.RedirectWithMessage(w, r, "/admin-login", "error", "Wrong Password!")
		return
	}

	raw, err := h.tokens.Issue()
	if err != nil {
		logger.Error().Err(err).Msg("AdminHandler.LoginPostHandler: failed to sign token")
		helpers.RedirectWithMessage(w, r, "/admin-login", "error", "Something went wrong, please try again.")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     token.CookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info().Msg("AdminHandler.LoginPostHandler: admin logged in")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     token.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin-login", http.StatusSeeOther)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	ctx := r.Context()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("AdminHandler.Dashboard: failed to load orders")
		handlers.RenderError(h.render, w, r, err)
		return
	}
	products, err := h.catalog.Products(ctx, 0)
	if err != nil {
		logger.Error().Err(err).Msg("AdminHandler.Dashboard: failed to load products")
		handlers.RenderError(h.render, w, r, err)
		return
	}
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("AdminHandler.Dashboard: failed to load categories")
		handlers.RenderError(h.render, w, r, err)
		return
	}

	handlers.RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":         "Admin Dashboard",
		"Orders":        orders,
		"Products":      products,
		"Categories":    categories,
		"StatusOptions": StatusOptions,
	})
}
