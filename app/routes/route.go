package routes

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/heartscript/storefront/app/handlers"
	"github.com/heartscript/storefront/app/handlers/admin"
	"github.com/heartscript/storefront/app/middlewares"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/utils/metrics"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

type Deps struct {
	Render        *render.Render
	Validator     *validator.Validate
	Logger        zerolog.Logger
	Sessions      sessions.SessionStore
	Users         repositories.UserRepositoryImpl
	Accounts      *services.AccountService
	Catalog       *services.CatalogService
	Orders        *services.OrderService
	Tokens        *token.Manager
	AdminPassword string
	SecureCookies bool
	// CSRFKey enables CSRF protection on unsafe methods when set.
	CSRFKey []byte
	// StaticDir is served under /static/.
	StaticDir string
}

func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger(d.Logger))
	router.Use(middlewares.SessionUserMiddleware(d.Sessions))

	if d.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))
	}
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	authHandler := handlers.NewAuthHandler(d.Render, d.Accounts, d.Sessions, d.Validator)
	productHandler := handlers.NewProductHandler(d.Catalog, d.Render)
	checkoutHandler := handlers.NewCheckoutHandler(d.Render, d.Catalog, d.Orders)
	adminHandler := admin.NewAdminHandler(d.Render, d.Validator, d.Catalog, d.Orders, d.Tokens, d.AdminPassword, d.SecureCookies)

	requireLogin := middlewares.RequireLogin(d.Sessions, d.Users, d.Render)
	requireAdmin := middlewares.AdminAuthMiddleware(d.Tokens, d.Render)
	throttle := middlewares.NewLoginThrottle(12*time.Second, 5)

	router.HandleFunc("/", productHandler.Home).Methods("GET")
	router.HandleFunc("/shop", productHandler.Shop).Methods("GET")
	router.HandleFunc("/product/{id:[0-9]+}", productHandler.ProductView).Methods("GET")

	router.HandleFunc("/register", authHandler.RegisterGetHandler).Methods("GET")
	router.HandleFunc("/register", authHandler.RegisterPostHandler).Methods("POST")
	router.HandleFunc("/user_login", authHandler.LoginGetHandler).Methods("GET")
	router.HandleFunc("/user_login", authHandler.LoginPostHandler).Methods("POST")
	router.HandleFunc("/forgot_password", authHandler.ForgotPasswordGetHandler).Methods("GET")
	router.HandleFunc("/forgot_password", authHandler.ForgotPasswordPostHandler).Methods("POST")
	router.HandleFunc("/logout", authHandler.LogoutHandler).Methods("GET")

	router.Handle("/profile", requireLogin(http.HandlerFunc(authHandler.ProfileGetHandler))).Methods("GET")
	router.Handle("/profile", requireLogin(http.HandlerFunc(authHandler.ProfilePostHandler))).Methods("POST")

	router.Handle("/checkout/{id:[0-9]+}", requireLogin(http.HandlerFunc(checkoutHandler.CheckoutPage))).Methods("GET")
	router.Handle("/initiate_payment", requireLogin(http.HandlerFunc(checkoutHandler.InitiatePayment))).Methods("POST")
	router.HandleFunc("/submit_order", checkoutHandler.SubmitOrder).Methods("POST")
	router.Handle("/thank_you/{id:[0-9]+}", requireLogin(http.HandlerFunc(checkoutHandler.ThankYou))).Methods("GET")
	router.HandleFunc("/download_invoice/{id:[0-9]+}", checkoutHandler.DownloadInvoice).Methods("GET")

	router.HandleFunc("/admin-login", adminHandler.LoginGetHandler).Methods("GET")
	router.Handle("/admin-login", throttle.Middleware(http.HandlerFunc(adminHandler.LoginPostHandler))).Methods("POST")
	router.HandleFunc("/admin-logout", adminHandler.LogoutHandler).Methods("GET")

	adminRouter := router.NewRoute().Subrouter()
	adminRouter.Use(requireAdmin)
	adminRouter.HandleFunc("/admin", adminHandler.Dashboard).Methods("GET")
	adminRouter.HandleFunc("/update_status/{id:[0-9]+}", adminHandler.UpdateOrderStatusPost).Methods("POST")
	adminRouter.HandleFunc("/delete_order/{id:[0-9]+}", adminHandler.DeleteOrder).Methods("GET")
	adminRouter.HandleFunc("/add_category", adminHandler.AddCategoryPost).Methods("POST")
	adminRouter.HandleFunc("/delete_category/{id:[0-9]+}", adminHandler.DeleteCategory).Methods("GET")
	adminRouter.HandleFunc("/add_product", adminHandler.AddProductPost).Methods("POST")
	adminRouter.HandleFunc("/delete_product/{id:[0-9]+}", adminHandler.DeleteProduct).Methods("GET")

	var handler http.Handler = router
	if len(d.CSRFKey) > 0 {
		handler = csrf.Protect(d.CSRFKey,
			csrf.Secure(d.SecureCookies),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = d.Render.JSON(w, http.StatusForbidden, map[string]interface{}{
					"success": false,
					"message": "Invalid or missing CSRF token.",
				})
			})),
		)(handler)
	}
	return middlewares.MethodOverrideMiddleware(handler)
}
