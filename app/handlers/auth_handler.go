package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render       *render.Render
	accounts     *services.AccountService
	sessionStore sessions.SessionStore
	validator    *validator.Validate
}

func NewAuthHandler(r *render.Render, accounts *services.AccountService, sessionStore sessions.SessionStore, validator *validator.Validate) *AuthHandler {
	return &AuthHandler{
		render:       r,
		accounts:     accounts,
		sessionStore: sessionStore,
		validator:    validator,
	}
}

type RegisterForm struct {
	Username string `form:"username" validate:"required,max=80"`
	Email    string `form:"email" validate:"required,max=120"`
	Password string `form:"password" validate:"required"`
	Phone    string `form:"phone" validate:"omitempty,max=20"`
	Address  string `form:"address"`
	Pincode  string `form:"pincode" validate:"omitempty,max=10"`
}

// ForgotPasswordForm leaves the new password unchecked here; it is only
// looked at once the answers have been verified, so a failed attempt always
// reports its match count.
type ForgotPasswordForm struct {
	Email       string `form:"email" validate:"required"`
	NewPassword string `form:"new_password"`
}

// recoveryAnswers reads ans1..ans7 from a parsed form.
func recoveryAnswers(r *http.Request) [models.RecoverySlots]string {
	var a [models.RecoverySlots]string
	for i := range a {
		a[i] = r.FormValue(fmt.Sprintf("ans%d", i+1))
	}
	return a
}

func (h *AuthHandler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":         "Register",
		"RecoverySlots": models.RecoverySlots,
		"MinAnswers":    services.MinRecoveryAnswers,
	})
}

func (h *AuthHandler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if err := r.ParseForm(); err != nil {
		helpers.RedirectWithMessage(w, r, "/register", "error", "Could not read the form.")
		return
	}

	form := RegisterForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Address:  strings.TrimSpace(r.FormValue("address")),
		Pincode:  strings.TrimSpace(r.FormValue("pincode")),
	}
	if err := h.validator.Struct(&form); err != nil {
		helpers.RedirectWithMessage(w, r, "/register", "error", helpers.FirstValidationMessage(err))
		return
	}

	_, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
		Address:  form.Address,
		Pincode:  form.Pincode,
		Answers:  recoveryAnswers(r),
	})
	switch {
	case err == nil:
		helpers.RedirectWithMessage(w, r, "/user_login", "success", "Account created! Welcome to HeartScript.")
	case errors.Is(err, services.ErrConflict):
		helpers.RedirectWithMessage(w, r, "/register", "error", "Email already registered!")
	default:
		if helpers.StatusFromError(err) == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("RegisterPostHandler: registration failed")
		}
		helpers.RedirectWithMessage(w, r, "/register", "error", helpers.MessageFromError(err))
	}
}

func (h *AuthHandler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if helpers.GetUserIDFromContext(r.Context()) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{"Title": "Login"})
}

func (h *AuthHandler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if err := r.ParseForm(); err != nil {
		helpers.RedirectWithMessage(w, r, "/user_login", "error", "Could not read the form.")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, services.ErrUnauthorized) {
			logger.Error().Err(err).Msg("LoginPostHandler: authentication failed")
		}
		helpers.RedirectWithMessage(w, r, "/user_login", "error", "Invalid email or password.")
		return
	}

	err = h.sessionStore.SetUser(w, r, sessions.SessionUser{
		ID:         user.ID,
		Name:       user.Username,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
	})
	if err != nil {
		logger.Error().Err(err).Uint("user_id", user.ID).Msg("LoginPostHandler: failed to save session")
		helpers.RedirectWithMessage(w, r, "/user_login", "error", "Could not start your session.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler ends both the customer session and any admin token.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("LogoutHandler: failed to clear session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     token.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) ForgotPasswordGetHandler(w http.ResponseWriter, r *http.Request) {
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":         "Forgot Password",
		"RecoverySlots": models.RecoverySlots,
		"MinMatches":    services.MinRecoveryMatches,
	})
}

func (h *AuthHandler) ForgotPasswordPostHandler(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if err := r.ParseForm(); err != nil {
		helpers.RedirectWithMessage(w, r, "/forgot_password", "error", "Could not read the form.")
		return
	}

	form := ForgotPasswordForm{
		Email:       strings.TrimSpace(r.FormValue("email")),
		NewPassword: r.FormValue("new_password"),
	}
	if err := h.validator.Struct(&form); err != nil {
		helpers.RedirectWithMessage(w, r, "/forgot_password", "error", helpers.FirstValidationMessage(err))
		return
	}

	err := h.accounts.ResetPassword(r.Context(), form.Email, recoveryAnswers(r), form.NewPassword)
	switch {
	case err == nil:
		helpers.RedirectWithMessage(w, r, "/user_login", "success", "Success! Password updated.")
	case errors.Is(err, services.ErrNotFound):
		helpers.RedirectWithMessage(w, r, "/forgot_password", "error", "No account found with this email.")
	default:
		if helpers.StatusFromError(err) == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("ForgotPasswordPostHandler: reset failed")
		}
		helpers.RedirectWithMessage(w, r, "/forgot_password", "error", helpers.MessageFromError(err))
	}
}

func (h *AuthHandler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	user, orders, err := h.accounts.Profile(r.Context(), helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":   "My Profile",
		"Profile": user,
		"Orders":  orders,
	})
}

func (h *AuthHandler) ProfilePostHandler(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if err := ParseMultipart(w, r); err != nil {
		helpers.RedirectWithMessage(w, r, "/profile", "error", "Could not read the form.")
		return
	}

	avatar, err := ReadUpload(r, "profile_pic")
	if err != nil {
		logger.Warn().Err(err).Msg("ProfilePostHandler: unreadable avatar")
		helpers.RedirectWithMessage(w, r, "/profile", "error", "Upload error: could not read the file.")
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), helpers.GetUserIDFromContext(r.Context()), services.ProfileUpdate{
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Address: strings.TrimSpace(r.FormValue("address")),
		Pincode: strings.TrimSpace(r.FormValue("pincode")),
		Avatar:  avatar,
	})
	if err != nil {
		if helpers.StatusFromError(err) == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("ProfilePostHandler: update failed")
		}
		helpers.RedirectWithMessage(w, r, "/profile", "error", helpers.MessageFromError(err))
		return
	}

	if err := h.sessionStore.SetProfilePic(w, r, user.ProfilePic); err != nil {
		logger.Warn().Err(err).Msg("ProfilePostHandler: failed to refresh session avatar")
	}
	helpers.RedirectWithMessage(w, r, "/profile", "success", "Profile updated!")
}
