package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags every request with an id and attaches a child logger to
// its context, then logs the outcome.
func RequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logger := base.With().Str("request_id", requestID).Logger()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

// SessionUserMiddleware copies the logged-in user from the cookie session into
// the request context. Anonymous requests pass through unchanged.
func SessionUserMiddleware(store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := store.GetUser(r); user != nil {
				r = r.WithContext(helpers.WithSessionUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin sends anonymous visitors to the login page. A session that
// points at a user who no longer exists is cleared.
func RequireLogin(store sessions.SessionStore, users repositories.UserRepositoryImpl, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context())

			userID := helpers.GetUserIDFromContext(r.Context())
			if userID == 0 {
				deny(w, r, rnd, "info", "Please login to proceed.")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error().Err(err).Uint("user_id", userID).Msg("RequireLogin: failed to load user")
				deny(w, r, rnd, "error", "Something went wrong, please try again.")
				return
			}
			if user == nil {
				logger.Warn().Uint("user_id", userID).Msg("RequireLogin: session user no longer exists")
				if err := store.ClearSession(w, r); err != nil {
					logger.Error().Err(err).Msg("RequireLogin: failed to clear session")
				}
				deny(w, r, rnd, "error", "Account error. Please login again.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, rnd *render.Render, status, message string) {
	if helpers.WantsJSON(r) {
		_ = rnd.JSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"status":  "error",
			"message": message,
		})
		return
	}
	helpers.RedirectWithMessage(w, r, "/user_login", status, message)
}

func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.URL.Query().Get("_method")
			if override == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				_ = r.ParseForm()
				override = r.Form.Get("_method")
			}
			if override != "" {
				r.Method = strings.ToUpper(override)
			}
		}
		next.ServeHTTP(w, r)
	})
}
