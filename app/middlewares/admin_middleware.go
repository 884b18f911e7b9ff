package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
	"golang.org/x/time/rate"
)

// AdminAuthMiddleware admits a request only when it carries a valid admin
// token cookie. Scripts get a 403 JSON body; browsers are sent to the admin
// login page.
func AdminAuthMiddleware(tokens *token.Manager, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if c, err := r.Cookie(token.CookieName); err == nil {
				raw = c.Value
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("AdminAuthMiddleware: rejected")
				if helpers.WantsJSON(r) || r.Method != http.MethodGet {
					_ = rnd.JSON(w, http.StatusForbidden, map[string]interface{}{
						"success": false,
						"message": "Unauthorized",
					})
					return
				}
				http.Redirect(w, r, "/admin-login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(helpers.WithAdminClaims(r.Context(), claims)))
		})
	}
}

const throttleIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle limits POSTs per client address with a token bucket.
type LoginThrottle struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	now      func() time.Time
}

// NewLoginThrottle allows burst attempts at once and then one attempt per
// interval.
func NewLoginThrottle(interval time.Duration, burst int) *LoginThrottle {
	return &LoginThrottle{
		visitors: make(map[string]*visitor),
		every:    rate.Every(interval),
		burst:    burst,
		now:      time.Now,
	}
}

func (t *LoginThrottle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, v := range t.visitors {
		if now.Sub(v.lastSeen) > throttleIdle {
			delete(t.visitors, k)
		}
	}

	v, ok := t.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.every, t.burst)}
		t.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (t *LoginThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientIP(r)
		if !t.allow(ip) {
			zerolog.Ctx(r.Context()).Warn().Str("ip", ip).Msg("LoginThrottle: too many admin login attempts")
			helpers.RedirectWithMessage(w, r, "/admin-login", "error", "Too many attempts. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
