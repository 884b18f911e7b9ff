package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/heartscript/storefront/app/utils/token"
)

type contextKey string

const (
	ContextKeyUser  contextKey = "sessionUser"
	ContextKeyAdmin contextKey = "adminClaims"
)

func WithSessionUser(ctx context.Context, user *sessions.SessionUser) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

func GetSessionUser(ctx context.Context) *sessions.SessionUser {
	user, _ := ctx.Value(ContextKeyUser).(*sessions.SessionUser)
	return user
}

// GetUserIDFromContext returns 0 when nobody is logged in.
func GetUserIDFromContext(ctx context.Context) uint {
	if user := GetSessionUser(ctx); user != nil {
		return user.ID
	}
	return 0
}

func WithAdminClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ContextKeyAdmin, claims)
}

func IsAdmin(ctx context.Context) bool {
	claims, ok := ctx.Value(ContextKeyAdmin).(*token.Claims)
	return ok && claims != nil
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", err.Field())
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", err.Field())
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be a number.", err.Field())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s characters.", err.Field(), err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s characters.", err.Field(), err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", err.Field(), err.Tag())
		}
	}
	return errorMessages
}

// FirstValidationMessage flattens validation errors into one line suitable
// for a redirect message.
func FirstValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	msgs := FormatValidationErrors(verrs)
	return msgs[strings.ToLower(verrs[0].Field())]
}

// StatusFromError maps service errors onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientAnswers),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrVerificationFailed):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// MessageFromError returns text that is safe to show to the visitor.
// Unexpected errors are not echoed.
func MessageFromError(err error) string {
	var vf *services.VerificationFailedError
	switch {
	case errors.As(err, &vf):
		return fmt.Sprintf("Verification Failed! Only %d matched.", vf.Matches)
	case errors.Is(err, services.ErrInsufficientAnswers):
		return "Please answer at least 3 security questions!"
	case StatusFromError(err) == http.StatusInternalServerError:
		return "Something went wrong, please try again."
	default:
		return err.Error()
	}
}

// RedirectWithMessage sends the visitor back to path with a status and a
// human-readable message in the query string.
func RedirectWithMessage(w http.ResponseWriter, r *http.Request, path, status, message string) {
	q := url.Values{}
	q.Set("status", status)
	q.Set("message", message)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	http.Redirect(w, r, path+sep+q.Encode(), http.StatusSeeOther)
}

// WantsJSON reports whether the caller is a script rather than a form post.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// DecodeJSON reads the body into a generic map, keeping numbers as written.
func DecodeJSON(r *http.Request) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", services.ErrValidation)
	}
	return data, nil
}

// Stringify renders a decoded JSON value the way it should be stored in a
// text column. Missing and null values become "".
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// ParseID reads a positive integer route variable.
func ParseID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q is not a valid id: %w", name, raw, services.ErrValidation)
	}
	return uint(id), nil
}
