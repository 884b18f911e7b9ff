package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/services"
	"github.com/rs/zerolog"
)

// statusFromRequest reads the new status from a form field or a JSON body.
func statusFromRequest(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		data, err := helpers.DecodeJSON(r)
		if err != nil {
			return "", err
		}
		return helpers.Stringify(data["status"]), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("unreadable form: %w", services.ErrValidation)
	}
	return r.FormValue("status"), nil
}

// UpdateOrderStatusPost answers scripts with {success, message} and
// browsers with a redirect back to the dashboard.
func (h *AdminHandler) UpdateOrderStatusPost(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	asJSON := helpers.WantsJSON(r)

	respond := func(status int, ok bool, message string) {
		if asJSON {
			_ = h.render.JSON(w, status, map[string]interface{}{"success": ok, "message": message})
			return
		}
		flash := "success"
		if !ok {
			flash = "error"
		}
		helpers.RedirectWithMessage(w, r, "/admin", flash, message)
	}

	id, err := helpers.ParseID(r, "id")
	if err != nil {
		respond(http.StatusBadRequest, false, "Invalid Order")
		return
	}
	status, err := statusFromRequest(r)
	if err != nil {
		respond(http.StatusBadRequest, false, helpers.MessageFromError(err))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		code := helpers.StatusFromError(err)
		switch {
		case errors.Is(err, services.ErrNotFound):
			respond(code, false, "Invalid Order")
		case code == http.StatusInternalServerError:
			logger.Error().Err(err).Uint("order_id", id).Msg("AdminHandler.UpdateOrderStatusPost: update failed")
			respond(code, false, helpers.MessageFromError(err))
		default:
			respond(code, false, helpers.MessageFromError(err))
		}
		return
	}

	if asJSON {
		respond(http.StatusOK, true, "Status updated!")
		return
	}
	respond(http.StatusOK, true, fmt.Sprintf("Order #%d updated to %s", order.ID, order.Status))
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.RedirectWithMessage(w, r, "/admin", "error", "Order not found!")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Uint("order_id", id).Msg("AdminHandler.DeleteOrder: failed")
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
		return
	}
	helpers.RedirectWithMessage(w, r, "/admin", "success", fmt.Sprintf("Order #%d deleted successfully!", id))
}
