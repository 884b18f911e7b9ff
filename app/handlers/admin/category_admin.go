package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/services"
	"github.com/rs/zerolog"
)

func (h *AdminHandler) AddCategoryPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		helpers.RedirectWithMessage(w, r, "/admin", "error", "Could not read the form.")
		return
	}

	category, err := h.catalog.AddCategory(r.Context(), r.FormValue("name"))
	switch {
	case err == nil:
		helpers.RedirectWithMessage(w, r, "/admin", "success", fmt.Sprintf("Category %q added!", category.Name))
	case errors.Is(err, services.ErrConflict):
		helpers.RedirectWithMessage(w, r, "/admin", "error", "Category already exists.")
	default:
		if helpers.StatusFromError(err) == http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("AdminHandler.AddCategoryPost: failed to add category")
		}
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
	}
}

// DeleteCategory removes a category together with all of its products.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
		return
	}

	removed, err := h.catalog.DeleteCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.RedirectWithMessage(w, r, "/admin", "error", "Category not found!")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Uint("category_id", id).Msg("AdminHandler.DeleteCategory: failed")
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
		return
	}
	helpers.RedirectWithMessage(w, r, "/admin", "success", fmt.Sprintf("Category removed along with %d products.", removed))
}
