package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/heartscript/storefront/app/handlers"
	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/services"
	"github.com/rs/zerolog"
)

type ProductForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Price       string `form:"price" validate:"required,numeric"`
	Description string `form:"description"`
	CategoryID  string `form:"category_id" validate:"required,numeric"`
}

// imageFields are the multipart fields for the three product image slots.
var imageFields = [models.ProductImageSlots]string{"product_image", "product_image2", "product_image3"}

func (h *AdminHandler) AddProductPost(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if err := handlers.ParseMultipart(w, r); err != nil {
		logger.Warn().Err(err).Msg("AdminHandler.AddProductPost: unreadable form")
		helpers.RedirectWithMessage(w, r, "/admin", "error", "Could not read the form.")
		return
	}

	form := ProductForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Description: strings.TrimSpace(r.FormValue("description")),
		CategoryID:  strings.TrimSpace(r.FormValue("category_id")),
	}
	if err := h.validator.Struct(&form); err != nil {
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.FirstValidationMessage(err))
		return
	}

	in := services.NewProductInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		CategoryID:  form.CategoryID,
	}
	for i, field := range imageFields {
		upload, err := handlers.ReadUpload(r, field)
		if err != nil {
			logger.Warn().Err(err).Str("field", field).Msg("AdminHandler.AddProductPost: unreadable image")
			helpers.RedirectWithMessage(w, r, "/admin", "error", "Could not read an uploaded image.")
			return
		}
		in.Images[i] = upload
	}

	product, err := h.catalog.AddProduct(r.Context(), in)
	if err != nil {
		if helpers.StatusFromError(err) == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("AdminHandler.AddProductPost: failed to add product")
		}
		helpers.RedirectWithMessage(w, r, "/admin", "error", "Error: "+helpers.MessageFromError(err))
		return
	}
	helpers.RedirectWithMessage(w, r, "/admin", "success", fmt.Sprintf("Product %q added successfully!", product.Name))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		helpers.RedirectWithMessage(w, r, "/admin", "error", helpers.MessageFromError(err))
		return
	}

	product, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.RedirectWithMessage(w, r, "/admin", "error", "Product not found!")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Uint("product_id", id).Msg("AdminHandler.DeleteProduct: failed")
		helpers.RedirectWithMessage(w, r, "/admin", "error", "Error deleting product.")
		return
	}
	helpers.RedirectWithMessage(w, r, "/admin", "success", fmt.Sprintf("Product '%s' removed successfully!", product.Name))
}
