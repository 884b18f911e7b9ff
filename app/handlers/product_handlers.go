package handlers

import (
	"net/http"
	"strconv"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/services"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

type ProductHandler struct {
	catalog *services.CatalogService
	render  *render.Render
}

func NewProductHandler(catalog *services.CatalogService, r *render.Render) *ProductHandler {
	return &ProductHandler{catalog: catalog, render: r}
}

func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Home: failed to load categories")
		RenderError(h.render, w, r, err)
		return
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Categories": categories,
	})
}

// Shop lists products, optionally narrowed by ?category=<id>. A category
// value that is not an id matches nothing.
func (h *ProductHandler) Shop(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	selected := r.URL.Query().Get("category")

	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Shop: failed to load categories")
		RenderError(h.render, w, r, err)
		return
	}

	products := []models.Product{}
	switch id, parseErr := strconv.ParseUint(selected, 10, 64); {
	case selected == "" || selected == "None":
		selected = ""
		products, err = h.catalog.Products(r.Context(), 0)
	case parseErr == nil && id > 0:
		products, err = h.catalog.Products(r.Context(), uint(id))
	}
	if err != nil {
		logger.Error().Err(err).Msg("Shop: failed to load products")
		RenderError(h.render, w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":       "Shop",
		"Products":    products,
		"Categories":  categories,
		"SelectedCat": selected,
	})
}

func (h *ProductHandler) ProductView(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}

	product, related, err := h.catalog.ProductWithRelated(r.Context(), id)
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	if related == nil {
		related = []models.Product{}
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":   product.Name,
		"Product": product,
		"Images":  product.Images(),
		"Related": related,
	})
}
