package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/services"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

type CheckoutHandler struct {
	render  *render.Render
	catalog *services.CatalogService
	orders  *services.OrderService
}

func NewCheckoutHandler(r *render.Render, catalog *services.CatalogService, orders *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{render: r, catalog: catalog, orders: orders}
}

func (h *CheckoutHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title":   "Checkout",
		"Product": product,
	})
}

// InitiatePayment places a cash-on-delivery order for one product from a
// JSON body and answers with the thank-you page location.
func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	fail := func(status int, message string) {
		_ = h.render.JSON(w, status, map[string]interface{}{"status": "error", "message": message})
	}

	data, err := helpers.DecodeJSON(r)
	if err != nil {
		fail(http.StatusBadRequest, helpers.MessageFromError(err))
		return
	}

	productID, err := strconv.ParseUint(helpers.Stringify(data["product_id"]), 10, 64)
	if err != nil {
		fail(http.StatusNotFound, "Product not found")
		return
	}

	userID := helpers.GetUserIDFromContext(r.Context())
	order, err := h.orders.CreateDirectOrder(r.Context(), &userID, uint(productID), services.Recipient{
		Name:          helpers.Stringify(data["name"]),
		Phone:         helpers.Stringify(data["phone"]),
		Email:         helpers.Stringify(data["email"]),
		HouseNo:       helpers.Stringify(data["house"]),
		Address:       helpers.Stringify(data["address"]),
		Landmark:      helpers.Stringify(data["landmark"]),
		Pincode:       helpers.Stringify(data["pincode"]),
		CustomDetails: helpers.Stringify(data["note"]),
	}, helpers.Stringify(data["mode"]))
	if err != nil {
		status := helpers.StatusFromError(err)
		if status == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("InitiatePayment: failed to create order")
		}
		message := helpers.MessageFromError(err)
		if status == http.StatusNotFound {
			message = "Product not found"
		}
		fail(status, message)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"order_id":     order.ID,
		"redirect_url": fmt.Sprintf("/thank_you/%d", order.ID),
	})
}

// SubmitOrder stores a client-assembled order. It answers 401 rather than
// redirecting when nobody is logged in.
func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	fail := func(status int, message string) {
		_ = h.render.JSON(w, status, map[string]interface{}{"success": false, "message": message})
	}

	userID := helpers.GetUserIDFromContext(r.Context())
	if userID == 0 {
		fail(http.StatusUnauthorized, "Order fail! Please Login or Register first to place an order.")
		return
	}

	data, err := helpers.DecodeJSON(r)
	if err != nil {
		fail(http.StatusBadRequest, helpers.MessageFromError(err))
		return
	}

	order, err := h.orders.SubmitOrder(r.Context(), &userID, services.Recipient{
		Name:          helpers.Stringify(data["name"]),
		Phone:         helpers.Stringify(data["phone"]),
		Email:         helpers.Stringify(data["email"]),
		HouseNo:       helpers.Stringify(data["house_no"]),
		Address:       helpers.Stringify(data["address"]),
		Landmark:      helpers.Stringify(data["landmark"]),
		Pincode:       helpers.Stringify(data["pincode"]),
		CustomDetails: helpers.Stringify(data["custom_details"]),
	}, helpers.Stringify(data["total"]), helpers.Stringify(data["items"]))
	if err != nil {
		logger.Error().Err(err).Msg("SubmitOrder: failed to create order")
		fail(helpers.StatusFromError(err), helpers.MessageFromError(err))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "order_id": order.ID})
}

// ThankYou shows an order to the customer who placed it. Orders owned by
// someone else look missing.
func (h *CheckoutHandler) ThankYou(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		RenderError(h.render, w, r, err)
		return
	}
	if order.UserID != nil && *order.UserID != helpers.GetUserIDFromContext(r.Context()) {
		RenderError(h.render, w, r, fmt.Errorf("order %d: %w", id, services.ErrNotFound))
		return
	}
	RenderPage(h.render, w, r, http.StatusOK, map[string]interface{}{
		"Title": "Thank You",
		"Order": order,
	})
}

func (h *CheckoutHandler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseID(r, "id")
	if err != nil {
		_ = h.render.Text(w, http.StatusBadRequest, helpers.MessageFromError(err))
		return
	}

	inv, err := h.orders.RenderInvoice(r.Context(), id)
	if err != nil {
		status := helpers.StatusFromError(err)
		if status == http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().Err(err).Uint("order_id", id).Msg("DownloadInvoice: render failed")
			_ = h.render.Text(w, status, "Invoice Error: could not generate the invoice.")
			return
		}
		_ = h.render.Text(w, status, helpers.MessageFromError(err))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, inv.Filename))
	_ = h.render.Data(w, http.StatusOK, inv.Body)
}
