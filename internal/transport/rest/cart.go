package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/luxecurl/storefront/internal/cart"
	"github.com/luxecurl/storefront/internal/catalog"
	"github.com/luxecurl/storefront/internal/checkout"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/web"
)

// cartItemDto is the request body for adding a line to the cart. The
// quantity is deliberately unbounded here: the cart service saturates
// out-of-range values instead of rejecting them.
type cartItemDto struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int32  `json:"quantity"`
}

// quantityDto is the request body for changing a line's quantity. Values
// below the minimum make the update a no-op, values above the maximum clamp.
type quantityDto struct {
	Quantity int32 `json:"quantity"`
}

// cartLineView is one cart line resolved against the catalog for display.
type cartLineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// cartView is the cart as returned to the client.
type cartView struct {
	Items []cartLineView `json:"items"`
}

// GetCart returns the current cart for the requesting user.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	state, err := h.cart.Load(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartView(state))
}

// AddCartItem adds a product line to the cart, merging with an existing line
// for the same product.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto cartItemDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	state, err := h.cart.AddLine(r.Context(), userID, dto.ProductID, dto.Quantity)
	if err != nil {
		if errors.Is(err, sferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Unknown product added to cart", "product_id", dto.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product %s not found", dto.ProductID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding cart line", "product_id", dto.ProductID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartView(state))
}

// SetCartItemQuantity replaces the quantity of an existing line.
func (h *Handler) SetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID := r.PathValue("productID")
	var dto quantityDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	state, err := h.cart.SetQuantity(r.Context(), userID, productID, dto.Quantity)
	if err != nil {
		if errors.Is(err, sferrors.ErrLineNotFound) {
			mLogger.WarnContext(r.Context(), "Quantity change for missing line", "product_id", productID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product %s is not in the cart", productID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error changing line quantity", "product_id", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartView(state))
}

// RemoveCartItem removes a product line. Removing an absent line succeeds.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID := r.PathValue("productID")
	state, err := h.cart.RemoveLine(r.Context(), userID, productID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing cart line", "product_id", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartView(state))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	state, err := h.cart.Clear(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartView(state))
}

// CartTotals computes the money breakdown for the current cart and the
// shipping method given in the query string.
func (h *Handler) CartTotals(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	method := r.URL.Query().Get("shipping_method")
	if method == "" {
		method = "standard"
	}

	state, err := h.cart.Load(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	totals, err := checkout.ComputeTotals(state, method)
	if err != nil {
		if errors.Is(err, sferrors.ErrUnknownShippingMethod) {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Unknown shipping method %q", method))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error computing totals", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to compute totals")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, totals)
}

// ShippingMethods lists the supported shipping methods.
func (h *Handler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, checkout.ShippingMethods())
}

// toCartView resolves cart lines against the catalog. Lines whose product
// left the catalog keep a zero price so a stale cart still renders.
func toCartView(state cart.State) cartView {
	items := make([]cartLineView, 0, len(state))
	for _, line := range state {
		view := cartLineView{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, err := catalog.Lookup(line.ProductID); err == nil {
			view.Name = p.Name
			view.UnitPrice = p.UnitPrice
			view.LineTotal = p.UnitPrice * int64(line.Quantity)
		}
		items = append(items, view)
	}
	return cartView{Items: items}
}

// validateStruct runs struct validation and writes the field error envelope
// on failure. Returns true when the dto is valid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	err := h.validate.Struct(dto)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
	return false
}
