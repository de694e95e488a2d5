package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luxecurl/storefront/internal/checkout"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/luxecurl/storefront/internal/payment"
	"github.com/luxecurl/storefront/pkg/web"
)

// placeOrderDto is the validated checkout form.
type placeOrderDto struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,max=32"`
	Address        string `json:"address" validate:"required,max=300"`
	City           string `json:"city" validate:"required,max=100"`
	ShippingMethod string `json:"shipping_method" validate:"required,oneof=standard express pickup"`
}

// verifyResponse is returned after payment verification.
type verifyResponse struct {
	Verification *payment.Verification `json:"verification"`
	CartCleared  bool                  `json:"cart_cleared"`
}

// PlaceOrder turns the current cart into a pending order and returns the
// gateway authorization URL. The cart is not cleared here; that happens once
// the payment verifies.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto placeOrderDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	placed, err := h.checkout.PlaceOrder(r.Context(), userID, checkout.PlaceOrderRequest{
		Customer: orders.Customer{
			FirstName: dto.FirstName,
			LastName:  dto.LastName,
			Email:     dto.Email,
			Phone:     dto.Phone,
			Address:   dto.Address,
			City:      dto.City,
		},
		ShippingMethod: dto.ShippingMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, sferrors.ErrEmptyCart):
			mLogger.WarnContext(r.Context(), "Checkout attempted with empty cart")
			web.RespondError(w, mLogger, http.StatusUnprocessableEntity, "Cart is empty")
		case errors.Is(err, sferrors.ErrUnknownShippingMethod):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Unknown shipping method")
		case errors.Is(err, sferrors.ErrPaymentNotConfigured):
			mLogger.ErrorContext(r.Context(), "Payment gateway not configured")
			web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Payments are temporarily unavailable")
		case errors.Is(err, sferrors.ErrGatewayUnavailable):
			mLogger.ErrorContext(r.Context(), "Payment gateway unavailable", "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Payment gateway unavailable")
		case errors.Is(err, sferrors.ErrPaymentRejected):
			mLogger.WarnContext(r.Context(), "Payment initialization rejected", "error", err)
			web.RespondError(w, mLogger, http.StatusPaymentRequired, "Payment could not be initialized")
		default:
			mLogger.ErrorContext(r.Context(), "Error placing order", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order placed", "order_id", placed.Order.ID, "reference", placed.Order.Reference)
	web.RespondJSON(w, mLogger, http.StatusCreated, placed)
}

// VerifyPayment confirms a payment with the gateway. On success the cart is
// cleared; a failed clear is logged but does not fail the verification.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	reference := r.PathValue("reference")
	if reference == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing payment reference")
		return
	}

	verification, err := h.verifier.Verify(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, sferrors.ErrPaymentRejected):
			mLogger.WarnContext(r.Context(), "Payment not successful", "reference", reference)
			web.RespondError(w, mLogger, http.StatusPaymentRequired, "Payment was not successful")
		case errors.Is(err, sferrors.ErrGatewayUnavailable):
			mLogger.ErrorContext(r.Context(), "Payment gateway unavailable", "reference", reference, "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Payment gateway unavailable")
		case errors.Is(err, sferrors.ErrPaymentNotConfigured):
			web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Payments are temporarily unavailable")
		default:
			mLogger.ErrorContext(r.Context(), "Error verifying payment", "reference", reference, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to verify payment")
		}
		return
	}

	cleared := true
	if _, err := h.cart.Clear(r.Context(), userID); err != nil {
		mLogger.ErrorContext(r.Context(), "Failed to clear cart after payment", "reference", reference, "error", err)
		cleared = false
	}
	mLogger.InfoContext(r.Context(), "Payment verified", "reference", reference, "cart_cleared", cleared)
	web.RespondJSON(w, mLogger, http.StatusOK, verifyResponse{Verification: verification, CartCleared: cleared})
}
