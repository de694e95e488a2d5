package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/mailer"
	"github.com/luxecurl/storefront/pkg/web"
)

// SubmitContact accepts a contact form submission.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req mailer.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, req) {
		return
	}

	if err := h.contact.Submit(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, sferrors.ErrMailNotConfigured):
			mLogger.ErrorContext(r.Context(), "Mail relay not configured")
			web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Contact form is temporarily unavailable")
		case errors.Is(err, sferrors.ErrRelayUnavailable):
			mLogger.ErrorContext(r.Context(), "Mail relay unavailable", "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Contact form is temporarily unavailable")
		default:
			mLogger.ErrorContext(r.Context(), "Error submitting contact form", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to submit contact form")
		}
		return
	}
	web.RespondJSON(w, mLogger, http.StatusAccepted, map[string]string{"status": "received"})
}
