package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/web"
)

// ListOrders returns the user's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	list, err := h.orders.List(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// GetOrder returns a single order by ID. Orders belonging to other users
// report not found.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	id := r.PathValue("id")
	view, err := h.orders.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, sferrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, view)
}

// StreamOrders pushes the user's order list as server-sent events whenever
// the remote store reports a change. The stream ends when the client
// disconnects.
func (h *Handler) StreamOrders(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	updates, stop, err := h.orders.Watch(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error starting order stream", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to start order stream")
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case list, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(list)
			if err != nil {
				mLogger.ErrorContext(r.Context(), "Error encoding order update", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: orders\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
