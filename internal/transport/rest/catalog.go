package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/luxecurl/storefront/internal/catalog"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/web"
)

// Catalog lists every product in display order.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, catalog.All())
}

// ProductImage serves one product photo. Images are immutable, so successful
// responses carry a long cache lifetime.
func (h *Handler) ProductImage(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productID := r.PathValue("productID")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid image index")
		return
	}

	img, err := h.images.Get(productID, index)
	if err != nil {
		switch {
		case errors.Is(err, sferrors.ErrInvalidImageRef):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid image reference")
		case errors.Is(err, sferrors.ErrImageNotFound):
			web.RespondError(w, mLogger, http.StatusNotFound, "Image not found")
		default:
			mLogger.ErrorContext(r.Context(), "Error reading image", "product_id", productID, "index", index, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to read image")
		}
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
