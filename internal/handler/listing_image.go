package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/usedgoods/marketplace/internal/ctxkeys"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/service"
)

type ImageHandler struct {
	imageService *service.ImageService
	uploads      *Uploader
}

func NewImageHandler(imageService *service.ImageService, uploads *Uploader) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		uploads:      uploads,
	}
}

type deleteImagesRequest struct {
	ProductImagesIDs []string `json:"productImagesIds"`
}

type itemFailure struct {
	Index int    `json:"index"`
	Item  string `json:"item"`
	Error string `json:"error"`
}

type createImagesResponse struct {
	Images   []model.ListingImage `json:"images"`
	Failures []itemFailure        `json:"failures,omitempty"`
}

type deleteImagesResponse struct {
	Deleted  []string      `json:"deleted"`
	Failures []itemFailure `json:"failures,omitempty"`
}

// Create uploads images for a listing from a multipart form with product_id and images[].
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	err := h.uploads.parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	listingID := strings.TrimSpace(r.FormValue("product_id"))
	if listingID == "" {
		writeError(w, r, fmt.Errorf("%w: product_id is required", service.ErrValidation))
		return
	}

	handles, err := h.uploads.stage(r.Context(), r.MultipartForm, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}

	images, err := h.imageService.CreateImages(r.Context(), listingID, ctxkeys.UserID(r.Context()), handles)
	if err != nil {
		if len(images) == 0 {
			writeError(w, r, err)
			return
		}
		failures := []itemFailure{failureFor(err)}
		writeJSON(w, http.StatusCreated, createImagesResponse{Images: images, Failures: failures})
		return
	}

	writeJSON(w, http.StatusCreated, createImagesResponse{Images: images})
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteImagesRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.imageService.DeleteImages(r.Context(), req.ProductImagesIDs, ctxkeys.UserID(r.Context()))
	if result == nil {
		writeError(w, r, err)
		return
	}
	if err != nil && len(result.Deleted) == 0 {
		writeError(w, r, err)
		return
	}

	resp := deleteImagesResponse{Deleted: result.Deleted}
	for _, f := range result.Failed {
		resp.Failures = append(resp.Failures, failureFor(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func failureFor(err error) itemFailure {
	var se *service.StorageError
	if errors.As(err, &se) {
		return itemFailure{Index: se.Index, Item: se.Item, Error: "failed to " + se.Op + " file"}
	}
	return itemFailure{Index: -1, Error: "internal error"}
}
