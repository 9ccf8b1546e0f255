package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"autoparts-storefront/logging"
	"autoparts-storefront/service"
)

// Thumbnailer produces resized product images
type Thumbnailer interface {
	Thumbnail(ctx context.Context, src, size string) ([]byte, error)
}

// ImageController serves cached product thumbnails
type ImageController struct {
	images Thumbnailer
}

// NewImageController creates a new ImageController
func NewImageController(images Thumbnailer) *ImageController {
	return &ImageController{images: images}
}

// Thumbnail handles GET /images/thumb?src=/img/bp.png&size=thumb
func (c *ImageController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "Thumbnail")
		return
	}

	src := strings.TrimSpace(r.URL.Query().Get("src"))
	if src == "" {
		http.Error(w, "src parameter is required", http.StatusBadRequest)
		return
	}
	size := strings.TrimSpace(r.URL.Query().Get("size"))
	if size == "" {
		size = "thumb"
	}

	data, err := c.images.Thumbnail(r.Context(), src, size)
	if err != nil {
		if errors.Is(err, service.ErrImageHostNotAllowed) {
			logging.S().Warnf("❌ Thumbnail: %v", err)
			http.Error(w, "Image host not allowed", http.StatusForbidden)
			return
		}
		logging.S().Errorf("❌ Thumbnail: %v", err)
		http.Error(w, "Failed to load image", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.S().Errorf("❌ Thumbnail: Error writing image response: %v", err)
	}
}
