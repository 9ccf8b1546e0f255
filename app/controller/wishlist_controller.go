package controller

import (
	"net/http"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/wishlist"
)

// WishlistController handles HTTP requests for the session wishlist
type WishlistController struct {
	store *wishlist.Store
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(store *wishlist.Store) *WishlistController {
	return &WishlistController{store: store}
}

// List handles GET /wishlist
// Example response:
//
//	{"items": ["42", "77"]}
func (c *WishlistController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "ListWishlist")
		return
	}
	items, err := c.store.List(r.Context(), Owner(r))
	if err != nil {
		logging.S().Errorf("❌ ListWishlist: %v", err)
		http.Error(w, "Failed to load wishlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.WishlistResponse{Items: items})
}

// Item handles POST /wishlist/{id} and DELETE /wishlist/{id}
func (c *WishlistController) Item(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/wishlist/")
	if len(parts) == 0 {
		c.List(w, r)
		return
	}
	if len(parts) != 1 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	var (
		items []string
		err   error
	)
	switch r.Method {
	case http.MethodPost:
		items, err = c.store.Add(r.Context(), Owner(r), parts[0])
	case http.MethodDelete:
		items, err = c.store.Remove(r.Context(), Owner(r), parts[0])
	default:
		methodNotAllowed(w, r, "WishlistItem")
		return
	}
	if err != nil {
		logging.S().Errorf("❌ WishlistItem: %v", err)
		http.Error(w, "Failed to update wishlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.WishlistResponse{Items: items})
}
