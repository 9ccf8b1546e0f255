package controller

import (
	"net/http"
	"strconv"

	"autoparts-storefront/cart"
	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// CartController handles HTTP requests for the session cart
type CartController struct {
	store *cart.Store
}

// NewCartController creates a new CartController
func NewCartController(store *cart.Store) *CartController {
	return &CartController{store: store}
}

func (c *CartController) dispatch(w http.ResponseWriter, r *http.Request, op string, actions ...cart.Action) {
	lines, err := c.store.Dispatch(r.Context(), Owner(r), actions...)
	if err != nil {
		logging.S().Errorf("❌ %s: Error updating cart: %v", op, err)
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cart.Response(lines))
}

// Cart handles GET /cart (list) and DELETE /cart (clear)
// Example response:
//
//	{"items": [{"id": 42, "name": "Brake Pad", "price": 19.5, "image": "/img/bp.png", "quantity": 2}], "itemCount": 2, "subtotal": 39}
func (c *CartController) Cart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		resp, err := c.store.Summary(r.Context(), Owner(r))
		if err != nil {
			logging.S().Errorf("❌ Cart: Error loading cart: %v", err)
			http.Error(w, "Failed to load cart", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		logging.S().Infof("🗑️ Cart: clearing cart for owner=%s", Owner(r))
		c.dispatch(w, r, "ClearCart", cart.Clear())
	default:
		methodNotAllowed(w, r, "Cart")
	}
}

// AddItem handles POST /cart/items
// Example request:
//
//	{"id": 42, "part_number": "BP-100", "name": "Brake Pad", "price": 19.5, "image": "/img/bp.png", "quantity": 2}
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	logging.S().Infof("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "AddItem")
		return
	}

	var req models.AddCartLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logging.S().Warnf("❌ AddItem: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	line := models.CartLine{
		ID:         req.ID,
		PartNumber: req.PartNumber,
		Name:       req.Name,
		Price:      req.Price,
		Image:      req.Image,
		Quantity:   req.Quantity,
	}
	if line.Image == "" {
		line.Image = quickorder.PlaceholderImage
	}
	c.dispatch(w, r, "AddItem", cart.Add(line))
}

// Item handles DELETE /cart/items/{id} and POST /cart/items/{id}/{increment|decrement}
func (c *CartController) Item(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/cart/items/")
	if len(parts) == 0 {
		c.AddItem(w, r)
		return
	}
	if len(parts) > 2 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		logging.S().Warnf("❌ Item: Invalid item ID: %s", parts[0])
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, "RemoveItem")
			return
		}
		c.dispatch(w, r, "RemoveItem", cart.Remove(id))
		return
	}

	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "AdjustItem")
		return
	}
	switch parts[1] {
	case "increment":
		c.dispatch(w, r, "IncrementItem", cart.Increment(id))
	case "decrement":
		c.dispatch(w, r, "DecrementItem", cart.Decrement(id))
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
