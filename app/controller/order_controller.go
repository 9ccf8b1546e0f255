package controller

import (
	"context"
	"net/http"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
)

// OrderBackend reads order history
type OrderBackend interface {
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// OrderController handles HTTP requests for the signed-in user's order history
type OrderController struct {
	orders   OrderBackend
	identity IdentityResolver
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderBackend, identity IdentityResolver) *OrderController {
	return &OrderController{orders: orders, identity: identity}
}

// Orders handles GET /orders and GET /orders/{id}
func (c *OrderController) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "Orders")
		return
	}
	user, ok := requireUser(w, r, c.identity, "Orders")
	if !ok {
		return
	}

	parts := pathSegments(r, "/orders")
	switch len(parts) {
	case 0:
		orders, err := c.orders.ListOrders(r.Context(), user.ID)
		if err != nil {
			backendFailure(w, "ListOrders", err, "Failed to load orders")
			return
		}
		logging.S().Infof("✅ ListOrders: %d orders for user=%s", len(orders), user.ID)
		writeJSON(w, http.StatusOK, models.OrderListResponse{Success: true, Orders: orders})
	case 1:
		order, err := c.orders.GetOrder(r.Context(), parts[0])
		if err != nil {
			backendFailure(w, "GetOrder", err, "Failed to load order")
			return
		}
		writeJSON(w, http.StatusOK, models.OrderDetailResponse{Success: true, Order: order})
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
