package service

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// OrderClient reads order history from the backend
type OrderClient struct {
	backend *backendClient
}

// NewOrderClient creates a new OrderClient
func NewOrderClient(baseURL string, timeout time.Duration, observer LatencyObserver) *OrderClient {
	return &OrderClient{backend: newBackendClient(baseURL, timeout, observer)}
}

// ListOrders returns userID's orders, newest first as the backend sends them
func (c *OrderClient) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var resp models.OrderListResponse
	path := "/orders/" + url.PathEscape(userID)
	if err := c.backend.doJSON(ctx, http.MethodGet, path, "orders", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Orders == nil {
		resp.Orders = []models.Order{}
	}
	return resp.Orders, nil
}

// GetOrder returns one order
func (c *OrderClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var resp models.OrderDetailResponse
	path := "/orders/details/" + url.PathEscape(id)
	if err := c.backend.doJSON(ctx, http.MethodGet, path, "orders/details", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Order == nil {
		return nil, &quickorder.BackendError{Endpoint: "orders/details", Status: http.StatusNotFound, Message: "Order not found"}
	}
	return resp.Order, nil
}
