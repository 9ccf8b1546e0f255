package models

// OrderItem is a purchased line inside an order
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// AddressDetails holds billing or shipping contact data
type AddressDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

// Order represents a placed order from the backend order history
type Order struct {
	ID            int64           `json:"id"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   float64         `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Billing       *AddressDetails `json:"billing,omitempty"`
	Shipping      *AddressDetails `json:"shipping,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// OrderListResponse is the backend response for GET /orders/{userId}
// Example: {"success": true, "orders": [{"id": 1, "items": [...], "total_amount": 120.5, ...}]}
type OrderListResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
}

// OrderDetailResponse is the backend response for GET /orders/details/{id}
type OrderDetailResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order"`
}
