package models

// CartLine represents one product line in a session cart
type CartLine struct {
	ID         int64   `json:"id"`
	PartNumber string  `json:"part_number,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Image      string  `json:"image"`
	Quantity   int     `json:"quantity"`
}

// AddCartLineRequest represents the request body for POST /cart/items
// Example: {"id": 42, "part_number": "BP-100", "name": "Brake Pad", "price": 19.5, "image": "/img/bp.png", "quantity": 2}
type AddCartLineRequest struct {
	ID         int64   `json:"id" validate:"required"`
	PartNumber string  `json:"part_number"`
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	Image      string  `json:"image"`
	Quantity   int     `json:"quantity" validate:"gte=1"`
}

// CartResponse represents the response for cart endpoints
// Example response:
//
//	{
//	  "items": [{"id": 42, "name": "Brake Pad", "price": 19.5, "image": "/img/bp.png", "quantity": 2}],
//	  "itemCount": 2,
//	  "subtotal": 39
//	}
type CartResponse struct {
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
	Notices   []Notice   `json:"notices,omitempty"`
}

// WishlistResponse represents the response for wishlist endpoints
type WishlistResponse struct {
	Items []string `json:"items"`
}
