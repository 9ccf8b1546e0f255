package models

// QuoteItem is one line sent to the quote service
type QuoteItem struct {
	ProductID  *int64   `json:"product_id"`
	PartNumber string   `json:"part_number"`
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Qty        int      `json:"qty"`
	MappedTo   *string  `json:"mapped_to"`
}

// CreateQuoteRequest is the backend body for POST /quotes/create
//
//	Example: {
//	  "user_id": "user_2abc",
//	  "user_email": "buyer@example.com",
//	  "name": "Quick Bulk 2026-01-04T10:30:00Z",
//	  "items": [{"product_id": 42, "part_number": "BP-100", "name": "Brake Pad", "price": 19.5, "qty": 2, "mapped_to": null}]
//	}
type CreateQuoteRequest struct {
	UserID    string      `json:"user_id"`
	UserEmail *string     `json:"user_email"`
	Name      string      `json:"name"`
	Items     []QuoteItem `json:"items"`
}

// Quote represents a persisted quote as returned by the backend
type Quote struct {
	ID          int64   `json:"id"`
	QuoteNumber string  `json:"quote_number"`
	Token       string  `json:"token"`
	UserID      *string `json:"user_id,omitempty"`
	UserEmail   *string `json:"user_email,omitempty"`
	Name        *string `json:"name,omitempty"`
	Note        *string `json:"note,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// CreateQuoteResponse is the backend response for POST /quotes/create
type CreateQuoteResponse struct {
	Quote *Quote `json:"quote"`
	Error string `json:"error,omitempty"`
}

// QuoteSummary is one entry of GET /quotes/user/{userId}
type QuoteSummary struct {
	ID          int64   `json:"id"`
	QuoteNumber string  `json:"quote_number"`
	Token       string  `json:"token"`
	Name        *string `json:"name"`
	UserEmail   *string `json:"user_email"`
	CreatedAt   string  `json:"created_at"`
	ItemCount   int     `json:"item_count"`
}

// QuoteListResponse is the backend response for GET /quotes/user/{userId}
type QuoteListResponse struct {
	Quotes []QuoteSummary `json:"quotes"`
}

// QuoteViewItem is a quote line as returned by the view and convert endpoints
type QuoteViewItem struct {
	ID         *int64   `json:"id"`
	PartNumber string   `json:"part_number"`
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Qty        int      `json:"qty"`
	MappedTo   *string  `json:"mapped_to,omitempty"`
}

// QuoteView is the backend response for GET /quotes/view/{token}
type QuoteView struct {
	Quote *Quote          `json:"quote"`
	Items []QuoteViewItem `json:"items"`
}

// ConvertQuoteRequest is the body for POST /quotes/convert-to-cart
// Example: {"token": "q_7f3a"}
type ConvertQuoteRequest struct {
	Token string `json:"token" validate:"required"`
}

// ConvertQuoteResponse is the backend response for POST /quotes/convert-to-cart
type ConvertQuoteResponse struct {
	Items []QuoteViewItem `json:"items"`
}
