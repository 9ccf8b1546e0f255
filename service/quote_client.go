package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// QuoteClient talks to the backend's quote endpoints
type QuoteClient struct {
	backend *backendClient
}

// NewQuoteClient creates a new QuoteClient
func NewQuoteClient(baseURL string, timeout time.Duration, observer LatencyObserver) *QuoteClient {
	return &QuoteClient{backend: newBackendClient(baseURL, timeout, observer)}
}

// Ensure QuoteClient implements quickorder.QuoteCreator
var _ quickorder.QuoteCreator = (*QuoteClient)(nil)

// CreateQuote persists a new quote
func (c *QuoteClient) CreateQuote(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error) {
	var resp models.CreateQuoteResponse
	if err := c.backend.doJSON(ctx, http.MethodPost, "/quotes/create", "quotes/create", req, &resp); err != nil {
		return nil, err
	}
	return resp.Quote, nil
}

// ListQuotes returns the quotes owned by userID
func (c *QuoteClient) ListQuotes(ctx context.Context, userID string) ([]models.QuoteSummary, error) {
	var resp models.QuoteListResponse
	path := "/quotes/user/" + url.PathEscape(userID)
	if err := c.backend.doJSON(ctx, http.MethodGet, path, "quotes/user", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Quotes == nil {
		resp.Quotes = []models.QuoteSummary{}
	}
	return resp.Quotes, nil
}

// ViewQuote returns a quote and its lines by share token
func (c *QuoteClient) ViewQuote(ctx context.Context, token string) (*models.QuoteView, error) {
	var resp models.QuoteView
	path := "/quotes/view/" + url.PathEscape(token)
	if err := c.backend.doJSON(ctx, http.MethodGet, path, "quotes/view", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Quote == nil {
		return nil, &quickorder.BackendError{Endpoint: "quotes/view", Status: http.StatusNotFound, Message: "Quote not found"}
	}
	return &resp, nil
}

// DeleteQuote removes a quote
func (c *QuoteClient) DeleteQuote(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/quotes/%d", id)
	return c.backend.doJSON(ctx, http.MethodDelete, path, "quotes/delete", nil, nil)
}

// ConvertToCart returns the lines of the quote behind token, ready to be added to a cart
func (c *QuoteClient) ConvertToCart(ctx context.Context, token string) ([]models.QuoteViewItem, error) {
	var resp models.ConvertQuoteResponse
	req := models.ConvertQuoteRequest{Token: token}
	if err := c.backend.doJSON(ctx, http.MethodPost, "/quotes/convert-to-cart", "quotes/convert-to-cart", req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
