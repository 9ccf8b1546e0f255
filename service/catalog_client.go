package service

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// CatalogClient talks to the backend's fast-order lookup endpoints
type CatalogClient struct {
	backend *backendClient
}

// NewCatalogClient creates a new CatalogClient
func NewCatalogClient(baseURL string, timeout time.Duration, observer LatencyObserver) *CatalogClient {
	return &CatalogClient{backend: newBackendClient(baseURL, timeout, observer)}
}

// Ensure CatalogClient implements quickorder.Lookup
var _ quickorder.Lookup = (*CatalogClient)(nil)

// LookupSingle resolves one part number
func (c *CatalogClient) LookupSingle(ctx context.Context, part string) (*models.ValidatedItem, error) {
	var resp models.SingleLookupResponse
	path := "/fast-order/single?part=" + url.QueryEscape(part)
	if err := c.backend.doJSON(ctx, http.MethodGet, path, "fast-order/single", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// BulkValidate resolves a batch; the response is one-to-one with items
func (c *CatalogClient) BulkValidate(ctx context.Context, items []models.CanonicalItem) ([]models.ValidatedItem, error) {
	var resp models.BulkValidateResponse
	req := models.BulkValidateRequest{Items: items}
	if err := c.backend.doJSON(ctx, http.MethodPost, "/fast-order/bulk-validate", "fast-order/bulk-validate", req, &resp); err != nil {
		return nil, err
	}
	return resp.Processed, nil
}
