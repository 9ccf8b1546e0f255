package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"autoparts-storefront/cart"
	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// QuoteBackend is the quote API used by the quotes pages
type QuoteBackend interface {
	ListQuotes(ctx context.Context, userID string) ([]models.QuoteSummary, error)
	ViewQuote(ctx context.Context, token string) (*models.QuoteView, error)
	DeleteQuote(ctx context.Context, id int64) error
}

// QuoteRenderer exports a quote as HTML or PDF
type QuoteRenderer interface {
	RenderQuoteHTML(ctx context.Context, view *models.QuoteView) (string, error)
	GeneratePDF(ctx context.Context, token string) ([]byte, error)
}

// QuoteConverter moves a quote into a session cart
type QuoteConverter interface {
	Convert(ctx context.Context, owner, token string) ([]models.CartLine, error)
}

// QuoteController handles HTTP requests for saved quotes
type QuoteController struct {
	quotes    QuoteBackend
	renderer  QuoteRenderer
	converter QuoteConverter
	cart      *cart.Store
	identity  IdentityResolver
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(quotes QuoteBackend, renderer QuoteRenderer, converter QuoteConverter, cartStore *cart.Store, identity IdentityResolver) *QuoteController {
	return &QuoteController{
		quotes:    quotes,
		renderer:  renderer,
		converter: converter,
		cart:      cartStore,
		identity:  identity,
	}
}

// backendStatus keeps 4xx statuses from the backend and maps everything else to 502
func backendStatus(err error) int {
	if be, ok := quickorder.AsBackendError(err); ok && be.Status >= 400 && be.Status < 500 {
		return be.Status
	}
	return http.StatusBadGateway
}

func backendFailure(w http.ResponseWriter, op string, err error, fallback string) {
	logging.S().Errorf("❌ %s: %v", op, err)
	msg := fallback
	if be, ok := quickorder.AsBackendError(err); ok {
		msg = be.UserMessage(fallback)
	}
	writeJSON(w, backendStatus(err), map[string]string{"error": msg})
}

// List handles GET /quotes
// Example response:
//
//	{"quotes": [{"id": 7, "quote_number": "Q-0007", "token": "q_7f3a", "created_at": "...", "item_count": 3}]}
func (c *QuoteController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "ListQuotes")
		return
	}
	user, ok := requireUser(w, r, c.identity, "ListQuotes")
	if !ok {
		return
	}

	quotes, err := c.quotes.ListQuotes(r.Context(), user.ID)
	if err != nil {
		backendFailure(w, "ListQuotes", err, "Failed to load quotes")
		return
	}
	logging.S().Infof("✅ ListQuotes: %d quotes for user=%s", len(quotes), user.ID)
	writeJSON(w, http.StatusOK, models.QuoteListResponse{Quotes: quotes})
}

// View handles GET /quotes/view/{token}, /quotes/view/{token}/render and /quotes/view/{token}/pdf.
// The share token is the credential, so these work without a signed-in user.
func (c *QuoteController) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "ViewQuote")
		return
	}
	parts := pathSegments(r, "/quotes/view/")
	if len(parts) == 0 || len(parts) > 2 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	token := parts[0]

	if len(parts) == 2 && parts[1] == "pdf" {
		c.pdf(w, r, token)
		return
	}
	if len(parts) == 2 && parts[1] != "render" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	view, err := c.quotes.ViewQuote(r.Context(), token)
	if err != nil {
		backendFailure(w, "ViewQuote", err, "Failed to load quote")
		return
	}

	if len(parts) == 1 {
		writeJSON(w, http.StatusOK, view)
		return
	}

	html, err := c.renderer.RenderQuoteHTML(r.Context(), view)
	if err != nil {
		logging.S().Errorf("❌ RenderQuote: Error rendering HTML: %v", err)
		http.Error(w, "Failed to render quote", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		logging.S().Errorf("❌ RenderQuote: Error writing HTML response: %v", err)
	}
}

func (c *QuoteController) pdf(w http.ResponseWriter, r *http.Request, token string) {
	// Fail fast on unknown tokens instead of printing an error page
	if _, err := c.quotes.ViewQuote(r.Context(), token); err != nil {
		backendFailure(w, "QuotePDF", err, "Failed to load quote")
		return
	}

	pdf, err := c.renderer.GeneratePDF(r.Context(), token)
	if err != nil {
		logging.S().Errorf("❌ QuotePDF: %v", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"quote-%s.pdf\"", token))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.S().Errorf("❌ QuotePDF: Error writing PDF response: %v", err)
	}
}

// Delete handles DELETE /quotes/{id}
func (c *QuoteController) Delete(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/quotes/")
	if len(parts) != 1 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, "DeleteQuote")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "DeleteQuote"); !ok {
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		logging.S().Warnf("❌ DeleteQuote: Invalid quote ID: %s", parts[0])
		http.Error(w, "Invalid quote ID", http.StatusBadRequest)
		return
	}

	if err := c.quotes.DeleteQuote(r.Context(), id); err != nil {
		backendFailure(w, "DeleteQuote", err, "Failed to delete quote")
		return
	}
	logging.S().Infof("✅ DeleteQuote: deleted quote id=%d", id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// ConvertToCart handles POST /quotes/convert-to-cart
// Example request:
//
//	{"token": "q_7f3a"}
//
// Example response: the cart after the quote lines were merged in.
func (c *QuoteController) ConvertToCart(w http.ResponseWriter, r *http.Request) {
	logging.S().Infof("📥 ConvertToCart: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "ConvertToCart")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "ConvertToCart"); !ok {
		return
	}

	var req models.ConvertQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logging.S().Warnf("❌ ConvertToCart: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lines, err := c.converter.Convert(r.Context(), Owner(r), req.Token)
	if err != nil {
		backendFailure(w, "ConvertToCart", err, "Failed to add quote to cart")
		return
	}

	resp, err := c.cart.Summary(r.Context(), Owner(r))
	if err != nil {
		logging.S().Errorf("❌ ConvertToCart: Error loading cart: %v", err)
		http.Error(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}
	if len(lines) == 0 {
		resp.Notices = []models.Notice{{Level: models.NoticeInfo, Message: "The quote has no items"}}
	} else {
		resp.Notices = []models.Notice{{Level: models.NoticeSuccess, Message: fmt.Sprintf("Added %d quote items to cart", len(lines))}}
	}
	writeJSON(w, http.StatusOK, resp)
}
