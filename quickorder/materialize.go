package quickorder

import (
	"context"
	"fmt"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
)

// PlaceholderImage is used for cart lines whose product has no image
const PlaceholderImage = "/placeholder.png"

// QuotesRedirect is where the shopper lands after saving a quote
const QuotesRedirect = "/quotes"

// CartInserter receives materialized cart lines. All lines of one call are applied together.
type CartInserter interface {
	Add(ctx context.Context, owner string, lines ...models.CartLine) error
}

// QuoteCreator persists a quote through the external quote service
type QuoteCreator interface {
	CreateQuote(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error)
}

// CartOutcome summarizes an add-to-cart run
type CartOutcome struct {
	Added   int
	Skipped int
	Lines   []models.CartLine
}

// QuoteOutcome summarizes a saved quote
type QuoteOutcome struct {
	Quote    *models.Quote
	Saved    int
	Removed  int
	Redirect string
}

// Materializer turns validated lines into cart insertions or a quote
type Materializer struct {
	cart   CartInserter
	quotes QuoteCreator
	now    func() time.Time
}

// NewMaterializer creates a new Materializer
func NewMaterializer(cart CartInserter, quotes QuoteCreator) *Materializer {
	return &Materializer{
		cart:   cart,
		quotes: quotes,
		now:    time.Now,
	}
}

// CartLineFor builds the cart line for a matched product.
// Missing name, price and image fall back to part number, 0 and the placeholder.
func CartLineFor(item models.ValidatedItem) models.CartLine {
	p := item.Product
	return models.CartLine{
		ID:         p.ID,
		PartNumber: p.PartNumber,
		Name:       p.DisplayName(),
		Price:      p.PriceOrZero(),
		Image:      p.ImageOr(PlaceholderImage),
		Quantity:   item.Qty,
	}
}

// AddToCart inserts every matched line into owner's cart and skips the rest.
// With no matched line it returns ErrNothingToAdd and touches nothing.
func (m *Materializer) AddToCart(ctx context.Context, owner string, items []models.ValidatedItem) (CartOutcome, error) {
	var outcome CartOutcome
	for _, it := range items {
		if !it.Found() {
			outcome.Skipped++
			continue
		}
		outcome.Lines = append(outcome.Lines, CartLineFor(it))
	}

	if len(outcome.Lines) == 0 {
		return outcome, ErrNothingToAdd
	}

	if err := m.cart.Add(ctx, owner, outcome.Lines...); err != nil {
		return CartOutcome{Skipped: len(items)}, fmt.Errorf("failed to add items to cart: %w", err)
	}
	outcome.Added = len(outcome.Lines)

	logging.S().Infof("🛒 AddToCart: owner=%s added=%d skipped=%d", owner, outcome.Added, outcome.Skipped)
	return outcome, nil
}

// QuoteName returns the generated name for a quote saved from the given tab
func QuoteName(kind TabKind, at time.Time) string {
	return fmt.Sprintf("Quick %s %s", kind.Title(), at.UTC().Format(time.RFC3339))
}

// QuoteItemFor builds the quote line for a matched product
func QuoteItemFor(item models.ValidatedItem) models.QuoteItem {
	p := item.Product
	qi := models.QuoteItem{
		PartNumber: item.PartNumber,
		Price:      p.Price,
		Qty:        item.Qty,
		MappedTo:   nonEmpty(item.MappedTo),
	}
	if p.ID != 0 {
		id := p.ID
		qi.ProductID = &id
	}
	if p.Name != "" {
		name := p.Name
		qi.Name = &name
	}
	return qi
}

// SaveQuote persists the matched lines as a quote owned by user.
// Unmatched lines are dropped and counted in Removed; nothing is sent when no line matched.
func (m *Materializer) SaveQuote(ctx context.Context, user models.User, kind TabKind, items []models.ValidatedItem) (*QuoteOutcome, error) {
	if len(items) == 0 {
		return nil, ErrNoValidated
	}

	var quoteItems []models.QuoteItem
	for _, it := range items {
		if it.Found() {
			quoteItems = append(quoteItems, QuoteItemFor(it))
		}
	}
	if len(quoteItems) == 0 {
		return nil, ErrNothingToSave
	}

	req := models.CreateQuoteRequest{
		UserID:    user.ID,
		UserEmail: user.EmailPtr(),
		Name:      QuoteName(kind, m.now()),
		Items:     quoteItems,
	}

	logging.S().Infof("📦 SaveQuote: user=%s tab=%s items=%d", user.ID, kind, len(quoteItems))
	quote, err := m.quotes.CreateQuote(ctx, req)
	if err != nil {
		logging.S().Errorf("❌ SaveQuote: failed to create quote: %v", err)
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}
	if quote == nil {
		return nil, &BackendError{Endpoint: "quotes/create", Message: "quote service returned no quote"}
	}

	logging.S().Infof("✅ SaveQuote: quote %s saved", quote.QuoteNumber)
	return &QuoteOutcome{
		Quote:    quote,
		Saved:    len(quoteItems),
		Removed:  len(items) - len(quoteItems),
		Redirect: QuotesRedirect,
	}, nil
}
