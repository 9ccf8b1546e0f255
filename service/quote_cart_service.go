package service

import (
	"context"
	"fmt"
	"hash/fnv"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// QuoteConverter returns the lines of a quote by share token
type QuoteConverter interface {
	ConvertToCart(ctx context.Context, token string) ([]models.QuoteViewItem, error)
}

// QuoteCartService moves a saved quote into a session cart
type QuoteCartService struct {
	quotes QuoteConverter
	cart   quickorder.CartInserter
}

// NewQuoteCartService creates a new QuoteCartService
func NewQuoteCartService(quotes QuoteConverter, cart quickorder.CartInserter) *QuoteCartService {
	return &QuoteCartService{quotes: quotes, cart: cart}
}

// Convert adds every line of the quote behind token to owner's cart in one write
func (s *QuoteCartService) Convert(ctx context.Context, owner, token string) ([]models.CartLine, error) {
	logging.S().Infof("🔄 Convert: quote token=%s owner=%s", token, owner)

	items, err := s.quotes.ConvertToCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to convert quote: %w", err)
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, cartLineFromQuote(it))
	}
	if len(lines) == 0 {
		return lines, nil
	}

	if err := s.cart.Add(ctx, owner, lines...); err != nil {
		return nil, fmt.Errorf("failed to add quote to cart: %w", err)
	}
	logging.S().Infof("✅ Convert: added %d quote lines to cart", len(lines))
	return lines, nil
}

func cartLineFromQuote(it models.QuoteViewItem) models.CartLine {
	line := models.CartLine{
		PartNumber: it.PartNumber,
		Name:       it.PartNumber,
		Image:      quickorder.PlaceholderImage,
		Quantity:   it.Qty,
	}
	if it.ID != nil {
		line.ID = *it.ID
	} else {
		line.ID = SyntheticProductID(it.PartNumber)
	}
	if it.Name != nil && *it.Name != "" {
		line.Name = *it.Name
	}
	if it.Price != nil {
		line.Price = *it.Price
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	return line
}

// SyntheticProductID derives a stable negative id for a quote line the catalog no longer knows,
// so converting the same quote twice merges instead of duplicating
func SyntheticProductID(partNumber string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(quickorder.NormalizePartNumber(partNumber)))
	id := int64(h.Sum64() & 0x7fffffffffffffff)
	if id == 0 {
		id = 1
	}
	return -id
}
