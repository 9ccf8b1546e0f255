package quickorder

import (
	"context"
	"sync"

	"autoparts-storefront/models"
)

type fakeLookup struct {
	mu         sync.Mutex
	catalog    map[string]models.ProductRef
	mappings   map[string]string
	bulkCalls  int
	singleErr  error
	bulkErr    error
	truncateTo int
	// block, when set, is waited on before a bulk call returns
	block chan struct{}
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		catalog:  make(map[string]models.ProductRef),
		mappings: make(map[string]string),
	}
}

func (f *fakeLookup) add(p models.ProductRef) {
	f.catalog[p.PartNumber] = p
}

func (f *fakeLookup) resolve(part string) models.ValidatedItem {
	if target, ok := f.mappings[part]; ok {
		if p, ok := f.catalog[target]; ok {
			mapped := target
			return models.ValidatedItem{PartNumber: part, Product: &p, MappedTo: &mapped}
		}
	}
	if p, ok := f.catalog[part]; ok {
		return models.ValidatedItem{PartNumber: part, Product: &p}
	}
	return models.ValidatedItem{PartNumber: part}
}

func (f *fakeLookup) LookupSingle(ctx context.Context, part string) (*models.ValidatedItem, error) {
	if f.singleErr != nil {
		return nil, f.singleErr
	}
	item := f.resolve(part)
	return &item, nil
}

func (f *fakeLookup) BulkValidate(ctx context.Context, items []models.CanonicalItem) ([]models.ValidatedItem, error) {
	f.mu.Lock()
	f.bulkCalls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}

	out := make([]models.ValidatedItem, 0, len(items))
	for _, it := range items {
		line := f.resolve(it.PartNumber)
		line.Qty = it.Qty
		out = append(out, line)
	}
	if f.truncateTo > 0 && f.truncateTo < len(out) {
		out = out[:f.truncateTo]
	}
	return out, nil
}

func (f *fakeLookup) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bulkCalls
}

type fakeCart struct {
	mu    sync.Mutex
	lines map[string][]models.CartLine
	calls int
	err   error
}

func newFakeCart() *fakeCart {
	return &fakeCart{lines: make(map[string][]models.CartLine)}
}

func (c *fakeCart) Add(ctx context.Context, owner string, lines ...models.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	c.lines[owner] = append(c.lines[owner], lines...)
	return nil
}

type fakeQuotes struct {
	requests []models.CreateQuoteRequest
	err      error
}

func (q *fakeQuotes) CreateQuote(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error) {
	q.requests = append(q.requests, req)
	if q.err != nil {
		return nil, q.err
	}
	return &models.Quote{ID: 7, QuoteNumber: "Q-0007", Token: "tok-7"}, nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureRecorder) Record(ctx context.Context, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureRecorder) ofType(t EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func price(v float64) *float64 { return &v }
func str(s string) *string     { return &s }

func (f *fakeLookup) setBlock(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = ch
}
