package activity

import (
	"context"
	"sync"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/quickorder"

	"github.com/google/uuid"
)

// Publisher hands quick order events to a Writer on a background goroutine.
// Events are dropped, with a log line, when the buffer is full or a write fails.
type Publisher struct {
	writer  Writer
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}
}

// NewPublisher starts a publisher with room for buffer pending events
func NewPublisher(w Writer, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		writer:  w,
		timeout: 5 * time.Second,
		events:  make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for e := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.writer.Append(ctx, e); err != nil {
			logging.S().Errorf("❌ Activity: failed to write %s event %s: %v", e.Type, e.ID, err)
		}
		cancel()
	}
}

// Record implements quickorder.Recorder. Stale response events are not published.
func (p *Publisher) Record(ctx context.Context, e quickorder.Event) {
	if e.Type == quickorder.EventStaleResponse {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.events <- FromQuickOrder(e):
	default:
		logging.S().Warnf("⚠️ Activity: buffer full, dropping %s event for owner=%s", e.Type, e.Owner)
	}
}

// Close stops accepting events, drains the buffer and closes the writer
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

// FromQuickOrder converts a pipeline event into its published form
func FromQuickOrder(e quickorder.Event) Event {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        string(e.Type),
		Owner:       e.Owner,
		UserID:      e.UserID,
		Tab:         string(e.Tab),
		Lines:       e.Lines,
		Found:       e.Found,
		Missing:     e.Missing,
		Obsolete:    e.Obsolete,
		Added:       e.Added,
		Skipped:     e.Skipped,
		QuoteNumber: e.QuoteNumber,
		At:          at,
	}
}

var _ quickorder.Recorder = (*Publisher)(nil)
