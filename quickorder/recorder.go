package quickorder

import (
	"context"
	"time"
)

// EventType names a quick order activity
type EventType string

const (
	EventValidated     EventType = "quick_order.validated"
	EventAddedToCart   EventType = "quick_order.added_to_cart"
	EventQuoteSaved    EventType = "quick_order.quote_saved"
	EventStaleResponse EventType = "quick_order.stale_response"
)

// Event describes one completed quick order step
type Event struct {
	Type        EventType
	Owner       string
	UserID      string
	Tab         TabKind
	Lines       int
	Found       int
	Missing     int
	Obsolete    int
	Added       int
	Skipped     int
	QuoteNumber string
	At          time.Time
}

// Recorder observes quick order events. Implementations must not block the caller for long
// and never fail the pipeline.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(ctx context.Context, e Event)

func (f RecorderFunc) Record(ctx context.Context, e Event) {
	f(ctx, e)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, e Event) {
	for _, r := range m {
		r.Record(ctx, e)
	}
}

// Recorders fans events out to every non-nil recorder
func Recorders(rs ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
