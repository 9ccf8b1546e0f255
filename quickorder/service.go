package quickorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
)

// PreviewSize is how many raw lines of an uploaded file are echoed back
const PreviewSize = 5

// Result is the response of every quick order action
type Result struct {
	Tab      TabView         `json:"tab"`
	Notices  []models.Notice `json:"notices"`
	Quote    *models.Quote   `json:"quote,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Skipped  int             `json:"skipped,omitempty"`
}

// Service runs the quick order pipeline for browser sessions
type Service struct {
	orchestrator *Orchestrator
	materializer *Materializer
	workspaces   *WorkspaceRegistry
	recorder     Recorder
	now          func() time.Time
}

// NewService creates a new quick order Service. recorder may be nil.
func NewService(orchestrator *Orchestrator, materializer *Materializer, workspaces *WorkspaceRegistry, recorder Recorder) *Service {
	if recorder == nil {
		recorder = Recorders()
	}
	return &Service{
		orchestrator: orchestrator,
		materializer: materializer,
		workspaces:   workspaces,
		recorder:     recorder,
		now:          time.Now,
	}
}

func (s *Service) record(ctx context.Context, e Event) {
	e.At = s.now().UTC()
	s.recorder.Record(ctx, e)
}

// Snapshot returns every tab of owner's workspace
func (s *Service) Snapshot(owner string) []TabView {
	return s.workspaces.Get(owner).Snapshot()
}

// View returns one tab of owner's workspace
func (s *Service) View(owner string, kind TabKind) (Result, error) {
	view, err := s.workspaces.Get(owner).View(kind)
	return Result{Tab: view, Notices: []models.Notice{}}, err
}

// LookupSingle validates one part number on the single tab
func (s *Service) LookupSingle(ctx context.Context, owner, part string, qty int) (Result, error) {
	ws := s.workspaces.Get(owner)

	item, ok := NormalizeSingle(part, qty)
	if !ok {
		view, _ := ws.With(TabSingle, func(t *Tab) error {
			t.Reset()
			return nil
		})
		return Result{Tab: view, Notices: []models.Notice{info("Enter a part number to look up")}}, ErrEmptyBatch
	}

	var token uint64
	_, _ = ws.With(TabSingle, func(t *Tab) error {
		t.SetParsed([]models.CanonicalItem{item})
		token, _ = t.BeginValidation()
		return nil
	})

	line, lookupErr := s.orchestrator.LookupSingle(ctx, item)

	view, err := ws.With(TabSingle, func(t *Tab) error {
		return t.CompleteValidation(token, []models.ValidatedItem{line})
	})
	if errors.Is(err, ErrStaleResponse) {
		return s.stale(ctx, owner, TabSingle, view)
	}

	found, missing, obsolete := Tally([]models.ValidatedItem{line})
	s.record(ctx, Event{Type: EventValidated, Owner: owner, Tab: TabSingle, Lines: 1, Found: found, Missing: missing, Obsolete: obsolete})

	notices := hintNotices([]models.ValidatedItem{line})
	if lookupErr != nil {
		notices = append(notices, failure(msgLookupFailed))
	}
	return Result{Tab: view, Notices: nonNil(notices)}, lookupErr
}

// ParseCSV parses an uploaded CSV file into the bulk tab
func (s *Service) ParseCSV(ctx context.Context, owner string, data []byte) (Result, error) {
	ws := s.workspaces.Get(owner)
	preview := PreviewLines(string(data), PreviewSize)

	items, stats, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		logging.S().Errorf("❌ ParseCSV: owner=%s: %v", owner, err)
		view, _ := ws.With(TabBulk, func(t *Tab) error {
			t.Reset()
			t.Preview = preview
			return nil
		})
		return Result{Tab: view, Notices: []models.Notice{failure("Could not read CSV file")}}, fmt.Errorf("failed to parse csv: %w", err)
	}

	view, _ := ws.With(TabBulk, func(t *Tab) error {
		t.SetParsed(items)
		t.Preview = preview
		t.CSV = &stats
		return nil
	})
	logging.S().Infof("📥 ParseCSV: owner=%s rows=%d included=%d dropped=%d", owner, stats.Rows, stats.Included, stats.Dropped)

	var notices []models.Notice
	if len(items) == 0 {
		notices = append(notices, info("No part numbers found in the file"))
	} else {
		notices = append(notices, info(fmt.Sprintf("Parsed %d items", len(items))))
	}
	if stats.Dropped > 0 {
		notices = append(notices, info(fmt.Sprintf("%d rows without a part number were skipped", stats.Dropped)))
	}
	if stats.Truncated {
		notices = append(notices, warning(fmt.Sprintf("Only the first %d rows were read", MaxBatchSize)))
	}
	return Result{Tab: view, Notices: notices}, nil
}

// ParsePaste parses pasted text into the paste tab
func (s *Service) ParsePaste(ctx context.Context, owner, text string) (Result, error) {
	items := ParsePaste(text)
	view, _ := s.workspaces.Get(owner).With(TabPaste, func(t *Tab) error {
		t.SetParsed(items)
		return nil
	})
	logging.S().Infof("📥 ParsePaste: owner=%s items=%d", owner, len(items))

	if len(items) == 0 {
		return Result{Tab: view, Notices: []models.Notice{info("No part numbers found")}}, nil
	}
	return Result{Tab: view, Notices: []models.Notice{info(fmt.Sprintf("Parsed %d items", len(items)))}}, nil
}

// Validate submits the parsed items of a bulk or paste tab
func (s *Service) Validate(ctx context.Context, owner string, kind TabKind) (Result, error) {
	if kind == TabSingle {
		return Result{}, fmt.Errorf("%w: the single tab is validated by lookup", ErrUnknownTab)
	}
	ws := s.workspaces.Get(owner)

	var token uint64
	var items []models.CanonicalItem
	view, err := ws.With(kind, func(t *Tab) error {
		if len(t.Items) == 0 {
			return ErrEmptyBatch
		}
		token, items = t.BeginValidation()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) {
			return Result{Tab: view, Notices: []models.Notice{info("Nothing to validate")}}, err
		}
		return Result{Tab: view}, err
	}

	results, err := s.orchestrator.Validate(ctx, items)
	if err != nil {
		view, _ := ws.With(kind, func(t *Tab) error {
			return t.AbortValidation(token)
		})
		return Result{Tab: view, Notices: []models.Notice{backendNotice(err, "Validation failed", "Server error")}}, err
	}

	view, err = ws.With(kind, func(t *Tab) error {
		return t.CompleteValidation(token, results)
	})
	if errors.Is(err, ErrStaleResponse) {
		return s.stale(ctx, owner, kind, view)
	}

	found, missing, obsolete := Tally(results)
	s.record(ctx, Event{Type: EventValidated, Owner: owner, Tab: kind, Lines: len(results), Found: found, Missing: missing, Obsolete: obsolete})

	notices := []models.Notice{success(fmt.Sprintf("%s validation complete", kind.Title()))}
	notices = append(notices, hintNotices(results)...)
	return Result{Tab: view, Notices: notices}, nil
}

func (s *Service) stale(ctx context.Context, owner string, kind TabKind, view TabView) (Result, error) {
	logging.S().Warnf("⚠️ %s tab: dropped a stale validation response for owner=%s", kind.Title(), owner)
	s.record(ctx, Event{Type: EventStaleResponse, Owner: owner, Tab: kind})
	return Result{Tab: view, Notices: []models.Notice{info("A newer request replaced these results")}}, ErrStaleResponse
}

// AddToCart materializes a tab's matched lines into owner's cart
func (s *Service) AddToCart(ctx context.Context, owner string, kind TabKind) (Result, error) {
	ws := s.workspaces.Get(owner)

	var items []models.ValidatedItem
	view, err := ws.With(kind, func(t *Tab) error {
		items = append(items, t.Validated...)
		return nil
	})
	if err != nil {
		return Result{Tab: view}, err
	}

	if kind == TabSingle && len(items) == 0 {
		return Result{Tab: view, Notices: []models.Notice{info("Look up a part first")}}, ErrNoSingleResult
	}

	outcome, err := s.materializer.AddToCart(ctx, owner, items)
	if err != nil && !errors.Is(err, ErrNothingToAdd) {
		return Result{Tab: view, Notices: []models.Notice{failure("Could not update cart")}}, err
	}

	if kind == TabSingle && errors.Is(err, ErrNothingToAdd) {
		// The miss stays on screen so the shopper can read its message
		return Result{Tab: view, Notices: []models.Notice{info("No valid items to add")}}, err
	}

	view, _ = ws.With(kind, func(t *Tab) error {
		t.Reset()
		return nil
	})

	if outcome.Added == 0 {
		return Result{Tab: view, Notices: []models.Notice{info("No valid items to add")}}, err
	}

	s.record(ctx, Event{Type: EventAddedToCart, Owner: owner, Tab: kind, Lines: len(items), Added: outcome.Added, Skipped: outcome.Skipped})

	if kind == TabSingle {
		line := outcome.Lines[0]
		return Result{Tab: view, Notices: []models.Notice{success(CartAddMessage(line.Name, line.Quantity))}}, nil
	}
	notices := []models.Notice{success("Added valid items to cart")}
	if outcome.Skipped > 0 {
		notices = append(notices, info(fmt.Sprintf("%d items were not found and were skipped", outcome.Skipped)))
	}
	return Result{Tab: view, Notices: notices, Skipped: outcome.Skipped}, nil
}

// SaveQuote persists a tab's matched lines as a quote for user
func (s *Service) SaveQuote(ctx context.Context, owner string, user models.User, kind TabKind) (Result, error) {
	ws := s.workspaces.Get(owner)

	var items []models.ValidatedItem
	view, err := ws.With(kind, func(t *Tab) error {
		items = append(items, t.Validated...)
		return nil
	})
	if err != nil {
		return Result{Tab: view}, err
	}

	outcome, err := s.materializer.SaveQuote(ctx, user, kind, items)
	switch {
	case errors.Is(err, ErrNoValidated):
		return Result{Tab: view, Notices: []models.Notice{info("No validated items to save")}}, err
	case errors.Is(err, ErrNothingToSave):
		return Result{Tab: view, Notices: []models.Notice{info("No valid items to save as a quote")}}, err
	case err != nil:
		return Result{Tab: view, Notices: []models.Notice{backendNotice(err, "Failed to save quote", "Server error while saving quote")}}, err
	}

	s.record(ctx, Event{
		Type:        EventQuoteSaved,
		Owner:       owner,
		UserID:      user.ID,
		Tab:         kind,
		Lines:       len(items),
		Added:       outcome.Saved,
		Skipped:     outcome.Removed,
		QuoteNumber: outcome.Quote.QuoteNumber,
	})

	var notices []models.Notice
	if outcome.Removed > 0 {
		notices = append(notices, info(fmt.Sprintf("%d invalid items were removed before saving.", outcome.Removed)))
	}
	notices = append(notices, success(fmt.Sprintf("Quote %s saved", outcome.Quote.QuoteNumber)))

	return Result{Tab: view, Notices: notices, Quote: outcome.Quote, Redirect: outcome.Redirect}, nil
}

// RemoveValidated dismisses one validated line of a tab
func (s *Service) RemoveValidated(owner string, kind TabKind, index int) (Result, error) {
	view, err := s.workspaces.Get(owner).With(kind, func(t *Tab) error {
		return t.RemoveValidated(index)
	})
	return Result{Tab: view, Notices: []models.Notice{}}, err
}

// Reset empties one tab
func (s *Service) Reset(owner string, kind TabKind) (Result, error) {
	view, err := s.workspaces.Get(owner).With(kind, func(t *Tab) error {
		t.Reset()
		return nil
	})
	return Result{Tab: view, Notices: []models.Notice{}}, err
}

// ResetAll empties every tab of owner's workspace
func (s *Service) ResetAll(owner string) []TabView {
	ws := s.workspaces.Get(owner)
	ws.ResetAll()
	return ws.Snapshot()
}

func nonNil(n []models.Notice) []models.Notice {
	if n == nil {
		return []models.Notice{}
	}
	return n
}
