package quickorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
)

// TabKind names one of the three independent input tabs
type TabKind string

const (
	TabSingle TabKind = "single"
	TabBulk   TabKind = "bulk"
	TabPaste  TabKind = "paste"
)

// TabKinds lists the tabs in display order
var TabKinds = []TabKind{TabSingle, TabBulk, TabPaste}

// ParseTabKind validates a tab name from a URL or flag
func ParseTabKind(s string) (TabKind, error) {
	switch TabKind(s) {
	case TabSingle, TabBulk, TabPaste:
		return TabKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Title is the capitalized tab name used in quote names and notices
func (k TabKind) Title() string {
	switch k {
	case TabSingle:
		return "Single"
	case TabBulk:
		return "Bulk"
	case TabPaste:
		return "Paste"
	}
	return string(k)
}

// TabState is the pipeline stage a tab is in
type TabState string

const (
	StateEmpty     TabState = "empty"
	StateParsed    TabState = "parsed"
	StateValidated TabState = "validated"
)

// Tab holds the in-progress data for one input mode.
// Requests are tagged with a sequence number and only the latest issued one may complete.
type Tab struct {
	Kind      TabKind
	State     TabState
	Items     []models.CanonicalItem
	Validated []models.ValidatedItem
	Preview   []string
	CSV       *CSVStats

	issued  uint64
	pending bool
}

// NewTab creates an empty tab
func NewTab(kind TabKind) *Tab {
	return &Tab{Kind: kind, State: StateEmpty}
}

// SetParsed stores freshly parsed items and drops any previous validation
func (t *Tab) SetParsed(items []models.CanonicalItem) {
	t.Items = items
	t.Validated = nil
	t.State = StateParsed
	// A re-parse invalidates every in-flight request
	t.issued++
	t.pending = false
	if len(items) == 0 {
		t.State = StateEmpty
	}
}

// BeginValidation issues a new sequence token and returns a copy of the items to submit
func (t *Tab) BeginValidation() (uint64, []models.CanonicalItem) {
	t.issued++
	t.pending = true
	items := make([]models.CanonicalItem, len(t.Items))
	copy(items, t.Items)
	return t.issued, items
}

// CompleteValidation applies results only when token is the latest issued
func (t *Tab) CompleteValidation(token uint64, results []models.ValidatedItem) error {
	if token != t.issued {
		return ErrStaleResponse
	}
	t.pending = false
	t.Validated = results
	t.State = StateValidated
	return nil
}

// AbortValidation clears the pending flag after a failed request, leaving previous results untouched
func (t *Tab) AbortValidation(token uint64) error {
	if token != t.issued {
		return ErrStaleResponse
	}
	t.pending = false
	return nil
}

// RemoveValidated dismisses one validated line
func (t *Tab) RemoveValidated(index int) error {
	if index < 0 || index >= len(t.Validated) {
		return fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	validated := make([]models.ValidatedItem, 0, len(t.Validated)-1)
	validated = append(validated, t.Validated[:index]...)
	validated = append(validated, t.Validated[index+1:]...)
	t.Validated = validated
	return nil
}

// Reset returns the tab to Empty and invalidates in-flight requests
func (t *Tab) Reset() {
	issued := t.issued + 1
	*t = Tab{Kind: t.Kind, State: StateEmpty, issued: issued}
}

// ValidatedLine is a validated item with its display hint
type ValidatedLine struct {
	models.ValidatedItem
	Hint string `json:"hint,omitempty"`
}

// TabView is the JSON snapshot of a tab
type TabView struct {
	Kind      TabKind                `json:"kind"`
	State     TabState               `json:"state"`
	Items     []models.CanonicalItem `json:"items"`
	Validated []ValidatedLine        `json:"validated"`
	Preview   []string               `json:"preview,omitempty"`
	CSV       *CSVStats              `json:"csv,omitempty"`
	Pending   bool                   `json:"pending"`
}

// View snapshots the tab
func (t *Tab) View() TabView {
	v := TabView{
		Kind:      t.Kind,
		State:     t.State,
		Items:     append([]models.CanonicalItem{}, t.Items...),
		Validated: make([]ValidatedLine, 0, len(t.Validated)),
		Preview:   append([]string(nil), t.Preview...),
		Pending:   t.pending,
	}
	if t.CSV != nil {
		stats := *t.CSV
		v.CSV = &stats
	}
	for _, it := range t.Validated {
		hint, _ := SubstituteHint(it)
		v.Validated = append(v.Validated, ValidatedLine{ValidatedItem: it, Hint: hint})
	}
	return v
}

// Workspace holds the three tabs of one browser session
type Workspace struct {
	mu      sync.Mutex
	tabs    map[TabKind]*Tab
	touched time.Time
}

// NewWorkspace creates a workspace with three empty tabs
func NewWorkspace() *Workspace {
	w := &Workspace{tabs: make(map[TabKind]*Tab, len(TabKinds))}
	for _, k := range TabKinds {
		w.tabs[k] = NewTab(k)
	}
	return w
}

// With runs fn on one tab under the workspace lock and returns the resulting view
func (w *Workspace) With(kind TabKind, fn func(t *Tab) error) (TabView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.tabs[kind]
	if !ok {
		return TabView{}, fmt.Errorf("%w: %q", ErrUnknownTab, kind)
	}
	var err error
	if fn != nil {
		err = fn(t)
	}
	return t.View(), err
}

// View snapshots one tab
func (w *Workspace) View(kind TabKind) (TabView, error) {
	return w.With(kind, nil)
}

// Snapshot returns every tab in display order
func (w *Workspace) Snapshot() []TabView {
	w.mu.Lock()
	defer w.mu.Unlock()

	views := make([]TabView, 0, len(TabKinds))
	for _, k := range TabKinds {
		views = append(views, w.tabs[k].View())
	}
	return views
}

// ResetAll resets every tab
func (w *Workspace) ResetAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, t := range w.tabs {
		t.Reset()
	}
}

// WorkspaceRegistry keeps one Workspace per session owner and forgets idle ones
type WorkspaceRegistry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	ttl        time.Duration
	now        func() time.Time
}

// NewWorkspaceRegistry creates a registry whose workspaces expire after ttl without use.
// A ttl <= 0 keeps workspaces forever.
func NewWorkspaceRegistry(ttl time.Duration) *WorkspaceRegistry {
	return &WorkspaceRegistry{
		workspaces: make(map[string]*Workspace),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns owner's workspace, creating it on first use
func (r *WorkspaceRegistry) Get(owner string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workspaces[owner]
	if !ok {
		w = NewWorkspace()
		r.workspaces[owner] = w
	}
	w.touched = r.now()
	return w
}

// Len returns the number of live workspaces
func (r *WorkspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep drops workspaces idle for longer than the ttl and returns how many were dropped
func (r *WorkspaceRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	dropped := 0
	for owner, w := range r.workspaces {
		if w.touched.Before(cutoff) {
			delete(r.workspaces, owner)
			dropped++
		}
	}
	return dropped
}

// Run sweeps on every interval tick until ctx is done
func (r *WorkspaceRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logging.S().Infof("🔄 Workspaces: dropped %d idle sessions", n)
			}
		}
	}
}
