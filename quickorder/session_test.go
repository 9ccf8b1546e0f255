package quickorder

import (
	"context"
	"testing"
	"time"

	"autoparts-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParseTabKind(t *testing.T) {
	for _, k := range TabKinds {
		got, err := ParseTabKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseTabKind("csv")
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestTabTransitions(t *testing.T) {
	tab := NewTab(TabBulk)
	assert.Equal(t, StateEmpty, tab.State)

	tab.SetParsed([]models.CanonicalItem{{PartNumber: "A", Qty: 1}, {PartNumber: "B", Qty: 2}})
	assert.Equal(t, StateParsed, tab.State)

	token, items := tab.BeginValidation()
	assert.Len(t, items, 2)
	assert.True(t, tab.View().Pending)

	require.NoError(t, tab.CompleteValidation(token, []models.ValidatedItem{{PartNumber: "A", Qty: 1}, {PartNumber: "B", Qty: 2}}))
	assert.Equal(t, StateValidated, tab.State)
	assert.False(t, tab.View().Pending)

	require.NoError(t, tab.RemoveValidated(0))
	require.Len(t, tab.Validated, 1)
	assert.Equal(t, "B", tab.Validated[0].PartNumber)
	assert.ErrorIs(t, tab.RemoveValidated(5), ErrLineIndex)

	tab.Reset()
	assert.Equal(t, StateEmpty, tab.State)
	assert.Empty(t, tab.Items)
	assert.Empty(t, tab.Validated)
	assert.Equal(t, TabBulk, tab.Kind)
}

func TestTabStaleResponseIsDropped(t *testing.T) {
	tab := NewTab(TabPaste)
	tab.SetParsed([]models.CanonicalItem{{PartNumber: "A", Qty: 1}})

	first, _ := tab.BeginValidation()
	second, _ := tab.BeginValidation()

	newer := []models.ValidatedItem{{PartNumber: "A", Qty: 1, Product: &models.ProductRef{ID: 2}}}
	require.NoError(t, tab.CompleteValidation(second, newer))

	older := []models.ValidatedItem{{PartNumber: "A", Qty: 1}}
	assert.ErrorIs(t, tab.CompleteValidation(first, older), ErrStaleResponse)
	assert.Equal(t, int64(2), tab.Validated[0].Product.ID)
}

func TestTabResetInvalidatesInFlight(t *testing.T) {
	tab := NewTab(TabBulk)
	tab.SetParsed([]models.CanonicalItem{{PartNumber: "A", Qty: 1}})
	token, _ := tab.BeginValidation()
	tab.Reset()

	assert.ErrorIs(t, tab.CompleteValidation(token, []models.ValidatedItem{{PartNumber: "A", Qty: 1}}), ErrStaleResponse)
	assert.Equal(t, StateEmpty, tab.State)
}

func TestTabViewHints(t *testing.T) {
	tab := NewTab(TabBulk)
	tab.SetParsed([]models.CanonicalItem{{PartNumber: "OLD1", Qty: 1}})
	token, _ := tab.BeginValidation()
	require.NoError(t, tab.CompleteValidation(token, []models.ValidatedItem{{
		PartNumber: "OLD1",
		Qty:        1,
		Product:    &models.ProductRef{ID: 1, IsObsolete: true, AlternativePartNumber: str("NEW1")},
	}}))

	view := tab.View()
	require.Len(t, view.Validated, 1)
	assert.Equal(t, "Part OLD1 is obsolete. Use NEW1 instead.", view.Validated[0].Hint)
}

func TestWorkspaceResetIsolation(t *testing.T) {
	ws := NewWorkspace()
	for _, k := range TabKinds {
		_, err := ws.With(k, func(tab *Tab) error {
			tab.SetParsed([]models.CanonicalItem{{PartNumber: string(k), Qty: 1}})
			return nil
		})
		require.NoError(t, err)
	}

	_, err := ws.With(TabBulk, func(tab *Tab) error {
		tab.Reset()
		return nil
	})
	require.NoError(t, err)

	for _, v := range ws.Snapshot() {
		if v.Kind == TabBulk {
			assert.Equal(t, StateEmpty, v.State)
			continue
		}
		assert.Equal(t, StateParsed, v.State)
		assert.Len(t, v.Items, 1)
	}

	ws.ResetAll()
	for _, v := range ws.Snapshot() {
		assert.Equal(t, StateEmpty, v.State)
	}
}

func TestWorkspaceRegistrySweep(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewWorkspaceRegistry(time.Hour)
	r.now = func() time.Time { return clock }

	a := r.Get("a")
	r.Get("b")
	assert.Same(t, a, r.Get("a"))

	clock = clock.Add(40 * time.Minute)
	r.Get("a")
	clock = clock.Add(30 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.Same(t, a, r.Get("a"))
}

func TestWorkspaceRegistryRunStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewWorkspaceRegistry(time.Millisecond)
	r.Get("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
