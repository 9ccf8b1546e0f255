package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"autoparts-storefront/quickorder"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecord(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.Record(ctx, quickorder.Event{Type: quickorder.EventValidated, Tab: quickorder.TabBulk, Lines: 4, Found: 3, Missing: 1, Obsolete: 1})
	r.Record(ctx, quickorder.Event{Type: quickorder.EventValidated, Tab: quickorder.TabPaste, Lines: 1, Found: 1})
	r.Record(ctx, quickorder.Event{Type: quickorder.EventQuoteSaved})
	r.Record(ctx, quickorder.Event{Type: quickorder.EventStaleResponse})
	r.CartAdded(5)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Validations.WithLabelValues("bulk")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Lines.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Lines.WithLabelValues("obsolete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Lines.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QuotesSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StaleResponses))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.CartInsertions))
}

func TestRegistryHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveBackend("bulk-validate", 120*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_backend_request_seconds_count{endpoint="bulk-validate"} 1`)
}
