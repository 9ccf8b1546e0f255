package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"autoparts-storefront/config"
	"autoparts-storefront/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers the storefront REST endpoints used by quick order
type fakeBackend struct {
	mu      sync.Mutex
	catalog map[string]map[string]any
	quotes  []models.CreateQuoteRequest
}

func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	b := &fakeBackend{catalog: map[string]map[string]any{
		"BP-100": {"id": 42, "part_number": "BP-100", "name": "Brake Pad", "price": 19.5},
		"OF-7":   {"id": 7, "part_number": "OF-7", "name": "Oil Filter", "price": 4.25, "is_obsolete": true, "alternative_part_number": "OF-8"},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("/fast-order/bulk-validate", func(w http.ResponseWriter, r *http.Request) {
		var req models.BulkValidateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		processed := make([]map[string]any, 0, len(req.Items))
		for _, it := range req.Items {
			line := map[string]any{"part_number": it.PartNumber, "qty": it.Qty, "product": nil}
			if p, ok := b.catalog[it.PartNumber]; ok {
				line["product"] = p
			} else {
				line["message"] = "Part not found"
			}
			processed = append(processed, line)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"processed": processed})
	})
	mux.HandleFunc("/fast-order/single", func(w http.ResponseWriter, r *http.Request) {
		part := r.URL.Query().Get("part")
		p, ok := b.catalog[part]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Part not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"part_number": part, "qty": 1, "product": p}})
	})
	mux.HandleFunc("/quotes/create", func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateQuoteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.quotes = append(b.quotes, req)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"quote": map[string]any{"id": 9, "quote_number": "Q-0009", "token": "tok9"}})
	})
	mux.HandleFunc("/quotes/convert-to-cart", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{"id": 42, "part_number": "BP-100", "name": "Brake Pad", "price": 19.5, "qty": 1},
			{"id": nil, "part_number": "LEGACY-1", "qty": 3},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, backendURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.APIBaseURL = backendURL
	cfg.Storage.Backend = config.StorageMemory
	cfg.Activity.Sink = config.SinkFile
	cfg.Activity.Dir = t.TempDir()
	cfg.Images.CacheDir = filepath.Join(t.TempDir(), "images")
	cfg.Export.TemplatePath = filepath.Join("..", "templates", "quote.html")
	require.NoError(t, cfg.Validate())
	return cfg
}

type shopper struct {
	t      *testing.T
	client *http.Client
	base   string
	userID string
}

func newShopper(t *testing.T, base string) *shopper {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &shopper{t: t, client: &http.Client{Jar: jar}, base: base, userID: "user_1"}
}

func (s *shopper) do(method, path, contentType string, body io.Reader) (*http.Response, map[string]any) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.base+path, body)
	require.NoError(s.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.userID != "" {
		req.Header.Set("X-User-Id", s.userID)
		req.Header.Set("X-User-Email", "buyer@example.com")
	}
	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (s *shopper) postJSON(path string, v any) (*http.Response, map[string]any) {
	payload, err := json.Marshal(v)
	require.NoError(s.t, err)
	return s.do(http.MethodPost, path, "application/json", bytes.NewReader(payload))
}

func noticeMessages(body map[string]any) []string {
	raw, _ := body["notices"].([]any)
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		if m, ok := n.(map[string]any); ok {
			out = append(out, m["message"].(string))
		}
	}
	return out
}

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	backend := newFakeBackend(t)
	a, err := Initialize(context.Background(), testConfig(t, backend.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)
	return a, srv
}

func TestQuickOrderPasteToCart(t *testing.T) {
	a, srv := newTestApp(t)
	s := newShopper(t, srv.URL)

	resp, body := s.postJSON("/quick-order/paste/parse", map[string]string{"text": "bp-100, 2\nnope 1\nof-7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Parsed 3 items"}, noticeMessages(body))

	resp, body = s.do(http.MethodPost, "/quick-order/paste/validate", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, noticeMessages(body), "Paste validation complete")
	assert.Contains(t, noticeMessages(body), "Part OF-7 is obsolete. Use OF-8 instead.")
	tab := body["tab"].(map[string]any)
	assert.Equal(t, "validated", tab["state"])
	assert.Len(t, tab["validated"], 3)

	resp, body = s.do(http.MethodPost, "/quick-order/paste/add-to-cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Added valid items to cart", "1 items were not found and were skipped"}, noticeMessages(body))
	assert.Equal(t, 1.0, body["skipped"])
	assert.Equal(t, "empty", body["tab"].(map[string]any)["state"])

	resp, body = s.do(http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, 3.0, body["itemCount"])
	assert.InDelta(t, 43.25, body["subtotal"], 0.001)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.Metrics.CartInsertions))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Lines.WithLabelValues("missing")))
}

func TestQuickOrderBulkUploadAndSaveQuote(t *testing.T) {
	_, srv := newTestApp(t)
	s := newShopper(t, srv.URL)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "order.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("part_number,qty\nBP-100,4\n,2\nMISSING-1,1\n"))
	require.NoError(t, mw.Close())

	resp, body := s.do(http.MethodPost, "/quick-order/bulk/parse", mw.FormDataContentType(), &buf)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Parsed 2 items", "1 rows without a part number were skipped"}, noticeMessages(body))

	resp, _ = s.do(http.MethodPost, "/quick-order/bulk/validate", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/quick-order/bulk/save-quote", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"1 invalid items were removed before saving.", "Quote Q-0009 saved"}, noticeMessages(body))
	assert.Equal(t, "/quotes", body["redirect"])
}

func TestQuickOrderRequiresLogin(t *testing.T) {
	_, srv := newTestApp(t)
	s := newShopper(t, srv.URL)
	s.userID = ""

	resp, body := s.postJSON("/quick-order/single/lookup", map[string]any{"part_number": "BP-100", "qty": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, true, body["login_required"])

	// The cart stays available to anonymous sessions
	resp, _ = s.do(http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSingleLookupAndAdd(t *testing.T) {
	_, srv := newTestApp(t)
	s := newShopper(t, srv.URL)

	resp, body := s.postJSON("/quick-order/single/lookup", map[string]any{"part_number": "nope", "qty": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	line := body["tab"].(map[string]any)["validated"].([]any)[0].(map[string]any)
	assert.Equal(t, "Part not found", line["message"])

	resp, body = s.do(http.MethodPost, "/quick-order/single/add-to-cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"No valid items to add"}, noticeMessages(body))

	_, _ = s.postJSON("/quick-order/single/lookup", map[string]any{"part_number": " bp-100 ", "qty": 3})
	resp, body = s.do(http.MethodPost, "/quick-order/single/add-to-cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"🛒 Added 3 × Brake Pad"}, noticeMessages(body))
}

func TestQuoteConvertToCart(t *testing.T) {
	_, srv := newTestApp(t)
	s := newShopper(t, srv.URL)

	resp, body := s.postJSON("/quotes/convert-to-cart", map[string]string{"token": "tok9"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Added 2 quote items to cart"}, noticeMessages(body))
	assert.Equal(t, 4.0, body["itemCount"])

	// Converting twice merges instead of duplicating
	_, body = s.postJSON("/quotes/convert-to-cart", map[string]string{"token": "tok9"})
	assert.Len(t, body["items"], 2)
	assert.Equal(t, 8.0, body["itemCount"])

	resp, _ = s.postJSON("/quotes/convert-to-cart", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPingAndMetrics(t *testing.T) {
	_, srv := newTestApp(t)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(raw), "storefront_cart_insertions_total"))
}

func TestNewStateRepositoryPebble(t *testing.T) {
	repo, closeRepo, err := NewStateRepository(context.Background(), config.StorageConfig{
		Backend:   config.StoragePebble,
		PebbleDir: t.TempDir(),
	})
	require.NoError(t, err)
	defer closeRepo()

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "s1", "cart", []byte(`[]`)))
	got, err := repo.Load(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}
