package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"autoparts-storefront/models"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver(t *testing.T) {
	r := NewIdentityResolver("X-User-Id", "X-User-Email")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := r.FromRequest(req)
	assert.False(t, ok)

	req.Header.Set("X-User-Id", " user_1 ")
	req.Header.Set("X-User-Email", "a@b.c")
	user, ok := r.FromRequest(req)
	require.True(t, ok)
	assert.Equal(t, models.User{ID: "user_1", Email: "a@b.c"}, user)
}

type fakeConverter struct {
	items []models.QuoteViewItem
	err   error
}

func (f *fakeConverter) ConvertToCart(ctx context.Context, token string) ([]models.QuoteViewItem, error) {
	return f.items, f.err
}

type fakeCartInserter struct {
	lines []models.CartLine
	calls int
}

func (f *fakeCartInserter) Add(ctx context.Context, owner string, lines ...models.CartLine) error {
	f.calls++
	f.lines = append(f.lines, lines...)
	return nil
}

func TestQuoteCartServiceConvert(t *testing.T) {
	id := int64(5)
	name := "Brake Pad"
	price := 19.5
	conv := &fakeConverter{items: []models.QuoteViewItem{
		{ID: &id, PartNumber: "BP-1", Name: &name, Price: &price, Qty: 2},
		{PartNumber: "gone-1", Qty: 0},
	}}
	cart := &fakeCartInserter{}

	lines, err := NewQuoteCartService(conv, cart).Convert(context.Background(), "s1", "tok")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, cart.calls)

	assert.Equal(t, models.CartLine{ID: 5, PartNumber: "BP-1", Name: "Brake Pad", Price: 19.5, Image: "/placeholder.png", Quantity: 2}, lines[0])
	assert.Equal(t, SyntheticProductID("GONE-1"), lines[1].ID)
	assert.Less(t, lines[1].ID, int64(0))
	assert.Equal(t, "gone-1", lines[1].Name)
	assert.Equal(t, 1, lines[1].Quantity)

	conv.err = errors.New("boom")
	_, err = NewQuoteCartService(conv, cart).Convert(context.Background(), "s1", "tok")
	assert.Error(t, err)
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageServiceThumbnail(t *testing.T) {
	fixture := pngFixture(t, 1200, 600)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/img/pad.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	s := NewImageService(cacheDir, srv.URL)
	require.NoError(t, s.EnsureCacheDir())

	data, err := s.Thumbnail(context.Background(), "/img/pad.png", "thumb")
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	_, err = s.Thumbnail(context.Background(), srv.URL+"/img/pad.png", "thumb")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second request must come from the cache")

	matches, _ := filepath.Glob(filepath.Join(cacheDir, "product_*_thumb.jpg"))
	assert.Len(t, matches, 1)

	_, err = s.Thumbnail(context.Background(), "https://evil.example.com/x.png", "thumb")
	assert.ErrorIs(t, err, ErrImageHostNotAllowed)

	_, err = s.Thumbnail(context.Background(), "file:///etc/passwd", "thumb")
	assert.Error(t, err)
}

func TestOptimizeImageKeepsSmallImages(t *testing.T) {
	data, err := OptimizeImage(pngFixture(t, 120, 80), "medium")
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	_, err = OptimizeImage([]byte("not an image"), "thumb")
	assert.Error(t, err)
}

func TestQuoteExportServiceRenderHTML(t *testing.T) {
	templatePath := filepath.Join("..", "templates", "quote.html")
	_, err := os.Stat(templatePath)
	require.NoError(t, err)

	s := NewQuoteExportService(templatePath, "", "http://localhost:8080")
	name := "Brake Pad"
	price := 19.5
	mapped := "NEW123"
	clip := 0.1
	qname := "Quick Bulk 2026-01-04T10:30:00Z"
	view := &models.QuoteView{
		Quote: &models.Quote{ID: 1, QuoteNumber: "Q-0001", Token: "tok", Name: &qname, CreatedAt: "2026-01-04T10:30:00Z"},
		Items: []models.QuoteViewItem{
			{PartNumber: "BP-1", Name: &name, Price: &price, Qty: 2},
			{PartNumber: "OLD1", Qty: 1, MappedTo: &mapped},
			{PartNumber: "CLIP-1", Price: &clip, Qty: 3},
		},
	}

	html, err := s.RenderQuoteHTML(context.Background(), view)
	require.NoError(t, err)
	assert.Contains(t, html, "Quote Q-0001")
	assert.Contains(t, html, "January 4, 2026")
	assert.Contains(t, html, "$39.00")
	assert.Contains(t, html, "$0.30")
	assert.Contains(t, html, "$39.30")
	assert.Contains(t, html, "Replaced by NEW123")
	assert.Equal(t, "http://localhost:8080/quotes/view/a%2Fb/render", s.RenderURL("a/b"))
}
