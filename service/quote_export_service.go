package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"sync"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/utils"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
)

// QuoteExportService renders quotes as printable HTML and PDF
type QuoteExportService struct {
	templatePath string
	chromePath   string
	baseURL      string // Public base URL of this server, e.g. "http://localhost:8080"

	once sync.Once
	tmpl *template.Template
	err  error
}

// quoteLine is one row of the printed quote
type quoteLine struct {
	PartNumber string
	Name       string
	MappedTo   string
	Qty        int
	UnitPrice  string
	Total      string
}

// detectChromePath returns the configured Chrome binary or the first common installation found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	// Common paths to check
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewQuoteExportService creates a new QuoteExportService
func NewQuoteExportService(templatePath, chromePath, baseURL string) *QuoteExportService {
	return &QuoteExportService{
		templatePath: templatePath,
		chromePath:   chromePath,
		baseURL:      baseURL,
	}
}

func (s *QuoteExportService) loadTemplate() (*template.Template, error) {
	s.once.Do(func() {
		s.tmpl, s.err = template.ParseFiles(s.templatePath)
		if s.err != nil {
			s.err = fmt.Errorf("failed to parse template: %w", s.err)
		}
	})
	return s.tmpl, s.err
}

// RenderQuoteHTML renders the quote HTML template
func (s *QuoteExportService) RenderQuoteHTML(ctx context.Context, view *models.QuoteView) (string, error) {
	tmpl, err := s.loadTemplate()
	if err != nil {
		return "", err
	}

	lines := make([]quoteLine, 0, len(view.Items))
	subtotal := decimal.Zero
	for _, it := range view.Items {
		line := quoteLine{
			PartNumber: it.PartNumber,
			Name:       it.PartNumber,
			Qty:        it.Qty,
			UnitPrice:  "-",
			Total:      utils.FormatUSD(utils.LineTotal(it.Price, it.Qty)),
		}
		if it.Name != nil && *it.Name != "" {
			line.Name = *it.Name
		}
		if it.MappedTo != nil {
			line.MappedTo = *it.MappedTo
		}
		if it.Price != nil {
			line.UnitPrice = utils.FormatUSD(utils.Dollars(*it.Price))
		}
		subtotal = subtotal.Add(utils.LineTotal(it.Price, it.Qty))
		lines = append(lines, line)
	}

	createdAt := view.Quote.CreatedAt
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		createdAt = t.Format("January 2, 2006")
	}

	// Prepare template data
	templateData := struct {
		Quote     *models.Quote
		CreatedAt string
		Lines     []quoteLine
		Subtotal  string
	}{
		Quote:     view.Quote,
		CreatedAt: createdAt,
		Lines:     lines,
		Subtotal:  utils.FormatUSD(subtotal),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderURL is the page headless Chrome prints for token
func (s *QuoteExportService) RenderURL(token string) string {
	return fmt.Sprintf("%s/quotes/view/%s/render", s.baseURL, url.PathEscape(token))
}

// GeneratePDF prints the rendered quote page to PDF using chromedp
func (s *QuoteExportService) GeneratePDF(ctx context.Context, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := s.RenderURL(token)
	logging.S().Infof("📄 GeneratePDF: printing %s", renderURL)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.fonts.ready`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// US Letter, margins live in the page CSS
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
