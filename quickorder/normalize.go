package quickorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"autoparts-storefront/models"

	"github.com/jszwec/csvutil"
)

// MaxBatchSize caps how many lines a single parse or validation may carry
const MaxBatchSize = 100

// Accepted CSV header aliases, in precedence order
var (
	partNumberColumns = []string{"part_number", "part", "PartNumber", "partNumber"}
	qtyColumns        = []string{"qty", "quantity", "Qty", "QTY", "Quantity"}
)

var (
	lineSplitRegex  = regexp.MustCompile(`\r?\n`)
	tokenSplitRegex = regexp.MustCompile(`[,\t\s]+`)
)

// csvRow carries every accepted alias column; only the ones present in the header are filled
type csvRow struct {
	PartNumber      string `csv:"part_number,omitempty"`
	Part            string `csv:"part,omitempty"`
	PartNumberUpper string `csv:"PartNumber,omitempty"`
	PartNumberCamel string `csv:"partNumber,omitempty"`
	Qty             string `csv:"qty,omitempty"`
	Quantity        string `csv:"quantity,omitempty"`
	QtyTitle        string `csv:"Qty,omitempty"`
	QtyUpper        string `csv:"QTY,omitempty"`
	QuantityTitle   string `csv:"Quantity,omitempty"`
}

func (r *csvRow) column(name string) string {
	switch name {
	case "part_number":
		return r.PartNumber
	case "part":
		return r.Part
	case "PartNumber":
		return r.PartNumberUpper
	case "partNumber":
		return r.PartNumberCamel
	case "qty":
		return r.Qty
	case "quantity":
		return r.Quantity
	case "Qty":
		return r.QtyTitle
	case "QTY":
		return r.QtyUpper
	case "Quantity":
		return r.QuantityTitle
	}
	return ""
}

// CSVStats reports how the data rows of an uploaded file were used.
// Rows counts data rows up to MaxBatchSize; Included + Dropped == Rows.
type CSVStats struct {
	Rows      int  `json:"rows"`
	Included  int  `json:"included"`
	Dropped   int  `json:"dropped"`
	Truncated bool `json:"truncated"`
}

// NormalizePartNumber trims and upper-cases a part number
func NormalizePartNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeQty parses a user quantity the lenient way: leading integer digits win,
// trailing junk is ignored, and anything not >= 1 collapses to 1
func NormalizeQty(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	digits := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		digits++
		n = n*10 + int(c-'0')
		// Anything this large is a typo; keep it bounded instead of overflowing
		if n > 1_000_000 {
			n = 1_000_000
		}
	}

	if digits == 0 || neg || n < 1 {
		return 1
	}
	return n
}

// NormalizeSingle builds the canonical item for the single-entry mode.
// It returns false when the part number is blank.
func NormalizeSingle(part string, qty int) (models.CanonicalItem, bool) {
	pn := NormalizePartNumber(part)
	if pn == "" {
		return models.CanonicalItem{}, false
	}
	if qty < 1 {
		qty = 1
	}
	return models.CanonicalItem{PartNumber: pn, Qty: qty}, true
}

// NormalizeRawLines converts raw lines into canonical items, dropping blank part numbers
func NormalizeRawLines(lines []models.RawLine) []models.CanonicalItem {
	items := make([]models.CanonicalItem, 0, len(lines))
	for _, l := range lines {
		pn := NormalizePartNumber(l.PartNumber)
		if pn == "" {
			continue
		}
		items = append(items, models.CanonicalItem{PartNumber: pn, Qty: NormalizeQty(l.Quantity)})
		if len(items) == MaxBatchSize {
			break
		}
	}
	return items
}

// ParseCSV reads a CSV upload with a header row into canonical items.
// Malformed or blank-part rows are dropped; only the first MaxBatchSize data rows are read.
// An error means the file itself could not be read (no header, broken stream).
func ParseCSV(r io.Reader) ([]models.CanonicalItem, CSVStats, error) {
	var stats CSVStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fmt.Errorf("csv file is empty")
		}
		return nil, stats, fmt.Errorf("failed to read csv header: %w", err)
	}
	header = cleanHeader(header)

	partCol := firstPresent(header, partNumberColumns)
	qtyCol := firstPresent(header, qtyColumns)

	decoder, err := csvutil.NewDecoder(&paddedReader{r: reader, width: len(header)}, header...)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to create csv decoder: %w", err)
	}

	var items []models.CanonicalItem
	for {
		if stats.Rows == MaxBatchSize {
			// Peek one more record to report truncation
			var extra csvRow
			if err := decoder.Decode(&extra); err == nil || !errors.Is(err, io.EOF) {
				stats.Truncated = true
			}
			break
		}

		var row csvRow
		err := decoder.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !isRowError(err) {
				return nil, stats, fmt.Errorf("failed to read csv row: %w", err)
			}
			stats.Rows++
			stats.Dropped++
			continue
		}
		stats.Rows++

		pn := ""
		if partCol != "" {
			pn = NormalizePartNumber(row.column(partCol))
		}
		if pn == "" {
			stats.Dropped++
			continue
		}

		qty := 1
		if qtyCol != "" {
			qty = NormalizeQty(row.column(qtyCol))
		}
		items = append(items, models.CanonicalItem{PartNumber: pn, Qty: qty})
		stats.Included++
	}

	return items, stats, nil
}

// cleanHeader trims names and renames blank or repeated columns so they never shadow an alias
func cleanHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if h == "" || seen[h] {
			h = fmt.Sprintf("_column_%d", i)
		}
		seen[h] = true
		out[i] = h
	}
	return out
}

// paddedReader fits every record to the header width; short rows get blank trailing cells
type paddedReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return rec, err
	}
	for len(rec) < p.width {
		rec = append(rec, "")
	}
	return rec[:p.width], nil
}

// isRowError reports errors confined to one record; the reader can move on to the next one
func isRowError(err error) bool {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return true
	}
	return errors.Is(err, csvutil.ErrFieldCount)
}

func firstPresent(header []string, aliases []string) string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, a := range aliases {
		if present[a] {
			return a
		}
	}
	return ""
}

// ParsePaste parses free text, one line per part: "PART[, ;\t]QTY".
// Blank lines are skipped and only the first MaxBatchSize non-blank lines are read.
func ParsePaste(text string) []models.CanonicalItem {
	var items []models.CanonicalItem
	lines := 0
	for _, raw := range lineSplitRegex.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if lines == MaxBatchSize {
			break
		}
		lines++

		parts := tokenSplitRegex.Split(line, -1)
		pn := NormalizePartNumber(parts[0])
		if pn == "" {
			continue
		}
		qty := 1
		if len(parts) > 1 && parts[1] != "" {
			qty = NormalizeQty(parts[1])
		}
		items = append(items, models.CanonicalItem{PartNumber: pn, Qty: qty})
	}
	return items
}

// PreviewLines returns the first n lines of an uploaded file, as shown before parsing
func PreviewLines(text string, n int) []string {
	lines := lineSplitRegex.Split(text, -1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
