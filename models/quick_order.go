package models

// RawLine is one user-supplied line before normalization
type RawLine struct {
	PartNumber string
	Quantity   string
}

// CanonicalItem is a normalized line ready for lookup.
// PartNumber is trimmed and upper-cased and never empty; Qty is always >= 1.
type CanonicalItem struct {
	PartNumber string `json:"part_number"`
	Qty        int    `json:"qty"`
}

// ValidatedItem is a canonical item augmented with the lookup outcome.
// Product is non-nil iff the catalog matched the line (exactly or through a substitute).
type ValidatedItem struct {
	PartNumber string      `json:"part_number"`
	Qty        int         `json:"qty"`
	Product    *ProductRef `json:"product"`
	MappedTo   *string     `json:"mapped_to"`
	Message    *string     `json:"message"`
}

// Found reports whether the line matched a catalog product
func (v ValidatedItem) Found() bool {
	return v.Product != nil
}

// SingleLookupResponse is the backend body for GET /fast-order/single
// Example: {"item": {"part_number": "ABC123", "qty": 1, "product": {...}}}
type SingleLookupResponse struct {
	Item  *ValidatedItem `json:"item"`
	Error string         `json:"error,omitempty"`
}

// BulkValidateRequest is the backend body for POST /fast-order/bulk-validate
// Example: {"items": [{"part_number": "ABC123", "qty": 5}]}
type BulkValidateRequest struct {
	Items []CanonicalItem `json:"items"`
}

// BulkValidateResponse is the backend response for POST /fast-order/bulk-validate
// processed is one-to-one with the submitted items
type BulkValidateResponse struct {
	Processed []ValidatedItem `json:"processed"`
	Error     string          `json:"error,omitempty"`
}

// SingleLookupRequest is the request body for POST /quick-order/single/lookup
// Example: {"part_number": "abc123", "qty": 2}
type SingleLookupRequest struct {
	PartNumber string `json:"part_number" validate:"required"`
	Qty        int    `json:"qty"`
}

// PasteParseRequest is the request body for POST /quick-order/paste/parse
// Example: {"text": "ABC123, 5\nXYZ999"}
type PasteParseRequest struct {
	Text string `json:"text"`
}
