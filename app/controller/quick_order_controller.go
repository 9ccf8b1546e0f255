package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
)

// maxUpload bounds the CSV upload for the bulk tab
const maxUpload = 5 << 20

// QuickOrderController handles HTTP requests for the quick order page
type QuickOrderController struct {
	service  *quickorder.Service
	identity IdentityResolver
}

// NewQuickOrderController creates a new QuickOrderController
func NewQuickOrderController(service *quickorder.Service, identity IdentityResolver) *QuickOrderController {
	return &QuickOrderController{
		service:  service,
		identity: identity,
	}
}

// workspaceResponse is the body of GET /quick-order and POST /quick-order/reset
type workspaceResponse struct {
	Tabs    []quickorder.TabView `json:"tabs"`
	Notices []models.Notice      `json:"notices"`
}

// statusFor maps a quick order outcome to an HTTP status.
// Preconditions are informational and the body carries the notice.
func statusFor(err error) int {
	switch {
	case err == nil, quickorder.IsPrecondition(err):
		return http.StatusOK
	case errors.Is(err, quickorder.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, quickorder.ErrUnknownTab):
		return http.StatusNotFound
	case errors.Is(err, quickorder.ErrLineIndex):
		return http.StatusBadRequest
	}
	if _, ok := quickorder.AsBackendError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (c *QuickOrderController) respond(w http.ResponseWriter, op string, res quickorder.Result, err error) {
	status := statusFor(err)
	if err != nil && status != http.StatusOK {
		logging.S().Warnf("❌ %s: %v", op, err)
	}
	if res.Notices == nil {
		res.Notices = []models.Notice{}
	}
	writeJSON(w, status, res)
}

// Workspace handles GET /quick-order
// Example response:
//
//	{"tabs": [{"kind": "single", "state": "empty", "items": [], "validated": []}, ...], "notices": []}
func (c *QuickOrderController) Workspace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "Workspace")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "Workspace"); !ok {
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{Tabs: c.service.Snapshot(Owner(r)), Notices: []models.Notice{}})
}

// ResetAll handles POST /quick-order/reset
func (c *QuickOrderController) ResetAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "ResetAll")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "ResetAll"); !ok {
		return
	}
	logging.S().Infof("🧹 ResetAll: owner=%s", Owner(r))
	writeJSON(w, http.StatusOK, workspaceResponse{Tabs: c.service.ResetAll(Owner(r)), Notices: []models.Notice{}})
}

// LookupSingle handles POST /quick-order/single/lookup
// Example request:
//
//	{"part_number": "abc123", "qty": 2}
//
// Example response:
//
//	{"tab": {"kind": "single", "state": "validated", "validated": [{"part_number": "ABC123", "qty": 2, "product": {...}}]}, "notices": []}
func (c *QuickOrderController) LookupSingle(w http.ResponseWriter, r *http.Request) {
	logging.S().Infof("📥 LookupSingle: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "LookupSingle")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "LookupSingle"); !ok {
		return
	}

	var req models.SingleLookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logging.S().Warnf("❌ LookupSingle: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := c.service.LookupSingle(r.Context(), Owner(r), req.PartNumber, req.Qty)
	c.respond(w, "LookupSingle", res, err)
}

// ParseBulk handles POST /quick-order/bulk/parse with a multipart "file" field holding the CSV
func (c *QuickOrderController) ParseBulk(w http.ResponseWriter, r *http.Request) {
	logging.S().Infof("📥 ParseBulk: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "ParseBulk")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "ParseBulk"); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		logging.S().Warnf("❌ ParseBulk: Failed to parse form: %v", err)
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		logging.S().Warnf("❌ ParseBulk: file field is required: %v", err)
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logging.S().Errorf("❌ ParseBulk: Failed to read upload: %v", err)
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	logging.S().Infof("📋 ParseBulk: %s (%d bytes)", header.Filename, len(data))

	res, err := c.service.ParseCSV(r.Context(), Owner(r), data)
	if err != nil {
		// The notice already tells the shopper the file was unreadable
		writeJSON(w, http.StatusBadRequest, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ParsePaste handles POST /quick-order/paste/parse
// Example request:
//
//	{"text": "ABC123, 5\nXYZ999"}
func (c *QuickOrderController) ParsePaste(w http.ResponseWriter, r *http.Request) {
	logging.S().Infof("📥 ParsePaste: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "ParsePaste")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "ParsePaste"); !ok {
		return
	}

	var req models.PasteParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logging.S().Warnf("❌ ParsePaste: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := c.service.ParsePaste(r.Context(), Owner(r), req.Text)
	c.respond(w, "ParsePaste", res, err)
}

// Validate handles POST /quick-order/{bulk|paste}/validate
func (c *QuickOrderController) Validate(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind) {
	logging.S().Infof("📥 Validate: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "Validate")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "Validate"); !ok {
		return
	}

	res, err := c.service.Validate(r.Context(), Owner(r), kind)
	c.respond(w, "Validate", res, err)
}

// AddToCart handles POST /quick-order/{tab}/add-to-cart
func (c *QuickOrderController) AddToCart(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind) {
	logging.S().Infof("📥 AddToCart: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "AddToCart")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "AddToCart"); !ok {
		return
	}

	res, err := c.service.AddToCart(r.Context(), Owner(r), kind)
	c.respond(w, "AddToCart", res, err)
}

// SaveQuote handles POST /quick-order/{tab}/save-quote
// Example response:
//
//	{"tab": {...}, "notices": [{"level": "success", "message": "Quote Q-0007 saved"}], "quote": {"quote_number": "Q-0007", ...}, "redirect": "/quotes"}
func (c *QuickOrderController) SaveQuote(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind) {
	logging.S().Infof("📥 SaveQuote: Received %s request to %s", r.Method, r.URL.Path)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "SaveQuote")
		return
	}
	user, ok := requireUser(w, r, c.identity, "SaveQuote")
	if !ok {
		return
	}

	res, err := c.service.SaveQuote(r.Context(), Owner(r), user, kind)
	c.respond(w, "SaveQuote", res, err)
}

// RemoveValidated handles DELETE /quick-order/{bulk|paste}/validated/{index}
func (c *QuickOrderController) RemoveValidated(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind, indexStr string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, "RemoveValidated")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "RemoveValidated"); !ok {
		return
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		logging.S().Warnf("❌ RemoveValidated: Invalid index: %s", indexStr)
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	res, err := c.service.RemoveValidated(Owner(r), kind, index)
	c.respond(w, "RemoveValidated", res, err)
}

// Reset handles POST /quick-order/{tab}/reset
func (c *QuickOrderController) Reset(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "Reset")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "Reset"); !ok {
		return
	}

	res, err := c.service.Reset(Owner(r), kind)
	c.respond(w, "Reset", res, err)
}

// Tab handles GET /quick-order/{tab}
func (c *QuickOrderController) Tab(w http.ResponseWriter, r *http.Request, kind quickorder.TabKind) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "Tab")
		return
	}
	if _, ok := requireUser(w, r, c.identity, "Tab"); !ok {
		return
	}

	res, err := c.service.View(Owner(r), kind)
	c.respond(w, "Tab", res, err)
}

// Route dispatches /quick-order/{tab}/{action}[/{index}]
func (c *QuickOrderController) Route(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/quick-order/")
	if len(parts) == 1 && parts[0] == "reset" {
		c.ResetAll(w, r)
		return
	}
	if len(parts) == 0 {
		c.Workspace(w, r)
		return
	}

	kind, err := quickorder.ParseTabKind(parts[0])
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if len(parts) == 1 {
		c.Tab(w, r, kind)
		return
	}

	switch action := parts[1]; {
	case action == "lookup" && kind == quickorder.TabSingle && len(parts) == 2:
		c.LookupSingle(w, r)
	case action == "parse" && kind == quickorder.TabBulk && len(parts) == 2:
		c.ParseBulk(w, r)
	case action == "parse" && kind == quickorder.TabPaste && len(parts) == 2:
		c.ParsePaste(w, r)
	case action == "validate" && kind != quickorder.TabSingle && len(parts) == 2:
		c.Validate(w, r, kind)
	case action == "add-to-cart" && len(parts) == 2:
		c.AddToCart(w, r, kind)
	case action == "save-quote" && len(parts) == 2:
		c.SaveQuote(w, r, kind)
	case action == "reset" && len(parts) == 2:
		c.Reset(w, r, kind)
	case action == "validated" && kind != quickorder.TabSingle && len(parts) == 3:
		c.RemoveValidated(w, r, kind, parts[2])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
