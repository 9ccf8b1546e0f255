package quickorder

import (
	"context"
	"fmt"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
)

const (
	msgNotFound     = "Not found"
	msgLookupFailed = "Lookup failed"
)

// Lookup is the external catalog used to validate part numbers
type Lookup interface {
	LookupSingle(ctx context.Context, part string) (*models.ValidatedItem, error)
	BulkValidate(ctx context.Context, items []models.CanonicalItem) ([]models.ValidatedItem, error)
}

// Orchestrator submits canonical items to the catalog and merges the answers back
type Orchestrator struct {
	lookup Lookup
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(lookup Lookup) *Orchestrator {
	return &Orchestrator{lookup: lookup}
}

// Validate sends one bulk request for items and returns exactly one ValidatedItem per item, in order.
// An empty batch never reaches the network.
func (o *Orchestrator) Validate(ctx context.Context, items []models.CanonicalItem) ([]models.ValidatedItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(items) > MaxBatchSize {
		items = items[:MaxBatchSize]
	}

	logging.S().Infof("📥 Validate: submitting %d items", len(items))
	results, err := o.lookup.BulkValidate(ctx, items)
	if err != nil {
		logging.S().Errorf("❌ Validate: bulk validation failed: %v", err)
		return nil, fmt.Errorf("failed to validate items: %w", err)
	}

	if len(results) != len(items) {
		logging.S().Errorf("❌ Validate: backend returned %d results for %d items", len(results), len(items))
		return nil, &BackendError{
			Endpoint: "bulk-validate",
			Status:   0,
			Message:  fmt.Sprintf("validation response did not match request: got %d results for %d items", len(results), len(items)),
		}
	}

	validated := make([]models.ValidatedItem, len(items))
	for i := range items {
		validated[i] = mergeLine(items[i], results[i])
	}

	found, missing, obsolete := Tally(validated)
	logging.S().Infof("✅ Validate: %d found, %d missing, %d obsolete", found, missing, obsolete)
	return validated, nil
}

// LookupSingle resolves a single part. A backend rejection comes back as a miss line with a nil error;
// a transport failure comes back as a "Lookup failed" miss line together with the error.
func (o *Orchestrator) LookupSingle(ctx context.Context, item models.CanonicalItem) (models.ValidatedItem, error) {
	logging.S().Infof("📥 LookupSingle: part=%s qty=%d", item.PartNumber, item.Qty)

	result, err := o.lookup.LookupSingle(ctx, item.PartNumber)
	if err != nil {
		if be, ok := AsBackendError(err); ok && !be.Transport() {
			logging.S().Infof("⚠️ LookupSingle: backend rejected %s: %s", item.PartNumber, be.Message)
			return missLine(item, be.UserMessage(msgNotFound)), nil
		}
		logging.S().Errorf("❌ LookupSingle: lookup for %s failed: %v", item.PartNumber, err)
		return missLine(item, msgLookupFailed), fmt.Errorf("failed to look up part %s: %w", item.PartNumber, err)
	}

	if result == nil {
		return missLine(item, msgNotFound), nil
	}

	line := mergeLine(item, *result)
	if line.Found() {
		logging.S().Infof("✅ LookupSingle: %s matched product %d", item.PartNumber, line.Product.ID)
	}
	return line, nil
}

// mergeLine keeps the submitted part number and quantity and passes product and mapping through
func mergeLine(item models.CanonicalItem, result models.ValidatedItem) models.ValidatedItem {
	line := models.ValidatedItem{
		PartNumber: item.PartNumber,
		Qty:        item.Qty,
		Product:    result.Product,
		MappedTo:   nonEmpty(result.MappedTo),
	}
	if line.Product == nil {
		msg := msgNotFound
		if result.Message != nil && *result.Message != "" {
			msg = *result.Message
		}
		line.Message = &msg
	}
	return line
}

func missLine(item models.CanonicalItem, message string) models.ValidatedItem {
	return models.ValidatedItem{
		PartNumber: item.PartNumber,
		Qty:        item.Qty,
		Message:    &message,
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// SubstituteHint returns the warning shown when a matched product is obsolete and names a replacement
func SubstituteHint(item models.ValidatedItem) (string, bool) {
	p := item.Product
	if p == nil || !p.IsObsolete || p.AlternativePartNumber == nil || *p.AlternativePartNumber == "" {
		return "", false
	}
	return fmt.Sprintf("Part %s is obsolete. Use %s instead.", item.PartNumber, *p.AlternativePartNumber), true
}

// Tally counts found, missing and obsolete lines. Obsolete lines are also counted as found.
func Tally(items []models.ValidatedItem) (found, missing, obsolete int) {
	for _, it := range items {
		if !it.Found() {
			missing++
			continue
		}
		found++
		if it.Product.IsObsolete {
			obsolete++
		}
	}
	return found, missing, obsolete
}
