package models

// ProductRef is the read-only projection of a catalog entry returned by the backend.
// It is passed through verbatim; the storefront never recomputes price or substitution.
type ProductRef struct {
	ID                    int64    `json:"id"`
	PartNumber            string   `json:"part_number"`
	Name                  string   `json:"name"`
	Price                 *float64 `json:"price"`
	Image                 *string  `json:"image,omitempty"`
	IsObsolete            bool     `json:"is_obsolete,omitempty"`
	AlternativePartNumber *string  `json:"alternative_part_number,omitempty"`
}

// DisplayName returns the product name, falling back to the part number
func (p *ProductRef) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.PartNumber
}

// PriceOrZero returns the backend price or 0 when the backend sent null
func (p *ProductRef) PriceOrZero() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// ImageOr returns the product image or the given fallback
func (p *ProductRef) ImageOr(fallback string) string {
	if p.Image == nil || *p.Image == "" {
		return fallback
	}
	return *p.Image
}
