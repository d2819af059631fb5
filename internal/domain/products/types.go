package products

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               int64           `json:"_id"`
	BusinessID       int64           `json:"id"`
	ItemName         string          `json:"itemName"`
	NewPrice         decimal.Decimal `json:"newPrice"`
	OldPrice         decimal.Decimal `json:"oldPrice"`
	ShortDescription string          `json:"shortDescription"`
	FullDescription  string          `json:"fullDescription"`
	CategoryID       *int64          `json:"category"`
	FeaturedImage    *string         `json:"featuredImage"`
	GalleryImages    []string        `json:"galleryImages"`
	Variants         []Variant       `json:"variants"`
	StockStatus      string          `json:"stockStatus"`
	Tag              string          `json:"tag"`
	IsPopular        bool            `json:"isPopular"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Variant is embedded in the product row as JSONB.
type Variant struct {
	SKU                  string          `json:"sku"`
	NewPrice             decimal.Decimal `json:"newPrice"`
	OldPrice             decimal.Decimal `json:"oldPrice"`
	Quantity             int             `json:"quantity"`
	Attributes           map[string]any  `json:"attributes,omitempty"`
	VariantFeaturedImage *string         `json:"variantFeaturedImage,omitempty"`
	VariantGalleryImages []string        `json:"variantGalleryImages,omitempty"`
}

// SizeIDs returns the size ids held in attributes.size, whether they came
// from the service ([]int64) or were decoded from JSON ([]any of float64).
func (v Variant) SizeIDs() []int64 {
	switch raw := v.Attributes["size"].(type) {
	case []int64:
		return append([]int64{}, raw...)
	case []any:
		ids := make([]int64, 0, len(raw))
		for _, item := range raw {
			switch n := item.(type) {
			case float64:
				ids = append(ids, int64(n))
			case int64:
				ids = append(ids, n)
			case int:
				ids = append(ids, int64(n))
			}
		}
		return ids
	}
	return nil
}

// RemoveSize drops sizeID from attributes.size and reports whether it was there.
func (v *Variant) RemoveSize(sizeID int64) bool {
	ids := v.SizeIDs()
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != sizeID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return false
	}
	v.Attributes["size"] = kept
	return true
}

// UsesSize reports whether any variant references sizeID.
func (p *Product) UsesSize(sizeID int64) bool {
	for _, v := range p.Variants {
		for _, id := range v.SizeIDs() {
			if id == sizeID {
				return true
			}
		}
	}
	return false
}
