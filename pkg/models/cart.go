package models

import "github.com/shopspring/decimal"

// CartLine is one purchasable selection. Lines are unique by (ProductID, Color, Size).
type CartLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"selectedColor"`
	Size      *string         `json:"selectedSize,omitempty"`
}

// Product is the catalog entry a cart line is built from.
type Product struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image,omitempty"`
}

// SizeValue returns the size or the empty string when none was chosen.
func (l CartLine) SizeValue() string {
	if l.Size == nil {
		return ""
	}
	return *l.Size
}

// Matches reports whether the line has the given composite key.
func (l CartLine) Matches(productID, color string, size *string) bool {
	if l.ProductID != productID || l.Color != color {
		return false
	}
	if l.Size == nil || size == nil {
		return l.Size == nil && size == nil
	}
	return *l.Size == *size
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CloneCart deep-copies a cart so size pointers are never shared.
func CloneCart(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	for i, line := range lines {
		out[i] = line
		if line.Size != nil {
			size := *line.Size
			out[i].Size = &size
		}
	}
	return out
}

// StringPtr is a small helper for optional sizes.
func StringPtr(value string) *string {
	return &value
}
