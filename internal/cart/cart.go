// Package cart holds the cart mutators. They never modify their input slice.
package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/shopspring/decimal"
)

// AddToCart merges quantity into the line matching (product, color, size) or appends a new
// line. Non-positive quantities are treated as 1.
func AddToCart(lines []models.CartLine, product models.Product, quantity int, color string, size *string) []models.CartLine {
	if quantity < 1 {
		quantity = 1
	}
	out := models.CloneCart(lines)
	for i := range out {
		if out[i].Matches(product.ID, color, size) {
			out[i].Quantity += quantity
			return out
		}
	}
	line := models.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Quantity:  quantity,
		Color:     color,
	}
	if size != nil {
		s := *size
		line.Size = &s
	}
	return append(out, line)
}

// UpdateQuantity sets the quantity of the matching line, floored at 1.
func UpdateQuantity(lines []models.CartLine, productID, color string, quantity int, size *string) []models.CartLine {
	if quantity < 1 {
		quantity = 1
	}
	out := models.CloneCart(lines)
	for i := range out {
		if out[i].Matches(productID, color, size) {
			out[i].Quantity = quantity
		}
	}
	return out
}

// RemoveItem drops the matching line. Missing keys leave the cart unchanged.
func RemoveItem(lines []models.CartLine, productID, color string, size *string) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, line := range models.CloneCart(lines) {
		if line.Matches(productID, color, size) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Total sums line totals.
func Total(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Normalize returns a canonical string for comparison: lines sorted by key, every
// attribute included. Line order does not affect the result.
func Normalize(lines []models.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strings.Join([]string{
			line.ProductID,
			line.Color,
			sizeKey(line.Size),
			strconv.Itoa(line.Quantity),
			line.Price.String(),
			line.Name,
			line.ImageURL,
		}, "\x1f"))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x1e")
}

// Equal compares carts by their normalized form.
func Equal(a, b []models.CartLine) bool {
	return Normalize(a) == Normalize(b)
}

func sizeKey(size *string) string {
	if size == nil {
		return "\x00"
	}
	return *size
}
