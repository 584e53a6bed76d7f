package types

// ProductSize is one selectable size with its remaining stock.
type ProductSize struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// ProductColor is one selectable color variant.
type ProductColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ProductSizes is the jsonb-backed collection stored on a product row.
type ProductSizes []ProductSize

// ProductColors is the jsonb-backed collection stored on a product row.
type ProductColors []ProductColor

// TotalStock sums the per-size stock counts.
func (s ProductSizes) TotalStock() int {
	total := 0
	for _, size := range s {
		total += size.Stock
	}
	return total
}

// StockFor returns the stock for the given size label, or 0 when unknown.
func (s ProductSizes) StockFor(label string) int {
	for _, size := range s {
		if size.Label == label {
			return size.Stock
		}
	}
	return 0
}
