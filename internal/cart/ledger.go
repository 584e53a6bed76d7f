package cart

// LineKey is the composite identity of a cart line. Two adds with the same
// key merge into one line.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// Line is one cart entry with the product fields snapshotted at add time.
type Line struct {
	ProductID string `json:"productId"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	UnitPrice int    `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// Key returns the line's composite identity.
func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Ledger holds the cart lines in insertion order. It carries no transient
// view state; the whole value round-trips through the session store.
type Ledger struct {
	Lines []Line `json:"lines"`
}

// find returns the index of the line with the key, or -1.
func (c *Ledger) find(key LineKey) int {
	for i, line := range c.Lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

// Subtotal sums unit price times quantity across all lines.
func (c *Ledger) Subtotal() int {
	total := 0
	for _, line := range c.Lines {
		total += line.UnitPrice * line.Quantity
	}
	return total
}

// ItemCount sums the quantities across all lines.
func (c *Ledger) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the ledger holds no lines.
func (c *Ledger) IsEmpty() bool {
	return len(c.Lines) == 0
}

// upsert merges the line into the ledger. An existing line with the same key
// accumulates quantity; the stored snapshot fields are kept from the first
// add. Quantities are clamped to maxQuantity when it is positive.
func (c *Ledger) upsert(line Line, maxQuantity int) {
	if idx := c.find(line.Key()); idx >= 0 {
		c.Lines[idx].Quantity = clampQuantity(c.Lines[idx].Quantity+line.Quantity, maxQuantity)
		return
	}
	line.Quantity = clampQuantity(line.Quantity, maxQuantity)
	c.Lines = append(c.Lines, line)
}

// setQuantity replaces the quantity for the key. Zero or negative removes the
// line. Unknown keys are a no-op for removal and ignored otherwise.
func (c *Ledger) setQuantity(key LineKey, quantity, maxQuantity int) {
	idx := c.find(key)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		c.remove(key)
		return
	}
	c.Lines[idx].Quantity = clampQuantity(quantity, maxQuantity)
}

// remove drops the line with the key, preserving the order of the rest.
// Absent keys are a no-op.
func (c *Ledger) remove(key LineKey) {
	idx := c.find(key)
	if idx < 0 {
		return
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}

// clear empties the ledger.
func (c *Ledger) clear() {
	c.Lines = nil
}

func clampQuantity(quantity, maxQuantity int) int {
	if quantity < 1 {
		return 1
	}
	if maxQuantity > 0 && quantity > maxQuantity {
		return maxQuantity
	}
	return quantity
}
