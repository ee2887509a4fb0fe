package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"ordermacro/internal/workbook"
)

// SeenSet remembers dedup keys across a row scan
type SeenSet map[string]struct{}

// FirstSeen records key and reports whether it was new
func (s SeenSet) FirstSeen(key string) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// BasketLedger holds one shipping fee per basket. It is filled before the
// sort, when duplicates are zeroed, and drained after the sort so the fee
// lands on the first row of each basket in the final order.
type BasketLedger struct {
	fees map[string]workbook.Cell
}

// NewBasketLedger creates an empty ledger
func NewBasketLedger() *BasketLedger {
	return &BasketLedger{fees: make(map[string]workbook.Cell)}
}

func basketKey(c workbook.Cell) string {
	return strings.TrimSpace(c.String())
}

// Record takes the fee of a basket row and returns the value the row keeps.
// The first non-zero fee of a basket is stored and the row is zeroed; later
// rows of a stored basket are zeroed too. Rows without a basket id are untouched.
func (b *BasketLedger) Record(basket, fee workbook.Cell) workbook.Cell {
	key := basketKey(basket)
	if key == "" {
		return fee
	}
	if _, stored := b.fees[key]; stored {
		return workbook.Int(0)
	}
	if fee.IsBlank() || (fee.IsNumeric() && fee.DecimalOrZero().IsZero()) {
		return fee
	}
	b.fees[key] = fee
	return workbook.Int(0)
}

// Claim returns the stored fee of a basket once; later claims find nothing
func (b *BasketLedger) Claim(basket workbook.Cell) (workbook.Cell, bool) {
	key := basketKey(basket)
	fee, ok := b.fees[key]
	if ok {
		delete(b.fees, key)
	}
	return fee, ok
}

// Len is the number of unclaimed baskets
func (b *BasketLedger) Len() int { return len(b.fees) }

// OrderTotals sums an amount per order and remembers the first row of each order
type OrderTotals struct {
	totals map[string]decimal.Decimal
	first  map[string]int
	order  []string
}

// NewOrderTotals creates an empty accumulator
func NewOrderTotals() *OrderTotals {
	return &OrderTotals{totals: make(map[string]decimal.Decimal), first: make(map[string]int)}
}

// Add adds amount to key, remembering rowIndex when key is new
func (o *OrderTotals) Add(key string, amount decimal.Decimal, rowIndex int) {
	if _, ok := o.totals[key]; !ok {
		o.first[key] = rowIndex
		o.order = append(o.order, key)
	}
	o.totals[key] = o.totals[key].Add(amount)
}

// Each visits orders in first-seen order
func (o *OrderTotals) Each(fn func(key string, total decimal.Decimal, firstRow int)) {
	for _, k := range o.order {
		fn(k, o.totals[k], o.first[k])
	}
}
