package domain

import "github.com/shopspring/decimal"

var taxRate = decimal.RequireFromString("0.16")

// TaxRate returns the VAT applied to the cart subtotal.
func TaxRate() decimal.Decimal {
	return taxRate
}

type CartLine struct {
	Product  Product
	Quantity int
}

func (l CartLine) Amount() decimal.Decimal {
	price := decimal.NewFromFloat(l.Product.Price)
	return price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// A Cart holds at most one line per product ID, in insertion order.
//
// Methods never modify the receiver; mutations return a new Cart.
type Cart struct {
	Lines []CartLine
}

func (c Cart) Len() int {
	return len(c.Lines)
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount returns the sum of line quantities.
func (c Cart) ItemCount() (n int) {
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IndexOf returns the line index for productID or -1.
func (c Cart) IndexOf(productID int64) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Add increments the line of p by quantity or appends a new line.
//
// The product snapshot of an existing line is kept.
func (c Cart) Add(p Product, quantity int) Cart {
	next := c.clone()
	if i := next.IndexOf(p.ID); i >= 0 {
		next.Lines[i].Quantity += quantity
		return next
	}
	next.Lines = append(next.Lines, CartLine{Product: p, Quantity: quantity})
	return next
}

// SetQuantity reports false when index is out of range or quantity < 1.
func (c Cart) SetQuantity(index, quantity int) (Cart, bool) {
	if quantity < 1 || index < 0 || index >= len(c.Lines) {
		return c, false
	}
	next := c.clone()
	next.Lines[index].Quantity = quantity
	return next, true
}

// Remove reports false when index is out of range.
func (c Cart) Remove(index int) (Cart, bool) {
	if index < 0 || index >= len(c.Lines) {
		return c, false
	}
	lines := make([]CartLine, 0, len(c.Lines)-1)
	lines = append(lines, c.Lines[:index]...)
	lines = append(lines, c.Lines[index+1:]...)
	return Cart{Lines: lines}, true
}

type Totals struct {
	Lines    int
	Items    int
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func ComputeTotals(c Cart) Totals {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.Amount())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Lines:    c.Len(),
		Items:    c.ItemCount(),
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
