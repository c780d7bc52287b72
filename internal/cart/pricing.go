package cart

import "math"

const (
	// FlatShippingFee applies to any non-empty cart. There is a single
	// shipping tier.
	FlatShippingFee = 10.0
	// TaxRate is charged at checkout only; the cart-page quote omits tax.
	TaxRate = 0.07

	CouponCode = "LUSH20"
	CouponRate = 0.20
)

// Quote is the derived price breakdown for a cart. Total is rounded to
// cents; the components are kept unrounded.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// CheckoutQuote prices the cart the way the checkout flow does, including
// tax.
func CheckoutQuote(c *Cart, coupon string) Quote {
	return quote(c, coupon, true)
}

// CartQuote prices the cart the way the cart page does: no tax is applied.
func CartQuote(c *Cart, coupon string) Quote {
	return quote(c, coupon, false)
}

func quote(c *Cart, coupon string, withTax bool) Quote {
	var q Quote
	for _, line := range c.Lines {
		q.Subtotal += line.Price * float64(line.Quantity)
	}
	if q.Subtotal > 0 {
		q.Shipping = FlatShippingFee
	}
	if withTax {
		q.Tax = q.Subtotal * TaxRate
	}
	if coupon == CouponCode {
		q.Discount = q.Subtotal * CouponRate
	}
	q.Total = roundCents(q.Subtotal + q.Shipping + q.Tax - q.Discount)
	return q
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
