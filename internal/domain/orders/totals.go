package orders

// Pricing holds the shipping rules applied at checkout.
type Pricing struct {
	Currency              string
	ShippingFeeCents      int64
	FreeShippingThreshold int64 // 0 disables free shipping
}

// ShippingFor returns the shipping charge for a subtotal.
func (p Pricing) ShippingFor(subtotal int64) int64 {
	if subtotal == 0 {
		return 0
	}
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.ShippingFeeCents
}
