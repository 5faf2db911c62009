package calc

import "github.com/shopspring/decimal"

type Totals struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Shipping and tax are flat zero for now; Total always equals their sum with Subtotal.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal { return decimal.Zero }

func TaxFor(subtotal decimal.Decimal) decimal.Decimal { return decimal.Zero }

func OrderTotals(subtotal decimal.Decimal) Totals {
	shipping := ShippingFor(subtotal)
	tax := TaxFor(subtotal)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
	}
}

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
