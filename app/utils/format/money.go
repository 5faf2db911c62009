package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

type MoneyFormatter struct {
	ac accounting.Accounting
}

func NewMoneyFormatter(symbol string) *MoneyFormatter {
	return &MoneyFormatter{ac: accounting.Accounting{
		Symbol:    symbol,
		Precision: 2,
		Thousand:  ".",
		Decimal:   ",",
	}}
}

func (m *MoneyFormatter) Format(amount decimal.Decimal) string {
	return m.ac.FormatMoneyDecimal(amount)
}
