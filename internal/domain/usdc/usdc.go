// Package usdc converts between display amounts and the 6-decimal fixed-point
// integers the ledger stores USDC in.
package usdc

import "github.com/shopspring/decimal"

// Decimals is the number of fractional digits in a stored USDC amount.
const Decimals = 6

var scale = decimal.New(1, Decimals) //nolint:gochecknoglobals // 10^6

// ToUSDC converts a display amount (1.23) to fixed point (1230000), rounding
// half away from zero.
func ToUSDC(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(scale).Round(0).IntPart()
}

// FromUSDC converts a fixed-point amount back to a display amount.
func FromUSDC(amount int64) float64 {
	f, _ := decimal.New(amount, -Decimals).Float64()
	return f
}

// Format renders a fixed-point amount with two decimals, e.g. "1.23".
func Format(amount int64) string {
	return decimal.New(amount, -Decimals).StringFixed(2)
}

// Exact renders a fixed-point amount with every significant digit, suitable
// for a numeric SQL parameter, e.g. "1.230001".
func Exact(amount int64) string {
	return decimal.New(amount, -Decimals).String()
}
