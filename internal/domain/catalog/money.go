package catalog

import "math"

// Cents converts a decimal amount (e.g. 12.5) into minor units (1250).
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Amount converts minor units back to a decimal amount for JSON output.
func Amount(cents int64) float64 {
	return float64(cents) / 100
}
