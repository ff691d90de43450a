// Package scy holds SCY token constants and conversions between display
// amounts and raw (smallest denomination) amounts.
package scy

import "math"

const (
	// Decimals is the configured precision of the SCY mint.
	Decimals = 9

	// RawPerToken is the number of raw units in one whole SCY token.
	RawPerToken = 1_000_000_000
)

// ToRawAmount converts a display amount into raw units, truncating any
// precision beyond the mint's decimals.
//
// Truncation (not rounding) is intentional. Release quantities are computed
// in floating point and must never overshoot the deposit they draw from.
func ToRawAmount(ui float64, decimals uint8) uint64 {
	return uint64(ui * math.Pow10(int(decimals)))
}

// FromRawAmount converts a raw amount to its display value.
func FromRawAmount(raw uint64, decimals uint8) float64 {
	return float64(raw) / math.Pow10(int(decimals))
}
