// Package util holds small formatting helpers for printing solved DC
// quantities, trimmed to the magnitude-suffix style the teacher used
// for every analysis kind down to just what DC analysis needs.
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value with an SI magnitude suffix, e.g.
// 0.0034 -> "3.400 mV".
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}
