// Package present turns domain records into the view models and terminal renderings
// of the party screens. Everything here is a pure function of its input except
// RoleModal, which holds the selected role.
package present

import "math"

// Round rounds value half up to precision decimal places.
func Round(value float64, precision int) float64 {
	m := math.Pow(10, float64(precision))
	return math.Floor(value*m+0.5) / m
}
