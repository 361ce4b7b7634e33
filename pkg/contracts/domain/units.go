package domain

import (
	"fmt"
	"strings"
)

// Unit is an explicit measurement unit code carried by every volume
type Unit string

const (
	// UnitMetricTon is one metric ton (1,000 kg)
	UnitMetricTon Unit = "t"
	// UnitKilogram is one kilogram
	UnitKilogram Unit = "kg"
	// UnitKiloton is one thousand metric tons
	UnitKiloton Unit = "kt"
	// UnitMegaton is one million metric tons
	UnitMegaton Unit = "Mt"
	// UnitHectare is harvested or planted area
	UnitHectare Unit = "ha"
	// UnitUSD is a monetary amount in US dollars
	UnitUSD Unit = "USD"
)

// tonFactors maps each mass unit to its size in metric tons
var tonFactors = map[Unit]float64{
	UnitMetricTon: 1,
	UnitKilogram:  0.001,
	UnitKiloton:   1_000,
	UnitMegaton:   1_000_000,
}

// ParseUnit normalizes the spellings found in source sheets to a Unit.
// "MT" is read as metric tons, as agricultural sheets use it; only the
// exact code "Mt" means megatonnes. Unknown spellings are returned verbatim
// so they surface as mismatches.
func ParseUnit(s string) Unit {
	s = strings.TrimSpace(s)
	if s == string(UnitMegaton) {
		return UnitMegaton
	}
	switch strings.ToLower(s) {
	case "t", "mt", "ton", "tons", "tonne", "tonnes", "metric ton", "metric tons":
		return UnitMetricTon
	case "kg", "kilogram", "kilograms":
		return UnitKilogram
	case "kt", "kilotonne", "kilotonnes", "thousand tons":
		return UnitKiloton
	case "megatonne", "megatonnes", "million tons":
		return UnitMegaton
	case "ha", "hectare", "hectares":
		return UnitHectare
	case "usd", "us$", "$":
		return UnitUSD
	}
	return Unit(s)
}

// IsMass reports whether the unit converts to metric tons
func (u Unit) IsMass() bool {
	_, ok := tonFactors[u]
	return ok
}

// IsValid reports whether the unit is one of the known codes
func (u Unit) IsValid() bool {
	return u.IsMass() || u == UnitHectare || u == UnitUSD
}

// ToMetricTons converts a volume in unit u to metric tons
func (u Unit) ToMetricTons(v float64) (float64, error) {
	f, ok := tonFactors[u]
	if !ok {
		return 0, fmt.Errorf("unit %q is not a mass unit", u)
	}
	return v * f, nil
}

// Comparable reports whether two volumes can be combined after normalization
func Comparable(a, b Unit) bool {
	if a == b {
		return true
	}
	return a.IsMass() && b.IsMass()
}
