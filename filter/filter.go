// Package filter holds the boolean expression trees that select trip records during a scan.
//
// Expressions form a closed set of node types. Every node is a value with no mutable state, so one
// expression can be evaluated by any number of scans, concurrently or one after the other.
package filter

import (
	"strconv"
	"strings"

	"github.com/gostonefire/tripindex/model"
)

// Expr - A predicate over a single trip record
type Expr interface {
	// Match - Returns true if the trip satisfies the expression
	Match(trip model.Trip) bool
	// String - Renders the expression in the grammar accepted by Parse
	String() string

	isExpr()
}

// PriceRange - Matches trips whose total amount lies within [Min, Max]. A nil bound is open,
// with both bounds nil every trip matches. MinExclusive and MaxExclusive turn a bound strict.
type PriceRange struct {
	Min          *float64
	Max          *float64
	MinExclusive bool
	MaxExclusive bool
}

// KeyEquals - Matches the trip with the given record key
type KeyEquals struct {
	Key string
}

// DestinationEquals - Matches trips dropped off at the given location id
type DestinationEquals struct {
	ID string
}

// PickupDate - Matches trips whose raw pickup timestamp starts with Day, typically YYYY-MM-DD
type PickupDate struct {
	Day string
}

// And - Matches when every child matches, an empty And matches everything
type And []Expr

// Or - Matches when at least one child matches, an empty Or matches nothing
type Or []Expr

// All - Returns the expression that matches every trip
func All() Expr {
	return PriceRange{}
}

// Between - Returns a PriceRange with both bounds set
func Between(min, max float64) PriceRange {
	return PriceRange{Min: &min, Max: &max}
}

// AtLeast - Returns a PriceRange with only a lower bound
func AtLeast(min float64) PriceRange {
	return PriceRange{Min: &min}
}

// AtMost - Returns a PriceRange with only an upper bound
func AtMost(max float64) PriceRange {
	return PriceRange{Max: &max}
}

// Above - Returns a PriceRange with only a strict lower bound
func Above(min float64) PriceRange {
	return PriceRange{Min: &min, MinExclusive: true}
}

// Below - Returns a PriceRange with only a strict upper bound
func Below(max float64) PriceRange {
	return PriceRange{Max: &max, MaxExclusive: true}
}

// Matches - Evaluates expr against trip, a nil expr matches everything
func Matches(expr Expr, trip model.Trip) bool {
	if expr == nil {
		return true
	}
	return expr.Match(trip)
}

func (P PriceRange) Match(trip model.Trip) bool {
	if P.Min != nil && (trip.TotalAmount < *P.Min || P.MinExclusive && trip.TotalAmount == *P.Min) {
		return false
	}
	if P.Max != nil && (trip.TotalAmount > *P.Max || P.MaxExclusive && trip.TotalAmount == *P.Max) {
		return false
	}
	return true
}

func (K KeyEquals) Match(trip model.Trip) bool {
	return trip.Index == K.Key
}

func (D DestinationEquals) Match(trip model.Trip) bool {
	return trip.DOLocationID == D.ID
}

func (P PickupDate) Match(trip model.Trip) bool {
	return strings.HasPrefix(trip.PickupDatetime, P.Day)
}

func (A And) Match(trip model.Trip) bool {
	for _, e := range A {
		if !Matches(e, trip) {
			return false
		}
	}
	return true
}

func (O Or) Match(trip model.Trip) bool {
	for _, e := range O {
		if Matches(e, trip) {
			return true
		}
	}
	return false
}

func (P PriceRange) String() string {
	var lower, upper string
	if P.Min != nil {
		op := " >= "
		if P.MinExclusive {
			op = " > "
		}
		lower = totalField + op + formatNumber(*P.Min)
	}
	if P.Max != nil {
		op := " <= "
		if P.MaxExclusive {
			op = " < "
		}
		upper = totalField + op + formatNumber(*P.Max)
	}

	switch {
	case lower == "" && upper == "":
		return "true"
	case lower == "":
		return upper
	case upper == "":
		return lower
	case *P.Min == *P.Max && !P.MinExclusive && !P.MaxExclusive:
		return totalField + " == " + formatNumber(*P.Min)
	default:
		return "(" + lower + " && " + upper + ")"
	}
}

func (K KeyEquals) String() string {
	return keyField + " == " + strconv.Quote(K.Key)
}

func (D DestinationEquals) String() string {
	return destField + " == " + strconv.Quote(D.ID)
}

func (P PickupDate) String() string {
	return pickupField + " == " + strconv.Quote(P.Day)
}

func (A And) String() string {
	if len(A) == 0 {
		return "true"
	}
	return join(A, " && ")
}

func (O Or) String() string {
	if len(O) == 0 {
		return "false"
	}
	return join(O, " || ")
}

func (PriceRange) isExpr()        {}
func (KeyEquals) isExpr()         {}
func (DestinationEquals) isExpr() {}
func (PickupDate) isExpr()        {}
func (And) isExpr()               {}
func (Or) isExpr()                {}

func join(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e == nil {
			parts[i] = "true"
			continue
		}
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
