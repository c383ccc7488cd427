// Package route holds voyage route records and the read-only computations made
// on them: filtering, baseline comparison and the compliance balance
// calculation that seeds the ledger.
package route

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fueleu/compliance"
	"github.com/shopspring/decimal"
)

// Target2025 is the 2025 GHG intensity target, 2% below the 91.16 gCO₂e/MJ
// reference value.
const Target2025 = 89.3368

// EnergyPerTonne is the energy content, in MJ, used to convert a tonne of fuel.
const EnergyPerTonne = 41000

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrNoBaseline    = errors.New("no baseline route")
)

// Vessel types known to the dashboard.
const (
	Container   = "Container"
	BulkCarrier = "BulkCarrier"
	Tanker      = "Tanker"
	RoRo        = "RoRo"
)

// Fuel types known to the dashboard.
const (
	HFO = "HFO"
	LNG = "LNG"
	MGO = "MGO"
)

// Route is the yearly record of a ship on a route.
type Route struct {
	RouteID         string  `json:"routeId"`
	ShipID          string  `json:"shipId,omitempty"`
	VesselType      string  `json:"vesselType"`
	FuelType        string  `json:"fuelType"`
	Year            int     `json:"year"`
	GHGIntensity    float64 `json:"ghgIntensity"`    // gCO₂e/MJ
	FuelConsumption float64 `json:"fuelConsumption"` // tonnes
	Distance        float64 `json:"distance"`        // km
	TotalEmissions  float64 `json:"totalEmissions"`  // tonnes
	IsBaseline      bool    `json:"isBaseline,omitempty"`
}

// Ship returns the ship operating the route. Routes without a ship id are
// operated by a ship named after the route.
func (r Route) Ship() string {
	if r.ShipID != "" {
		return r.ShipID
	}
	return r.RouteID
}

// ComplianceBalance returns (target − intensity) × fuel × EnergyPerTonne.
// Decimal arithmetic is used so that the result does not depend on float
// rounding.
func (r Route) ComplianceBalance(target float64) compliance.CB {
	d := decimal.NewFromFloat(target).
		Sub(decimal.NewFromFloat(r.GHGIntensity)).
		Mul(decimal.NewFromFloat(r.FuelConsumption)).
		Mul(decimal.NewFromInt(EnergyPerTonne))
	return compliance.G(d)
}

// Filter selects routes. Zero fields match everything.
type Filter struct {
	VesselType string
	FuelType   string
	Year       int
}

// Match reports whether the route passes the filter.
func (f Filter) Match(r Route) bool {
	if f.VesselType != "" && f.VesselType != r.VesselType {
		return false
	}
	if f.FuelType != "" && f.FuelType != r.FuelType {
		return false
	}
	if f.Year != 0 && f.Year != r.Year {
		return false
	}
	return true
}

// Apply returns the matching routes, in order.
func (f Filter) Apply(routes []Route) []Route {
	var out []Route
	for _, r := range routes {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SetBaseline returns a copy of routes where id is the only baseline.
func SetBaseline(routes []Route, id string) ([]Route, error) {
	if !slices.ContainsFunc(routes, func(r Route) bool { return r.RouteID == id }) {
		return nil, fmt.Errorf("%w: %q", ErrRouteNotFound, id)
	}
	out := slices.Clone(routes)
	for i := range out {
		out[i].IsBaseline = out[i].RouteID == id
	}
	return out, nil
}

// Baseline returns the first baseline route.
func Baseline(routes []Route) (Route, bool) {
	i := slices.IndexFunc(routes, func(r Route) bool { return r.IsBaseline })
	if i < 0 {
		return Route{}, false
	}
	return routes[i], true
}

// Stats summarizes a set of routes.
type Stats struct {
	Count          int
	AvgIntensity   float64 // gCO₂e/MJ, zero when there are no routes
	TotalDistance  float64 // km
	TotalEmissions float64 // tonnes
}

// Summarize computes the statistics of routes.
func Summarize(routes []Route) Stats {
	s := Stats{Count: len(routes)}
	var intensity float64
	for _, r := range routes {
		intensity += r.GHGIntensity
		s.TotalDistance += r.Distance
		s.TotalEmissions += r.TotalEmissions
	}
	if s.Count > 0 {
		s.AvgIntensity = intensity / float64(s.Count)
	}
	return s
}

// ComplianceBalances computes the compliance balance of every ship and year
// found in routes, summing the routes of a ship within a year. Balances are
// returned in order of first appearance.
func ComplianceBalances(routes []Route, target float64) []compliance.Balance {
	type key struct {
		ship string
		year int
	}
	var out []compliance.Balance
	index := make(map[key]int)
	for _, r := range routes {
		k := key{r.Ship(), r.Year}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, compliance.Balance{Ship: k.ship, Year: k.year})
		}
		out[i].Value = out[i].Value.Add(r.ComplianceBalance(target))
	}
	return out
}

// Seed seeds the ledger with the compliance balances computed from routes. It
// stops at the first error, which leaves the balances seeded so far in place.
func Seed(l *compliance.Ledger, routes []Route, target float64) ([]compliance.Balance, error) {
	balances := ComplianceBalances(routes, target)
	for i, b := range balances {
		if err := l.Seed(b.Ship, b.Year, b.Value); err != nil {
			return balances[:i], fmt.Errorf("could not seed %s %d: %w", b.Ship, b.Year, err)
		}
	}
	return balances, nil
}
