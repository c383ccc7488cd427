package renderer

import (
	"bytes"
	"fmt"

	"github.com/fueleu/compliance/route"
	md "github.com/nao1215/markdown"
)

// RoutesMarkdown renders routes with their compliance balance against target,
// followed by their statistics.
func RoutesMarkdown(routes []route.Route, target float64) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Routes")
	if len(routes) == 0 {
		doc.PlainText("No routes.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Route", "Vessel", "Fuel", "Year", "GHG Intensity", "Fuel (t)", "Distance (km)", "CB"},
		Rows:   [][]string{},
	}
	for _, r := range routes {
		id := r.RouteID
		if r.IsBaseline {
			id = md.Bold(id + " (baseline)")
		}
		table.Rows = append(table.Rows, []string{
			id,
			r.VesselType,
			r.FuelType,
			fmt.Sprint(r.Year),
			fmt.Sprintf("%.4f", r.GHGIntensity),
			fmt.Sprintf("%.0f", r.FuelConsumption),
			fmt.Sprintf("%.0f", r.Distance),
			r.ComplianceBalance(target).SignedString(),
		})
	}
	doc.Table(table)

	s := route.Summarize(routes)
	doc.H2("Statistics")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", ""},
		Rows: [][]string{
			{"Routes", fmt.Sprint(s.Count)},
			{"Average intensity", fmt.Sprintf("%.4f gCO₂e/MJ", s.AvgIntensity)},
			{"Total distance", fmt.Sprintf("%.0f km", s.TotalDistance)},
			{"Total emissions", fmt.Sprintf("%.0f t", s.TotalEmissions)},
		},
	})
	return doc.String()
}

// CompareMarkdown renders the comparison of routes with their baseline.
func CompareMarkdown(cs []route.Comparison, target float64) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Baseline Comparison")
	if len(cs) == 0 {
		doc.PlainText("Nothing to compare.")
		return doc.String()
	}
	doc.PlainText(fmt.Sprintf("Baseline %s at %.4f gCO₂e/MJ, target %.4f gCO₂e/MJ.",
		cs[0].Baseline.RouteID, cs[0].Baseline.GHGIntensity, target))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Route", "GHG Intensity", "Diff", "Compliant"},
		Rows:      [][]string{},
	}
	for _, c := range cs {
		ok := "✅"
		if !c.Compliant {
			ok = "❌"
		}
		table.Rows = append(table.Rows, []string{
			c.Route.RouteID,
			fmt.Sprintf("%.4f", c.Route.GHGIntensity),
			fmt.Sprintf("%+.2f%%", c.PercentDiff),
			ok,
		})
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d of %d routes compliant.", route.CompliantCount(cs), len(cs)))
	return doc.String()
}
