package renderer

import (
	"bytes"
	"fmt"

	"github.com/fueleu/compliance"
	md "github.com/nao1215/markdown"
)

// FleetMarkdown renders the fleet balances of a period.
func FleetMarkdown(r *compliance.FleetReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if r.Year == 0 {
		doc.H1("Fleet Compliance Balance")
	} else {
		doc.H1(fmt.Sprintf("Fleet Compliance Balance %d", r.Year))
	}
	if len(r.Rows) == 0 {
		doc.PlainText("No ships.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Ship", "Year", "CB", "Status", "Banked"},
		Rows:   [][]string{},
	}
	for _, row := range r.Rows {
		table.Rows = append(table.Rows, []string{
			row.Ship,
			fmt.Sprint(row.Year),
			row.Value.SignedString(),
			row.Status.String(),
			row.Banked.String(),
		})
	}
	doc.Table(table)

	doc.H2("Totals")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", "CB"},
		Rows: [][]string{
			{fmt.Sprintf("Surplus (%d ships)", r.Count(compliance.Surplus)), r.Surplus.String()},
			{fmt.Sprintf("Deficit (%d ships)", r.Count(compliance.Deficit)), r.Deficit.String()},
			{md.Bold("Net"), md.Bold(r.Net.SignedString())},
			{"Banked", r.Banked.String()},
		},
	})
	return doc.String()
}

// ShipMarkdown renders a ship's periods, bank and history.
func ShipMarkdown(r *compliance.ShipReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Ship %s", r.Ship))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Year", "CB", "Status"},
		Rows:      [][]string{},
	}
	for _, b := range r.Balances {
		table.Rows = append(table.Rows, []string{fmt.Sprint(b.Year), b.Value.SignedString(), b.Status().String()})
	}
	doc.Table(table)

	doc.H2("Bank")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", "CB"},
		Rows: [][]string{
			{"Banked", r.TotalBank.String()},
			{"Applied", r.TotalUsed.String()},
			{md.Bold("Available"), md.Bold(r.Banked.String())},
			{"Pooled", r.Pooled.SignedString()},
		},
	})

	doc.H2("History")
	historyTable(doc, r.History)
	return doc.String()
}
