package renderer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fueleu/compliance"
	md "github.com/nao1215/markdown"
)

// PoolMarkdown renders a pool proposal with its allocation. Rule violations
// found in err are listed after the table.
func PoolMarkdown(prop compliance.Proposal, err error) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Pool %d", prop.Year))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ship", "Before", "After", "Change"},
		Rows:      [][]string{},
	}
	improved := 0
	for _, m := range prop.Members {
		table.Rows = append(table.Rows, []string{
			m.Ship,
			m.Before.SignedString(),
			m.After.SignedString(),
			m.After.Sub(m.Before).SignedString(),
		})
		if m.Before.IsNegative() && m.After.GreaterThan(m.Before) {
			improved++
		}
	}
	doc.Table(table)

	valid := "yes"
	if !prop.Valid() {
		valid = "no"
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", ""},
		Rows: [][]string{
			{"Members", fmt.Sprint(len(prop.Members))},
			{"Pool sum", prop.Total().SignedString()},
			{"Valid", valid},
			{"Deficits improved", fmt.Sprint(improved)},
		},
	})

	var pv *compliance.PoolRuleViolation
	if errors.As(err, &pv) {
		doc.H2("Rule violations")
		var items []string
		for _, v := range pv.Violations {
			items = append(items, v.String())
		}
		doc.OrderedList(items...)
	}
	return doc.String()
}

// AllocationMarkdown renders committed pool allocations.
func AllocationMarkdown(allocs []compliance.Allocation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	if len(allocs) == 0 {
		doc.PlainText("Nothing allocated.")
		return doc.String()
	}
	doc.H1(fmt.Sprintf("Pool %s", allocs[0].Pool))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Ship", "Before", "After", "Transaction"},
		Rows:      [][]string{},
	}
	for _, a := range allocs {
		table.Rows = append(table.Rows, []string{a.Ship, a.Before.SignedString(), a.After.SignedString(), shortID(a.TxID)})
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d deficits improved.", compliance.Improved(allocs)))
	return doc.String()
}
