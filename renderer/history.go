// Package renderer renders compliance reports as markdown.
package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fueleu/compliance"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders transactions, in the given order, as a table.
func HistoryMarkdown(title string, txs []compliance.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	historyTable(doc, txs)
	return doc.String()
}

func historyTable(doc *md.Markdown, txs []compliance.Transaction) {
	if len(txs) == 0 {
		doc.PlainText("No transactions.")
		return
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Seq", "Time", "Ship", "Kind", "Amount", "Before", "After", "Pool"},
		Rows:   [][]string{},
	}
	for _, tx := range txs {
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(tx.Seq),
			tx.Time.UTC().Format(time.DateTime),
			tx.Ship,
			string(tx.Kind),
			tx.Amount.Number(),
			tx.Before.Number(),
			tx.After.Number(),
			shortID(tx.Pool),
		})
	}
	doc.Table(table)
}

// shortID keeps the first block of a UUID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
