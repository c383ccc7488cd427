package renderer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var gfm = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts a markdown report to an HTML fragment. Tables are rendered as
// GitHub flavored markdown tables.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := gfm.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
