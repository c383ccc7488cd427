package cmd

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	global := flag.NewFlagSet("cbx", flag.ContinueOnError)
	global.String("ledger-file", "", "")
	global.Bool("verbose", false, "")

	c := Completion(global)
	assert.Contains(t, c.Flags, "ledger-file")
	assert.Empty(t, c.Flags["verbose"].Predict(""), "boolean flags take no value")

	for _, name := range []string{"seed", "bank", "apply", "pool", "balance", "history", "report", "export", "routes", "fmt", "topic"} {
		assert.Contains(t, c.Sub, name)
	}
	pool := c.Sub["pool"]
	require.NotNil(t, pool)
	assert.Contains(t, pool.Flags, "dry-run")
	assert.Contains(t, pool.Flags, "alloc")

	assert.Equal(t, []string{"xlsx", "pdf"}, c.Sub["export"].Flags["f"].Predict(""))
	require.NotNil(t, c.Sub["topic"].Args)
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "banking")
}
