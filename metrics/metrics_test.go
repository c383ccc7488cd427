package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fueleu/compliance"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	rec := New()
	l := compliance.NewLedger(compliance.WithObserver(rec))
	require.NoError(t, l.Seed("A", 2025, compliance.G(300)))
	require.NoError(t, l.Seed("B", 2025, compliance.G(-100)))

	b := compliance.NewBanking(l)
	_, err := b.Bank("A", compliance.G(100))
	require.NoError(t, err)
	_, err = b.Bank("B", compliance.G(10))
	require.ErrorIs(t, err, compliance.ErrNoSurplusToBank)

	p := compliance.NewPooling(l)
	prop, err := p.Propose("A", "B")
	require.NoError(t, err)
	_, err = p.Allocate(prop)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.operations.WithLabelValues("seed", resultCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("bank", resultCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("bank", resultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.rejections.WithLabelValues("bank", "no_surplus_to_bank")))
	assert.Equal(t, 100.0, testutil.ToFloat64(rec.moved.WithLabelValues("bank")))
	assert.Equal(t, 100.0, testutil.ToFloat64(rec.moved.WithLabelValues("pool")))

	rec.ObserveLedger(l)
	assert.Equal(t, 100.0, testutil.ToFloat64(rec.balance.WithLabelValues("A", "2025")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.balance.WithLabelValues("B", "2025")))
	assert.Equal(t, 100.0, testutil.ToFloat64(rec.banked.WithLabelValues("A")))
}

func TestWriteTextfile(t *testing.T) {
	rec := New()
	l := compliance.NewLedger(compliance.WithObserver(rec))
	require.NoError(t, l.Seed("A", 2025, compliance.G(-5)))
	rec.ObserveLedger(l)

	path := filepath.Join(t.TempDir(), "cbx.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cbx_balance_gco2eq{ship="A",year="2025"} -5`)
	assert.Contains(t, string(data), `cbx_operations_total{op="seed",result="committed"} 1`)
}
