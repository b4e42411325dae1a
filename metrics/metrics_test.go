package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(false)

	m.AddRows(5)
	m.AddDroppedRows(2)
	m.ObserveGroup("simple", 4)
	m.ObserveGroup("simple", 3)
	m.ObserveGroup("complex", 10)
	m.RowError("relation_not_established")
	m.UnmatchedRule()
	m.ObserveRun(time.Now())

	assert.Equal(t, 5.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.droppedRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.groups.WithLabelValues("simple")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.triples.WithLabelValues("simple")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.triples.WithLabelValues("complex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rowErrors.WithLabelValues("relation_not_established")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unmatched))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.AddRows(1)
		m.AddDroppedRows(1)
		m.ObserveGroup("bert", 1)
		m.RowError("x")
		m.UnmatchedRule()
		m.ObserveRun(time.Now())
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New(true)
	m.AddRows(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "semevents_rows_total 3")
	assert.Contains(t, string(body), "go_goroutines")
}
