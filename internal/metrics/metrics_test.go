package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveResolution(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewResolutions(reg)
	r.ObserveResolution("answer_key", time.Millisecond)
	r.ObserveResolution("str_slice", time.Millisecond)
	r.ObserveResolution("str_slice", 2*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.total.WithLabelValues("answer_key")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.total.WithLabelValues("str_slice")))

	n, err := testutil.GatherAndCount(reg, "quizsense_resolution_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
