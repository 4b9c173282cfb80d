package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIncrement(t *testing.T) {
	before := testutil.ToFloat64(incrementsCounter.WithLabelValues("@metrics_test_"))
	RecordIncrement("@metrics_test_")
	RecordIncrement("@metrics_test_")
	after := testutil.ToFloat64(incrementsCounter.WithLabelValues("@metrics_test_"))
	assert.Equal(t, before+2, after)
}

func TestRecordStorageError(t *testing.T) {
	before := testutil.ToFloat64(storageErrorCounter.WithLabelValues("@metrics_test_", KindWrite))
	RecordStorageError("@metrics_test_", KindWrite)
	assert.Equal(t, before+1, testutil.ToFloat64(storageErrorCounter.WithLabelValues("@metrics_test_", KindWrite)))
}

func TestSetDegraded(t *testing.T) {
	SetDegraded("@metrics_test_", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(degradedGauge.WithLabelValues("@metrics_test_")))
	SetDegraded("@metrics_test_", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(degradedGauge.WithLabelValues("@metrics_test_")))
}

func TestRecordTranscript(t *testing.T) {
	before := testutil.ToFloat64(transcriptsCounter.WithLabelValues(OutcomeMatched))
	RecordTranscript(OutcomeMatched)
	assert.Equal(t, before+1, testutil.ToFloat64(transcriptsCounter.WithLabelValues(OutcomeMatched)))
}

func TestObserveTranscribe(t *testing.T) {
	ObserveTranscribe(150 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(transcribeDuration))
}

func TestServe_EmptyAddrDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Serve(ctx, ""))
}
