package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFile(t *testing.T) {
	tests := []struct {
		name      string
		converted int
		failed    int
		status    string
	}{
		{"all converted", 3, 0, StatusConverted},
		{"some failed", 2, 1, StatusPartial},
		{"all failed", 0, 2, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := testutil.ToFloat64(filesTotal.WithLabelValues(tt.status))
			ok := testutil.ToFloat64(declarationsTotal.WithLabelValues(OutcomeConverted))
			bad := testutil.ToFloat64(declarationsTotal.WithLabelValues(OutcomeFailed))

			RecordFile(tt.converted, tt.failed, 5*time.Millisecond)

			assert.Equal(t, files+1, testutil.ToFloat64(filesTotal.WithLabelValues(tt.status)))
			assert.Equal(t, ok+float64(tt.converted), testutil.ToFloat64(declarationsTotal.WithLabelValues(OutcomeConverted)))
			assert.Equal(t, bad+float64(tt.failed), testutil.ToFloat64(declarationsTotal.WithLabelValues(OutcomeFailed)))
		})
	}
}

func TestRecordFileErrorAndCacheHit(t *testing.T) {
	failed := testutil.ToFloat64(filesTotal.WithLabelValues(StatusFailed))
	cached := testutil.ToFloat64(filesTotal.WithLabelValues(StatusCached))

	RecordFileError()
	RecordCacheHit()
	RecordCacheHit()

	assert.Equal(t, failed+1, testutil.ToFloat64(filesTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, cached+2, testutil.ToFloat64(filesTotal.WithLabelValues(StatusCached)))
}
