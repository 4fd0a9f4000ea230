package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-tourforms/internal/metrics"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	rec.SubmissionRecorded("lead", "blocked")
	rec.SubmissionRecorded("lead", "saved")
	rec.SubmissionRecorded("lead", "saved")
	rec.OptionAdded("associate", "associateType")
	rec.ItineraryMoved("package")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Submissions.WithLabelValues("lead", "saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Submissions.WithLabelValues("lead", "blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.OptionsAdded.WithLabelValues("associate", "associateType")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ItineraryMove.WithLabelValues("package")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 3)
}
