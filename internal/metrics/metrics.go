package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the console's counters. It satisfies session.Observer.
type Recorder struct {
	Submissions   *prometheus.CounterVec
	OptionsAdded  *prometheus.CounterVec
	ItineraryMove *prometheus.CounterVec
}

// New registers the counters on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tourdesk_submissions_total",
				Help: "Form submissions by form and outcome (saved, blocked, failed)",
			},
			[]string{"form", "outcome"},
		),
		OptionsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tourdesk_options_added_total",
				Help: "Options created inline, by form and field",
			},
			[]string{"form", "field"},
		),
		ItineraryMove: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tourdesk_itinerary_moves_total",
				Help: "Locations moved between the candidate pool and the stay list",
			},
			[]string{"form"},
		),
	}
}

func (r *Recorder) SubmissionRecorded(form, outcome string) {
	r.Submissions.WithLabelValues(form, outcome).Inc()
}

func (r *Recorder) OptionAdded(form, field string) {
	r.OptionsAdded.WithLabelValues(form, field).Inc()
}

func (r *Recorder) ItineraryMoved(form string) {
	r.ItineraryMove.WithLabelValues(form).Inc()
}
