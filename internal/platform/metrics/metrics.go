// Package metrics exposes Prometheus counters for the digest delivery
// pipeline. Counters are registered against an injected registerer so
// tests can use an isolated registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments used across the pipeline.
type Metrics struct {
	DigestsDelivered   prometheus.Counter
	DigestsNoPapers    prometheus.Counter
	DigestsSendFailed  prometheus.Counter
	PapersFetched      prometheus.Counter
	PapersInserted     prometheus.Counter
	SummariesGenerated prometheus.Counter
	SummaryFallbacks   prometheus.Counter
}

// New registers the pipeline counters with the given registerer and
// returns them. Passing prometheus.DefaultRegisterer wires them into the
// standard /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DigestsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_digests_delivered_total",
			Help: "Number of digest emails successfully delivered.",
		}),
		DigestsNoPapers: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_digests_no_papers_total",
			Help: "Number of digest runs that found no papers to send.",
		}),
		DigestsSendFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_digests_send_failed_total",
			Help: "Number of digest runs whose email send failed.",
		}),
		PapersFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_papers_fetched_total",
			Help: "Number of papers fetched from the upstream feed.",
		}),
		PapersInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_papers_inserted_total",
			Help: "Number of newly inserted papers, after URL deduplication.",
		}),
		SummariesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_summaries_generated_total",
			Help: "Number of synopses generated by the language model.",
		}),
		SummaryFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperboy_summary_fallbacks_total",
			Help: "Number of synopses produced by the deterministic fallback.",
		}),
	}
}
