// internal/common/metrics/metrics.go
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CasesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqgen_cases_generated_total",
			Help: "Total number of test cases emitted by the generator",
		},
		[]string{"operation"},
	)

	CasesUnsupported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reqgen_cases_unsupported_total",
			Help: "Total number of operations written to the unsupported list",
		},
	)

	ResponsesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reqgen_responses_merged_total",
			Help: "Total number of reference responses folded into the history",
		},
	)

	CasesSplit = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqgen_cases_split_total",
			Help: "Generated cases routed to pending or resolved",
		},
		[]string{"state"},
	)

	CasesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqgen_cases_classified_total",
			Help: "Resolved cases per classification bucket",
		},
		[]string{"bucket"},
	)
)

// Split states.
const (
	StatePending  = "pending"
	StateResolved = "resolved"
)

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
