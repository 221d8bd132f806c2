package promadapters_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/promadapters"
)

func Test_Collector_IncrementCounter_AccumulatesPerLabelSet(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewCollector(promadapters.WithRegisterer(registry))

	labels := map[string]string{"command_type": "IssueBookCopy", "status": "success"}

	// act
	collector.IncrementCounter("circulation_commands_total", labels)
	collector.IncrementCounter("circulation_commands_total", labels)
	collector.IncrementCounter("circulation_commands_total", map[string]string{"command_type": "ReturnBookCopy", "status": "error"})

	// assert
	expected := `
# HELP circulation_commands_total Event counts recorded by the circulation engine
# TYPE circulation_commands_total counter
circulation_commands_total{command_type="IssueBookCopy",status="success"} 2
circulation_commands_total{command_type="ReturnBookCopy",status="error"} 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "circulation_commands_total")
	assert.NoError(t, err, "Should expose both counter series with accumulated values")
}

func Test_Collector_IncrementCounter_PadsMissingLabelKeys(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewCollector(promadapters.WithRegisterer(registry))

	// The first observation fixes the label-key schema
	collector.IncrementCounter("circulation_events_total", map[string]string{"command_type": "RenewLoan", "status": "success"})

	// act: a later observation missing the status key must not panic
	collector.IncrementCounter("circulation_events_total", map[string]string{"command_type": "RenewLoan"})

	// assert
	expected := `
# HELP circulation_events_total Event counts recorded by the circulation engine
# TYPE circulation_events_total counter
circulation_events_total{command_type="RenewLoan",status="success"} 1
circulation_events_total{command_type="RenewLoan",status=""} 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "circulation_events_total")
	assert.NoError(t, err, "Should report an empty value for the missing schema key")
}

func Test_Collector_RecordDuration_ObservesSeconds(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewCollector(promadapters.WithRegisterer(registry))

	// act
	collector.RecordDuration("circulation_handle_duration_seconds", 250*time.Millisecond, map[string]string{"query_type": "OverdueLoans"})

	// assert
	expected := `
# HELP circulation_handle_duration_seconds Duration observations recorded by the circulation engine
# TYPE circulation_handle_duration_seconds histogram
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.005"} 0
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.01"} 0
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.025"} 0
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.05"} 0
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.1"} 0
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.25"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="0.5"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="1"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="2.5"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="5"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="10"} 1
circulation_handle_duration_seconds_bucket{query_type="OverdueLoans",le="+Inf"} 1
circulation_handle_duration_seconds_sum{query_type="OverdueLoans"} 0.25
circulation_handle_duration_seconds_count{query_type="OverdueLoans"} 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "circulation_handle_duration_seconds")
	assert.NoError(t, err, "Should observe the duration in seconds on the default buckets")
}

func Test_Collector_RecordValue_LastWriteWins(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewCollector(promadapters.WithRegisterer(registry))

	// act
	collector.RecordValue("circulation_open_loans", 3, map[string]string{"membership_class": "student"})
	collector.RecordValue("circulation_open_loans", 7, map[string]string{"membership_class": "student"})

	// assert
	expected := `
# HELP circulation_open_loans Point-in-time values recorded by the circulation engine
# TYPE circulation_open_loans gauge
circulation_open_loans{membership_class="student"} 7
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "circulation_open_loans")
	assert.NoError(t, err, "Should expose the latest gauge value")
}

func Test_Collector_SeparateMetricNames_GetSeparateVectors(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewCollector(promadapters.WithRegisterer(registry))

	// act
	collector.IncrementCounter("circulation_issues_total", map[string]string{"status": "success"})
	collector.IncrementCounter("circulation_returns_total", map[string]string{"status": "success"})
	collector.RecordDuration("circulation_issue_duration_seconds", time.Millisecond, map[string]string{"status": "success"})

	// assert
	count, err := testutil.GatherAndCount(registry,
		"circulation_issues_total", "circulation_returns_total", "circulation_issue_duration_seconds")
	assert.NoError(t, err, "Should gather all registered metric families")
	assert.Equal(t, 3, count, "Should expose one series per metric name")
}
