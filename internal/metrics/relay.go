package metrics

import (
	"github.com/reliefvalve/prv/internal/observability"
	"github.com/reliefvalve/prv/internal/relay"
)

// Relay metrics following Prometheus conventions
const (
	LinesReadTotal      = "relay_lines_read_total"
	LinesAdmittedTotal  = "relay_lines_admitted_total"
	LinesDiscardedTotal = "relay_lines_discarded_total"
	WindowRolloverTotal = "relay_window_rollovers_total"

	// Config gauges, set once per run
	LimitGauge  = "relay_limit"
	WindowGauge = "relay_window_seconds"
)

// RelayObserver emits relay events as telemetry counters. It does nothing
// while no telemetry system is installed.
type RelayObserver struct{}

var _ relay.Observer = RelayObserver{}

func (RelayObserver) LineRead()      { count(LinesReadTotal) }
func (RelayObserver) WindowRolled()  { count(WindowRolloverTotal) }
func (RelayObserver) LineAdmitted()  { count(LinesAdmittedTotal) }
func (RelayObserver) LineDiscarded() { count(LinesDiscardedTotal) }

// RecordConfig publishes the effective limit and window length.
func RecordConfig(cfg relay.Config) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(LimitGauge, float64(cfg.Limit), nil)
		_ = observability.TelemetrySystem.Gauge(WindowGauge, float64(cfg.Window), nil)
	}
}

func count(name string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(name, 1, nil)
	}
}
