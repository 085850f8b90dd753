package alerting

import (
	"time"

	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/domain"
)

// Rule is one derived-alert condition over the newest record and the gap
// between its timestamp and the caller's clock.
type Rule struct {
	Message string
	Match   func(rec domain.TelemetryRecord, gap time.Duration) bool
}

// defaultRules are evaluated in fixed order; every matching rule is reported,
// not just the first.
var defaultRules = []Rule{
	{
		Message: "Overspeeding detected (>80 km/h)",
		Match: func(rec domain.TelemetryRecord, _ time.Duration) bool {
			return rec.Speed > constants.OverspeedThresholdKmh
		},
	},
	{
		Message: "Harsh Acceleration",
		Match: func(rec domain.TelemetryRecord, _ time.Duration) bool {
			return rec.Accel > constants.HarshAccelThresholdMs2
		},
	},
	{
		Message: "Harsh Braking",
		Match: func(rec domain.TelemetryRecord, _ time.Duration) bool {
			return rec.Accel < constants.HarshBrakeThresholdMs2
		},
	},
	{
		Message: "No data received in last 10 seconds",
		Match: func(_ domain.TelemetryRecord, gap time.Duration) bool {
			return gap > constants.StaleAfter
		},
	},
}

// Evaluate derives the alert messages for the newest record in a retrieval
// window. It is a pure function: nothing is persisted and every call is
// independent. A record whose timestamp cannot be parsed never reports stale.
func Evaluate(latest domain.TelemetryRecord, now time.Time) []string {
	var gap time.Duration
	if t, err := latest.Time(); err == nil {
		gap = now.Sub(t)
	}

	alerts := make([]string, 0, len(defaultRules))
	for _, rule := range defaultRules {
		if rule.Match(latest, gap) {
			alerts = append(alerts, rule.Message)
		}
	}
	return alerts
}
