package alerting

import (
	"testing"
	"time"

	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordAt(ts time.Time, speed, accel float64) domain.TelemetryRecord {
	return domain.TelemetryRecord{
		Timestamp: ts.In(constants.TimestampZone).Format(constants.TimestampLayout),
		Lat:       12.9716,
		Lon:       77.5946,
		Speed:     speed,
		Accel:     accel,
	}
}

func TestEvaluate_Overspeeding(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 85, 0), ts)
	assert.Equal(t, []string{"Overspeeding detected (>80 km/h)"}, alerts)
}

func TestEvaluate_HarshAcceleration(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 10, 6), ts)
	assert.Equal(t, []string{"Harsh Acceleration"}, alerts)
}

func TestEvaluate_HarshBraking(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 10, -5), ts)
	assert.Equal(t, []string{"Harsh Braking"}, alerts)
}

func TestEvaluate_StaleData(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 10, 0), ts.Add(15*time.Second))
	assert.Equal(t, []string{"No data received in last 10 seconds"}, alerts)
}

func TestEvaluate_NoAlerts(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 10, 0), ts.Add(1*time.Second))
	assert.Empty(t, alerts)
}

func TestEvaluate_AllMatchingRulesReportedInOrder(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 30, 0, 0, constants.TimestampZone)
	alerts := Evaluate(recordAt(ts, 95, 7), ts.Add(20*time.Second))
	require.Equal(t, []string{
		"Overspeeding detected (>80 km/h)",
		"Harsh Acceleration",
		"No data received in last 10 seconds",
	}, alerts)
}

func TestEvaluate_UnparseableTimestampNeverStale(t *testing.T) {
	rec := domain.TelemetryRecord{Timestamp: "not-a-timestamp", Speed: 10}
	alerts := Evaluate(rec, time.Now())
	assert.Empty(t, alerts)
}
