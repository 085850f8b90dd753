package constants

import "time"

const (
	ServerDefaultHTTPPort       = 5000
	ServerDefaultMonitoringPort = 6060
)

const (
	DefaultHTTPRequestTimeout = 10
	GraceWaitPeriod           = 10 * time.Second
)

const (
	// RetrievalWindow is the maximum number of records returned by the
	// latest-records endpoint.
	RetrievalWindow = 50

	// RecordFieldCount is the fixed per-line schema width of the telemetry log.
	RecordFieldCount = 5

	// TimestampLayout formats server-assigned record timestamps as ISO-8601
	// with microsecond precision and an explicit zone offset.
	TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

	// StaleAfter is the gap between the newest record and the caller's clock
	// beyond which the data is reported stale.
	StaleAfter = 10 * time.Second
)

// Alert thresholds. Speed is km/h, acceleration is m/s².
const (
	OverspeedThresholdKmh  = 80.0
	HarshAccelThresholdMs2 = 5.0
	HarshBrakeThresholdMs2 = -4.0
)

// TimestampZone is the fixed UTC+5:30 offset record timestamps are assigned in.
var TimestampZone = time.FixedZone("UTC+05:30", 5*3600+30*60)

const (
	MqttDefaultWriteTimeout         = 10 * time.Second
	MqttDefaultKeepAlive            = 30 * time.Second
	MqttDefaultPingTimeout          = 5 * time.Second
	MqttDefaultMaxReconnectInterval = 30 * time.Second
	MqttDefaultConnectTimeout       = 10 * time.Second
	MqttDefaultConnectRetryInterval = 10 * time.Second
	MqttDefaultTelemetryTopic       = "ivms/telemetry"
)
