package domain

import (
	"strconv"
	"time"

	"github.com/openivms/telemetry-server/internal/constants"
)

// TelemetryRecord is one decoded row of the telemetry log, in the shape the
// retrieval endpoint serves. Records are immutable once appended.
type TelemetryRecord struct {
	Timestamp string  `json:"timestamp"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Speed     float64 `json:"speed"`
	Accel     float64 `json:"accel"`
}

// Time parses the record's server-assigned timestamp.
func (r TelemetryRecord) Time() (time.Time, error) {
	return time.Parse(constants.TimestampLayout, r.Timestamp)
}

// RawRecord is the write-side shape of a record. Numeric fields are carried
// verbatim as received; the store does not validate on write, validation is
// deferred entirely to read time.
type RawRecord struct {
	Timestamp string
	Latitude  string
	Longitude string
	Speed     string
	Accel     string
}

// Fields returns the record as a log row in fixed schema order.
func (r RawRecord) Fields() []string {
	return []string{r.Timestamp, r.Latitude, r.Longitude, r.Speed, r.Accel}
}

// DecodeRow decodes a stored log row into a TelemetryRecord. It reports false
// for rows with fewer than five fields or non-numeric numeric fields; callers
// skip such rows rather than aborting the scan.
func DecodeRow(row []string) (TelemetryRecord, bool) {
	if len(row) < constants.RecordFieldCount {
		return TelemetryRecord{}, false
	}

	lat, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return TelemetryRecord{}, false
	}
	lon, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return TelemetryRecord{}, false
	}
	speed, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return TelemetryRecord{}, false
	}
	accel, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return TelemetryRecord{}, false
	}

	return TelemetryRecord{
		Timestamp: row[0],
		Lat:       lat,
		Lon:       lon,
		Speed:     speed,
		Accel:     accel,
	}, true
}
