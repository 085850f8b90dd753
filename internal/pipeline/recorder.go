package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/domain"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Recorder is the single write path into the record store. Both the HTTP
// ingestion endpoint and the MQTT ingest bridge go through it, so every record
// gets the same server-assigned timestamp convention and the same lenient
// payload handling.
type Recorder struct {
	store  *record_log.Store
	logger *log.Logger
	zone   *time.Location
	now    func() time.Time
}

func NewRecorder(store *record_log.Store, options ...func(*Recorder)) *Recorder {
	r := &Recorder{
		store:  store,
		logger: log.MustNewECSLogger(),
		zone:   constants.TimestampZone,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// WithClock overrides the wall clock. Used by tests.
func WithClock(now func() time.Time) func(*Recorder) {
	return func(r *Recorder) { r.now = now }
}

// WithZone overrides the timestamp zone offset.
func WithZone(zone *time.Location) func(*Recorder) {
	return func(r *Recorder) { r.zone = zone }
}

// Record assigns the current server time in the fixed zone offset, carries the
// payload's latitude/longitude/speed/accel values through verbatim (absent or
// null fields become empty, not a rejection), and appends exactly one durable
// record. The client-sent timestamp, if any, is ignored.
func (r *Recorder) Record(payload map[string]any) (domain.RawRecord, error) {
	rec := domain.RawRecord{
		Timestamp: r.now().In(r.zone).Format(constants.TimestampLayout),
		Latitude:  fieldString(payload["latitude"]),
		Longitude: fieldString(payload["longitude"]),
		Speed:     fieldString(payload["speed"]),
		Accel:     fieldString(payload["accel"]),
	}

	if err := r.store.Append(rec); err != nil {
		return domain.RawRecord{}, errors.Wrap(err, "failed to persist telemetry record")
	}

	r.logger.Info("Recorded telemetry report",
		zap.String("timestamp", rec.Timestamp),
		zap.String("latitude", rec.Latitude),
		zap.String("longitude", rec.Longitude),
		zap.String("speed", rec.Speed),
		zap.String("accel", rec.Accel),
	)
	return rec, nil
}

// fieldString renders one payload value as a log field. Device firmware varies,
// so anything is accepted: numbers keep their shortest representation, strings
// pass through, absent/null values become empty.
func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
