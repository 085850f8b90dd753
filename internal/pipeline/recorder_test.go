package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T, now time.Time) (*Recorder, *record_log.Store) {
	t.Helper()
	store, err := record_log.NewStore(filepath.Join(t.TempDir(), "ivms_data.csv"))
	require.NoError(t, err)
	return NewRecorder(store, WithClock(func() time.Time { return now })), store
}

func TestRecorder_AssignsServerTimestampInFixedOffset(t *testing.T) {
	now := time.Date(2026, 1, 2, 5, 0, 0, 123456000, time.UTC)
	recorder, _ := newTestRecorder(t, now)

	rec, err := recorder.Record(map[string]any{
		"latitude":  12.9716,
		"longitude": 77.5946,
		"speed":     55.5,
		"accel":     1.25,
		// a client-sent timestamp is ignored
		"timestamp": "1999-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T10:30:00.123456+05:30", rec.Timestamp)
	assert.Equal(t, "12.9716", rec.Latitude)
	assert.Equal(t, "77.5946", rec.Longitude)
	assert.Equal(t, "55.5", rec.Speed)
	assert.Equal(t, "1.25", rec.Accel)
}

func TestRecorder_AbsentFieldsPassThroughEmpty(t *testing.T) {
	now := time.Date(2026, 1, 2, 5, 0, 0, 0, time.UTC)
	recorder, store := newTestRecorder(t, now)

	_, err := recorder.Record(map[string]any{"speed": 40.0})
	require.NoError(t, err)

	raw, rErr := os.ReadFile(store.Path())
	require.NoError(t, rErr)
	assert.True(t, strings.HasSuffix(string(raw), ",,,40,\n"))

	// The partially-empty row is stored but does not survive read-side decode.
	records, tErr := store.Tail(50)
	require.NoError(t, tErr)
	assert.Empty(t, records)
}

func TestRecorder_NonNumericValuesAreStoredVerbatim(t *testing.T) {
	now := time.Date(2026, 1, 2, 5, 0, 0, 0, time.UTC)
	recorder, store := newTestRecorder(t, now)

	rec, err := recorder.Record(map[string]any{
		"latitude":  "not-a-number",
		"longitude": "77.5946",
		"speed":     true,
		"accel":     nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "not-a-number", rec.Latitude)
	assert.Equal(t, "77.5946", rec.Longitude)
	assert.Equal(t, "true", rec.Speed)
	assert.Equal(t, "", rec.Accel)

	records, tErr := store.Tail(50)
	require.NoError(t, tErr)
	assert.Empty(t, records)
}

func TestRecorder_SequentialTimestampsNonDecreasing(t *testing.T) {
	store, err := record_log.NewStore(filepath.Join(t.TempDir(), "ivms_data.csv"))
	require.NoError(t, err)
	recorder := NewRecorder(store)

	for i := 0; i < 3; i++ {
		_, rErr := recorder.Record(map[string]any{
			"latitude": 1.0, "longitude": 2.0, "speed": 3.0, "accel": 4.0,
		})
		require.NoError(t, rErr)
	}

	records, tErr := store.Tail(50)
	require.NoError(t, tErr)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i].Timestamp, records[i-1].Timestamp)
	}
}
