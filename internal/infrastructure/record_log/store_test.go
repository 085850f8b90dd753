package record_log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openivms/telemetry-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "ivms_data.csv"))
	require.NoError(t, err)
	return store
}

func testRecord(seq int) domain.RawRecord {
	return domain.RawRecord{
		Timestamp: fmt.Sprintf("2026-01-02T10:30:%02d.000000+05:30", seq%60),
		Latitude:  "12.9716",
		Longitude: "77.5946",
		Speed:     fmt.Sprintf("%d", 40+seq),
		Accel:     "1.5",
	}
}

func TestNewStore_WritesHeaderOnce(t *testing.T) {
	store := newTestStore(t)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "timestamp,latitude,longitude,speed,accel\n", string(raw))
}

func TestNewStore_IdempotentInit(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(testRecord(1)))
	require.NoError(t, store.Append(testRecord(2)))

	// Re-running initialization against an existing log must not alter it.
	again, err := NewStore(store.Path())
	require.NoError(t, err)

	records, err := again.Tail(50)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 41.0, records[0].Speed)
	assert.Equal(t, 42.0, records[1].Speed)
}

func TestStore_TailPreservesAppendOrder(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(testRecord(i)))
	}

	records, err := store.Tail(50)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i].Timestamp, records[i-1].Timestamp)
	}
}

func TestStore_TailBoundsWindow(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 60; i++ {
		require.NoError(t, store.Append(testRecord(i)))
	}

	records, err := store.Tail(50)
	require.NoError(t, err)
	require.Len(t, records, 50)
	// Oldest ten records fall out of the window.
	assert.Equal(t, 50.0, records[0].Speed)
	assert.Equal(t, 99.0, records[len(records)-1].Speed)
}

func TestStore_SkipsMalformedLines(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(testRecord(1)))

	f, err := os.OpenFile(store.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2026-01-02T10:31:00.000000+05:30,12.97\n")
	require.NoError(t, err)
	_, err = f.WriteString("2026-01-02T10:31:01.000000+05:30,abc,77.59,50,1.5\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, store.Append(testRecord(2)))

	records, err := store.Tail(50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 41.0, records[0].Speed)
	assert.Equal(t, 42.0, records[1].Speed)
}

func TestStore_TruncatedTrailingLineIsDropped(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(testRecord(1)))

	// Simulate a crash mid-append: no trailing newline, missing fields.
	f, err := os.OpenFile(store.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2026-01-02T10:32:00.000000+05:30,12.97,77.59")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := store.Tail(50)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestStore_TailMissingFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.Remove(store.Path()))

	records, err := store.Tail(50)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_AppendDoesNotValidate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(domain.RawRecord{
		Timestamp: "2026-01-02T10:33:00.000000+05:30",
	}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "2026-01-02T10:33:00.000000+05:30,,,,\n"))

	// The empty-field row decodes as malformed and is skipped on read.
	records, err := store.Tail(50)
	require.NoError(t, err)
	assert.Empty(t, records)
}
