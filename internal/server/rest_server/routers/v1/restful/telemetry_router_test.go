package restful

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/domain"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/openivms/telemetry-server/internal/pipeline"
	"github.com/openivms/telemetry-server/internal/server/rest_server/services/v1/restful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "MY_SECRET_KEY_123"

func newTestEngine(t *testing.T) (*gin.Engine, *record_log.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := record_log.NewStore(filepath.Join(t.TempDir(), "ivms_data.csv"))
	require.NoError(t, err)

	svc := restful.NewTelemetryService(
		restful.WithRecorder(pipeline.NewRecorder(store)),
		restful.WithStore(store),
	)

	engine := gin.New()
	NewTelemetryRouter(svc, testAPIKey).Routes(engine)
	return engine, store
}

func postData(engine *gin.Engine, apiKey, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(body))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if apiKey != "" {
		req.Header.Set(constants.HeaderXAPIKey, apiKey)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func getLatest(t *testing.T, engine *gin.Engine) []domain.TelemetryRecord {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/latest", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var records []domain.TelemetryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	return records
}

func TestIngestThenLatestIncludesRecord(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := postData(engine, testAPIKey, `{"latitude":12.9716,"longitude":77.5946,"speed":42.5,"accel":0.8}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	records := getLatest(t, engine)
	require.Len(t, records, 1)
	assert.Equal(t, 12.9716, records[0].Lat)
	assert.Equal(t, 77.5946, records[0].Lon)
	assert.Equal(t, 42.5, records[0].Speed)
	assert.Equal(t, 0.8, records[0].Accel)
}

func TestIngestUnauthorizedHasNoSideEffects(t *testing.T) {
	engine, store := newTestEngine(t)

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	for _, key := range []string{"", "WRONG_KEY"} {
		w := postData(engine, key, `{"latitude":1,"longitude":2,"speed":3,"accel":4}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLatestBoundsWindowAndOrder(t *testing.T) {
	engine, store := newTestEngine(t)

	for i := 0; i < 55; i++ {
		require.NoError(t, store.Append(domain.RawRecord{
			Timestamp: time.Date(2026, 1, 2, 10, 0, i, 0, constants.TimestampZone).Format(constants.TimestampLayout),
			Latitude:  "12.97",
			Longitude: "77.59",
			Speed:     fmt.Sprintf("%d", i),
			Accel:     "0",
		}))
	}

	records := getLatest(t, engine)
	require.Len(t, records, constants.RetrievalWindow)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i].Timestamp, records[i-1].Timestamp)
	}
	assert.Equal(t, 54.0, records[len(records)-1].Speed)
}

func TestLatestEmptyStoreReturnsEmptyArray(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/latest", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLatestExcludesMalformedLines(t *testing.T) {
	engine, store := newTestEngine(t)

	w := postData(engine, testAPIKey, `{"latitude":1,"longitude":2,"speed":3,"accel":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	f, err := os.OpenFile(store.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("short,line\n2026-01-02T10:30:00.000000+05:30,x,y,z,w\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records := getLatest(t, engine)
	assert.Len(t, records, 1)
}

func TestIngestLenientBody(t *testing.T) {
	engine, store := newTestEngine(t)

	// Missing fields are tolerated, as is a body that is not JSON at all.
	w := postData(engine, testAPIKey, `{"speed":10}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postData(engine, testAPIKey, `this is not json`)
	assert.Equal(t, http.StatusOK, w.Code)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	// Header plus one appended line per request.
	assert.Len(t, strings.Split(strings.TrimRight(string(raw), "\n"), "\n"), 3)
}

func TestAlertsEndpoint(t *testing.T) {
	engine, store := newTestEngine(t)

	require.NoError(t, store.Append(domain.RawRecord{
		Timestamp: time.Now().In(constants.TimestampZone).Format(constants.TimestampLayout),
		Latitude:  "12.97",
		Longitude: "77.59",
		Speed:     "95",
		Accel:     "0",
	}))

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Alerts []string `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Overspeeding detected (>80 km/h)"}, resp.Alerts)
}

func TestAlertsEmptyStore(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"alerts":[]}`, w.Body.String())
}
