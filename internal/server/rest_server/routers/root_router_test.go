package routers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/openivms/telemetry-server/internal/pipeline"
	"github.com/openivms/telemetry-server/internal/server/rest_server/services/v1/restful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRootEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := record_log.NewStore(filepath.Join(t.TempDir(), "ivms_data.csv"))
	require.NoError(t, err)

	appState := NewAppState()
	appState.SetAPIKey("test-key")
	appState.SetTelemetryService(
		restful.NewTelemetryService(
			restful.WithRecorder(pipeline.NewRecorder(store)),
			restful.WithStore(store),
		),
	)

	v1RestState := NewV1RestState()
	v1RestState.SetHealthcheckService(
		restful.NewHealthcheckService(restful.WithHealthcheckStore(store)),
	)
	appState.SetV1RestState(v1RestState)

	engine := gin.New()
	NewRootRouter(appState).InitRouters(engine)
	return engine
}

func TestIndexLiveness(t *testing.T) {
	engine := newTestRootEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IVMS telemetry server running.", w.Body.String())
}

func TestDashboardServesClient(t *testing.T) {
	engine := newTestRootEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "IVMS Live Dashboard")
	// The client polls /latest on a timer; no push channel is served.
	assert.Contains(t, w.Body.String(), "setInterval(fetchData, 3000)")
}
