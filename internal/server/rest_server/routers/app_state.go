package routers

import (
	"github.com/openivms/telemetry-server/internal/server/rest_server/services/v1/restful"
)

type V1Rest struct {
	healthcheck *restful.HealthcheckService
}

func NewV1RestState() *V1Rest {
	return &V1Rest{}
}

func (svc *V1Rest) SetHealthcheckService(healthcheck *restful.HealthcheckService) {
	svc.healthcheck = healthcheck
}

func (svc *V1Rest) GetHealthcheckService() *restful.HealthcheckService {
	return svc.healthcheck
}

type AppState struct {
	v1Rest    *V1Rest
	telemetry *restful.TelemetryService
	apiKey    string
}

func NewAppState() *AppState {
	return &AppState{}
}

func (svc *AppState) SetV1RestState(v1Rest *V1Rest) {
	svc.v1Rest = v1Rest
}

func (svc *AppState) GetV1RestState() *V1Rest {
	return svc.v1Rest
}

func (svc *AppState) SetTelemetryService(telemetry *restful.TelemetryService) {
	svc.telemetry = telemetry
}

func (svc *AppState) GetTelemetryService() *restful.TelemetryService {
	return svc.telemetry
}

func (svc *AppState) SetAPIKey(apiKey string) {
	svc.apiKey = apiKey
}

func (svc *AppState) GetAPIKey() string {
	return svc.apiKey
}
