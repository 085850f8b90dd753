package restful

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/tracer_client"
	"github.com/openivms/telemetry-server/internal/server/rest_server/middlewares"
	"github.com/openivms/telemetry-server/internal/server/rest_server/services/v1/restful"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TelemetryRouter serves the device- and dashboard-facing wire surface. These
// routes keep their fixed top-level paths and exact response bodies; only the
// internal v1 API wraps results in the response envelope.
type TelemetryRouter struct {
	svc    restful.ITelemetryService
	apiKey string
	logger *log.Logger
	tracer trace.Tracer
}

func NewTelemetryRouter(svc restful.ITelemetryService, apiKey string) *TelemetryRouter {
	logger := log.MustNewECSLogger()
	return &TelemetryRouter{
		svc:    svc,
		apiKey: apiKey,
		logger: logger,
		tracer: tracer_client.Tracer("telemetry_http"),
	}
}

func (r *TelemetryRouter) Routes(engine *gin.Engine) {
	engine.POST("/api/data", middlewares.APIKeyMW(r.apiKey), r.ingest)
	engine.GET("/latest", r.latest)
	engine.GET("/alerts", r.alerts)
}

func (r *TelemetryRouter) ingest(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	lg := r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
	lg.Info("Received new telemetry report")

	// Lenient ingestion: an unreadable body is treated as an empty payload,
	// never a rejection. Device firmware variability is expected.
	payload := map[string]any{}
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		lg.Debug("Ignoring unreadable telemetry payload body")
		payload = map[string]any{}
	}

	_, appErr := r.svc.Ingest(ctx, &restful.IngestInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
		Payload:   payload,
	})
	if appErr != nil {
		lg.Error(appErr.Error())
		ctx.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *TelemetryRouter) latest(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	result, appErr := r.svc.Latest(ctx, &restful.LatestInput{TracerCtx: rootCtx, Tracer: r.tracer})
	if appErr != nil {
		r.logger.Error(appErr.Error())
		ctx.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, result.Records)
}

func (r *TelemetryRouter) alerts(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	result, appErr := r.svc.Alerts(ctx, &restful.AlertsInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
		Now:       time.Now(),
	})
	if appErr != nil {
		r.logger.Error(appErr.Error())
		ctx.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts": result.Alerts})
}
