package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/alerting"
	"github.com/openivms/telemetry-server/internal/cerrors"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/domain"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/openivms/telemetry-server/internal/pipeline"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ITelemetryService interface {
	Ingest(ctx *gin.Context, input *IngestInput) (*IngestOutput, *cerrors.AppError)
	Latest(ctx *gin.Context, input *LatestInput) (*LatestOutput, *cerrors.AppError)
	Alerts(ctx *gin.Context, input *AlertsInput) (*AlertsOutput, *cerrors.AppError)
}

type TelemetryService struct {
	recorder *pipeline.Recorder
	store    *record_log.Store
	logger   *log.Logger
}

func NewTelemetryService(options ...func(*TelemetryService)) *TelemetryService {
	svc := &TelemetryService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithRecorder(recorder *pipeline.Recorder) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.recorder = recorder }
}

func WithStore(store *record_log.Store) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.store = store }
}

type IngestInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Payload   map[string]any
}

type IngestOutput struct {
	Record domain.RawRecord
}

type LatestInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type LatestOutput struct {
	Records []domain.TelemetryRecord
}

type AlertsInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Now       time.Time
}

type AlertsOutput struct {
	Alerts []string
}

// Ingest appends exactly one durable record. The payload is never rejected for
// shape; a storage failure is the only ingestion error after authentication.
func (svc *TelemetryService) Ingest(ctx *gin.Context, input *IngestInput) (*IngestOutput, *cerrors.AppError) {
	_, cSpan := input.Tracer.Start(input.TracerCtx, "append-record")
	defer cSpan.End()

	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	rec, err := svc.recorder.Record(input.Payload)
	if err != nil {
		lg.Error(err.Error())
		return nil, cerrors.ErrRecordAppend.WithCause(err)
	}

	return &IngestOutput{Record: rec}, nil
}

// Latest returns the most recent retrieval window, oldest first. An empty
// store yields an empty slice, not an error.
func (svc *TelemetryService) Latest(ctx *gin.Context, input *LatestInput) (*LatestOutput, *cerrors.AppError) {
	_, cSpan := input.Tracer.Start(input.TracerCtx, "tail-records")
	defer cSpan.End()

	records, err := svc.store.Tail(constants.RetrievalWindow)
	if err != nil {
		svc.logger.With(
			zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
		).Error(err.Error())
		return nil, cerrors.ErrRecordScan.WithCause(err)
	}

	return &LatestOutput{Records: records}, nil
}

// Alerts evaluates the derived-alert rules over the newest record. Alerts are
// computed fresh on every call and never persisted; an empty store reports no
// alerts.
func (svc *TelemetryService) Alerts(ctx *gin.Context, input *AlertsInput) (*AlertsOutput, *cerrors.AppError) {
	_, cSpan := input.Tracer.Start(input.TracerCtx, "evaluate-alerts")
	defer cSpan.End()

	records, err := svc.store.Tail(1)
	if err != nil {
		svc.logger.With(
			zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
		).Error(err.Error())
		return nil, cerrors.ErrRecordScan.WithCause(err)
	}

	out := &AlertsOutput{Alerts: []string{}}
	if len(records) == 0 {
		return out, nil
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	out.Alerts = alerting.Evaluate(records[len(records)-1], now)
	return out, nil
}
