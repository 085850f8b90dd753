package restful

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/api_response"
	"github.com/openivms/telemetry-server/internal/cerrors"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/openivms/telemetry-server/internal/utilities"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type IHealthcheckService interface {
	Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type HealthcheckService struct {
	store  *record_log.Store
	logger *log.Logger
}

func NewHealthcheckService(options ...func(*HealthcheckService)) *HealthcheckService {
	svc := &HealthcheckService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithHealthcheckStore(store *record_log.Store) func(*HealthcheckService) {
	return func(svc *HealthcheckService) { svc.store = store }
}

type HealthcheckInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type HealthcheckOutput struct {
	Host    HostInfo    `json:"host"`
	Memory  MemoryInfo  `json:"memory"`
	Network NetworkInfo `json:"network"`
	CPU     CPUInfo     `json:"cpu"`
	Storage StorageInfo `json:"storage"`
}

type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

type NetworkInfo struct {
	OutboundIP   string   `json:"outbound_ip"`
	PhysicalMacs []string `json:"physical_macs"`
}

type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	HostID          string `json:"host_id"`
}

type CPUInfo struct {
	ModelName     string `json:"model_name"`
	PhysicalCores int    `json:"physical_cores"`
	LogicalCores  int    `json:"logical_cores"`
}

type StorageInfo struct {
	LogPath     string `json:"log_path"`
	RecordCount int    `json:"record_count"`
}

func (svc *HealthcheckService) Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := input.Tracer.Start(input.TracerCtx, "healthcheck-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	_, cSpan := input.Tracer.Start(rootCtx, "get-host-info")
	hostStat, err := host.Info()
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get host info")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}
	cSpan.End()

	_, cSpan = input.Tracer.Start(rootCtx, "get-memory-info")
	memoryInfo, err := mem.VirtualMemory()
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get memory info")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}
	cSpan.End()

	_, cSpan = input.Tracer.Start(rootCtx, "get-net-info")
	physicalMacs, err := utilities.RetrievePhysicalMacAddr()
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get physical mac addresses")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}

	outboundIP, err := utilities.GetOutboundIP()
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get outbound ip")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}
	cSpan.End()

	_, cSpan = input.Tracer.Start(rootCtx, "get-cpu-info")
	cpuStat, err := cpu.Info()
	if err != nil || len(cpuStat) == 0 {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get cpu info")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}

	physicalCores, err := cpu.Counts(false)
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get cpu info")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}

	logicalCores, err := cpu.Counts(true)
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to get cpu info")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrGenericInternalServer
	}
	cSpan.End()

	_, cSpan = input.Tracer.Start(rootCtx, "get-storage-info")
	recordCount, err := svc.store.Count()
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "failed to count stored records")
		lg.Error(wErr.Error())
		return nil, cerrors.ErrRecordScan
	}
	cSpan.End()

	respData := HealthcheckOutput{
		Host: HostInfo{
			Hostname:        hostStat.Hostname,
			OS:              hostStat.OS,
			Platform:        hostStat.Platform,
			PlatformVersion: hostStat.PlatformVersion,
			KernelVersion:   hostStat.KernelVersion,
			Arch:            hostStat.KernelArch,
			HostID:          hostStat.HostID,
		},
		Memory: MemoryInfo{
			Total:       memoryInfo.Total,
			Free:        memoryInfo.Free,
			UsedPercent: memoryInfo.UsedPercent,
		},
		Network: NetworkInfo{
			OutboundIP:   outboundIP.String(),
			PhysicalMacs: physicalMacs,
		},
		CPU: CPUInfo{
			ModelName:     cpuStat[0].ModelName,
			PhysicalCores: physicalCores,
			LogicalCores:  logicalCores,
		},
		Storage: StorageInfo{
			LogPath:     svc.store.Path(),
			RecordCount: recordCount,
		},
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = respData

	return resp, nil
}
