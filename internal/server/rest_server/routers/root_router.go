package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/constants"
	restful_routers "github.com/openivms/telemetry-server/internal/server/rest_server/routers/v1/restful"
	"github.com/openivms/telemetry-server/internal/server/rest_server/web"
)

type RootRouter struct {
	appState *AppState
}

func NewRootRouter(appState *AppState) *RootRouter {
	return &RootRouter{
		appState: appState,
	}
}

func (rr *RootRouter) InitRouters(engine *gin.Engine) {
	// Device and dashboard wire surface, fixed top-level paths.
	{
		telemetryRouter := restful_routers.NewTelemetryRouter(
			rr.appState.GetTelemetryService(),
			rr.appState.GetAPIKey(),
		)
		telemetryRouter.Routes(engine)

		engine.GET("/", rr.index)
		engine.GET("/dashboard", rr.dashboard)
	}

	// Internal, envelope-wrapped API.
	rootAPIRouter := engine.Group("/api")
	v1Router := rootAPIRouter.Group("/v1")
	{
		healthcheckRouter := restful_routers.NewHealthcheckRouter(rr.appState.GetV1RestState().GetHealthcheckService())
		healthcheckRouter.Routes(v1Router)
	}
}

func (rr *RootRouter) index(ctx *gin.Context) {
	ctx.String(http.StatusOK, "IVMS telemetry server running.")
}

func (rr *RootRouter) dashboard(ctx *gin.Context) {
	ctx.Data(http.StatusOK, constants.ContentTypeHTML, web.DashboardHTML)
}
