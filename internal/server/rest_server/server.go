package rest_server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/config"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/server/rest_server/middlewares"
	"github.com/openivms/telemetry-server/internal/utilities"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

func getHTTPPort() int {
	port := viper.GetInt(config.ServerHTTPPort)
	if port <= 0 {
		return constants.ServerDefaultHTTPPort
	}
	return port
}

func getHTTPRequestTimeout() time.Duration {
	def := time.Duration(constants.DefaultHTTPRequestTimeout) * time.Second
	timeout, err := utilities.ParseOrDefault(viper.GetString(config.ServerHTTPRequestTimeout), def)
	if err != nil || timeout <= 0 {
		return def
	}
	return timeout
}

func NewHTTPServer(ctx context.Context, registerRoutes func(engine *gin.Engine)) error {
	log.Default().Info("Initializing HTTP server")

	gin.SetMode(viper.GetString(config.ServerHTTPMode))
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodGet, http.MethodDelete},
		AllowHeaders: []string{constants.HeaderAccessControlAllowHeaders, constants.HeaderOrigin, constants.HeaderAccept,
			constants.HeaderXRequestedWith, constants.HeaderContentType, constants.HeaderAuthorization, constants.HeaderXAPIKey},
		ExposeHeaders:    []string{constants.HeaderContentLength},
		AllowCredentials: true,
	}))

	router.NoRoute(middlewares.NoRouteMW())
	router.Use(middlewares.RequestIDMW())

	if registerRoutes != nil {
		registerRoutes(router)
	}

	router.Use(
		middlewares.RequestTimeoutMW(getHTTPRequestTimeout()),
		gzip.Gzip(gzip.DefaultCompression),
		middlewares.RecoveryMW(),
		middlewares.RequestLoggingMW(log.Default().Logger),
		middlewares.ResponseHashMW(),
	)

	serverAddr := fmt.Sprintf("0.0.0.0:%d", getHTTPPort())
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if viper.GetString(config.ServerTLSCertFile) != "" && viper.GetString(config.ServerTLSKeyFile) != "" {
			err = srv.ListenAndServeTLS(viper.GetString(config.ServerTLSCertFile), viper.GetString(config.ServerTLSKeyFile))
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Default().Info("Shutting down HTTP server")
		stopped := make(chan struct{})
		go func() {
			err := srv.Shutdown(ctx)
			if err != nil {
				wErr := errors.Wrap(err, "failed to shutdown http server")
				log.Default().Error(wErr.Error())
			}
			close(stopped)
		}()

		t := time.NewTimer(3 * time.Second)
		defer t.Stop()
		select {
		case <-stopped:
			return nil
		case <-t.C:
			log.Default().Info("Graceful stop timed out, forcing shutdown")
			_ = srv.Close()
			return nil
		}
	case err := <-errCh:
		wErr := errors.Wrap(err, "failed to start HTTP server")
		return wErr
	}
}
