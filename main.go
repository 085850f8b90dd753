package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/openivms/telemetry-server/internal/agent/mqtt_ingestor"
	"github.com/openivms/telemetry-server/internal/config"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/mqtt_client"
	"github.com/openivms/telemetry-server/internal/infrastructure/record_log"
	"github.com/openivms/telemetry-server/internal/infrastructure/tracer_client"
	"github.com/openivms/telemetry-server/internal/pipeline"
	"github.com/openivms/telemetry-server/internal/server/monitoring"
	"github.com/openivms/telemetry-server/internal/server/rest_server"
	"github.com/openivms/telemetry-server/internal/server/rest_server/routers"
	"github.com/openivms/telemetry-server/internal/server/rest_server/services/v1/restful"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var once sync.Once

func mirrorEnvCase() {
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		k, v := kv[:i], kv[i+1:]
		_ = os.Setenv(strings.ToUpper(k), v)
		_ = os.Setenv(strings.ToLower(k), v)
	}
}

func loadDotenvIfExists(filename string, overload bool) (bool, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if overload {
		return true, godotenv.Overload(filename)
	}
	return true, godotenv.Load(filename)
}

func readConfigIfExists(path string, merge bool) (bool, error) {
	viper.SetConfigFile(path)
	var err error
	if merge {
		err = viper.MergeInConfig()
	} else {
		err = viper.ReadInConfig()
	}
	if err == nil {
		return true, nil
	}
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) || os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func detectProfile() string {
	from := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(k); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToUpper(k)); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToLower(k)); ok {
			return strings.ToLower(v), true
		}
		return "", false
	}
	if v, ok := from("APP_ENV"); ok {
		return v
	}
	return "dev"
}

func Load() error {
	envFound, err := loadDotenvIfExists(".env", false)
	if err != nil {
		return err
	}
	if envFound {
		mirrorEnvCase()
	}
	profile := detectProfile()

	pfFound, err := loadDotenvIfExists("."+profile+".env", true)
	if err != nil {
		return err
	}
	if pfFound {
		mirrorEnvCase()
	}

	cfgFound, err := readConfigIfExists("conf/config.toml", false)
	if err != nil {
		return err
	}

	if !envFound && !cfgFound {
		return fmt.Errorf("no configuration sources found: missing both .env and conf/config.toml")
	}

	if _, err := readConfigIfExists("conf/"+profile+".config.toml", true); err != nil {
		return err
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	return nil
}

func init() {
	once.Do(func() {
		err := Load()
		if err != nil {
			panic(fmt.Sprintf("Failed to setup service configuration: %v", err))
		}

		// Init default logger
		err = log.InitDefault()
		if err != nil {
			panic(err)
		}

		// Initialize MQTT client if the broker ingest path is enabled
		if viper.GetBool(config.ServerEnableMQTT) {
			log.Default().Info("Started initializing client connection to MQTT broker")
			err = mqtt_client.NewMQTTClient(
				viper.GetString(config.MqttEndpoint),
				viper.GetString(config.MqttClientId),
				mqtt_client.WithAutoReconnect(viper.GetBool(config.MqttAutoReconnect)),
				mqtt_client.WithConnectTimeout(5*time.Second),
				mqtt_client.WithTLSInsecureSkipVerify(viper.GetBool(config.MqttTLSInsecureSkipVerify)),
			)
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize client connection to MQTT broker: %v", err))
			}
			log.Default().Info("Finished initializing client connection to MQTT broker")
		}

		// Initialize OTEL tracer if enabled
		if viper.GetBool(config.ServerEnableTracing) {
			log.Default().Info("Started initializing OTEL tracer")
			_, err = tracer_client.NewTracerClient(
				tracer_client.WithEndpoint(viper.GetString(config.TracingEndpoint)),
				tracer_client.WithInsecure(viper.GetBool(config.TracingInsecure)),
				tracer_client.WithServiceName("telemetry-server"),
			)
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize OTEL tracer: %v", err))
			}
			log.Default().Info("Finished initializing OTEL tracer")
		}
	})
}

func main() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	// Open the telemetry record log. Startup is idempotent: an existing log is
	// never truncated.
	logPath := viper.GetString(config.StorageLogPath)
	if logPath == "" {
		logPath = "ivms_data.csv"
	}
	store, err := record_log.NewStore(logPath)
	if err != nil {
		log.Default().Fatal(fmt.Sprintf("Failed to initialize telemetry record log: %v", err))
		return
	}
	log.Default().Info(fmt.Sprintf("Telemetry record log ready at [%s]", store.Path()))

	recorder := pipeline.NewRecorder(store)

	parentCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(parentCtx)

	// Init profiling
	g.Go(func() error {
		if viper.GetBool(config.ServerEnableMonitoring) {
			mErr := monitoring.NewMonitoringServer(ctx)
			if mErr != nil {
				return mErr
			}
		}

		return ctx.Err()
	})

	// Init MQTT ingest bridge
	g.Go(func() error {
		if viper.GetBool(config.ServerEnableMQTT) {
			iErr := mqtt_ingestor.NewMQTTIngestor(ctx, recorder)
			if iErr != nil {
				return iErr
			}
		}

		return ctx.Err()
	})

	// Init HTTP server
	g.Go(func() error {
		// app state
		appState := routers.NewAppState()
		appState.SetAPIKey(viper.GetString(config.ServerAPIKey))
		appState.SetTelemetryService(
			restful.NewTelemetryService(
				restful.WithRecorder(recorder),
				restful.WithStore(store),
			),
		)

		// v1 restful svc
		v1RestState := routers.NewV1RestState()
		v1RestState.SetHealthcheckService(
			restful.NewHealthcheckService(
				restful.WithHealthcheckStore(store),
			),
		)
		appState.SetV1RestState(v1RestState)

		rErr := rest_server.NewHTTPServer(ctx, routers.NewRootRouter(appState).InitRouters)
		if rErr != nil {
			return rErr
		}
		return ctx.Err()
	})

	select {
	case sig := <-sigCh:
		log.Default().Debug(fmt.Sprintf("Signal received: %v", sig))
		cancel()

		done := make(chan error, 1)
		go func() {
			done <- g.Wait()
		}()

		select {
		case err = <-done:
			log.Default().Info("All tasks exited, shutting down server")
			return
		case sig2 := <-sigCh:
			log.Default().Debug(fmt.Sprintf("Second signal received: %v", sig2))
			return
		case <-time.After(constants.GraceWaitPeriod):
			log.Default().Info("Grace period timed out, forcing exit")
			return
		}

	case err = <-func() chan error {
		ch := make(chan error, 1)
		go func() {
			ch <- g.Wait()
		}()
		return ch
	}():
		log.Default().Info(fmt.Sprintf("Services finished early with error: %v", err))
	}
}
