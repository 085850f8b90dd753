package mqtt_ingestor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/openivms/telemetry-server/internal/config"
	"github.com/openivms/telemetry-server/internal/constants"
	"github.com/openivms/telemetry-server/internal/infrastructure/log"
	"github.com/openivms/telemetry-server/internal/infrastructure/mqtt_client"
	"github.com/openivms/telemetry-server/internal/pipeline"
	"github.com/openivms/telemetry-server/internal/utilities"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const qosAtLeastOnce byte = 1

// NewMQTTIngestor subscribes to the telemetry topic and feeds every published
// report through the same recorder as the HTTP ingestion endpoint: identical
// server-assigned timestamps, identical lenient payload handling. Broker
// access is the credential on this path; there is no per-message key check.
// Blocks until ctx is cancelled.
func NewMQTTIngestor(ctx context.Context, recorder *pipeline.Recorder) error {
	topic := viper.GetString(config.MqttTelemetryTopic)
	if topic == "" {
		topic = constants.MqttDefaultTelemetryTopic
	}
	log.Default().Info(fmt.Sprintf("Starting MQTT telemetry ingestor on topic [%s]", topic))

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		payload := map[string]any{}
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			log.Default().Debug(fmt.Sprintf("Ignoring unreadable telemetry payload on topic [%s]", msg.Topic()))
			payload = map[string]any{}
		}
		if _, err := recorder.Record(payload); err != nil {
			log.Default().Error(errors.Wrap(err, "failed to record mqtt telemetry report").Error())
		}
	}

	client := mqtt_client.Client()
	var subErr error
	utilities.RetryWithBackoff(func() error {
		token := client.Subscribe(topic, qosAtLeastOnce, handler)
		token.Wait()
		subErr = token.Error()
		return subErr
	}, 5, 1*time.Second, 30*time.Second)
	if subErr != nil {
		wErr := errors.Wrapf(subErr, "failed to subscribe to telemetry topic [%s]", topic)
		log.Default().Error(wErr.Error())
		return wErr
	}

	<-ctx.Done()

	log.Default().Info("Shutting down MQTT telemetry ingestor")
	unsub := client.Unsubscribe(topic)
	unsub.Wait()
	if err := unsub.Error(); err != nil {
		log.Default().Error(errors.Wrap(err, "failed to unsubscribe from telemetry topic").Error())
	}
	return nil
}
