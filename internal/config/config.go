package config

const (
	ServerID                 = "server.id"
	ServerAPIKey             = "server.api_key" // #nosec G101
	ServerEnableMonitoring   = "server.enable_monitoring"
	ServerMonitoringPort     = "server.monitoring_port"
	ServerLogLevel           = "server.log_level"
	ServerHTTPPort           = "server.http_port"
	ServerHTTPMode           = "server.http_mode"
	ServerHTTPRequestTimeout = "server.http_request_timeout"
	ServerTLSCertFile        = "server.tls_cert_file"
	ServerTLSKeyFile         = "server.tls_key_file"
	ServerEnableMQTT         = "server.enable_mqtt"
	ServerEnableTracing      = "server.enable_tracing"
)

const (
	StorageLogPath = "storage.log_path"
)

const (
	MqttEndpoint              = "mqtt.endpoint"
	MqttCleanSession          = "mqtt.clean_session"
	MqttClientId              = "mqtt.client_id"
	MqttAutoReconnect         = "mqtt.auto_reconnect"
	MqttConnectRetry          = "mqtt.connect_retry"
	MqttMaxConnectInterval    = "mqtt.max_connect_interval"
	MqttWriteTimeout          = "mqtt.write_timeout"
	MqttPingTimeout           = "mqtt.ping_timeout"
	MqttKeepAliveDuration     = "mqtt.keep_alive_duration"
	MqttResumeSubs            = "mqtt.resume_subs"
	MqttConnectTimeout        = "mqtt.connect_timeout"
	MqttConnectRetryInterval  = "mqtt.connect_retry_interval"
	MqttTLSInsecureSkipVerify = "mqtt.tls_insecure_skip_verify"
	MqttTelemetryTopic        = "mqtt.telemetry_topic"
)

const (
	TracingEndpoint = "tracing.endpoint"
	TracingInsecure = "tracing.insecure"
)
