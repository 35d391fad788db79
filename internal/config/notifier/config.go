package notifier_config

import (
	"time"

	"github.com/kickoffhq/clubpush/internal/obs"
	pginfra "github.com/kickoffhq/clubpush/internal/repository/postgres"
)

type KafkaIn struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// VAPID holds the key pair identifying this server to browser push services.
type VAPID struct {
	Subscriber string        `mapstructure:"subscriber"`
	PublicKey  string        `mapstructure:"public_key"`
	PrivateKey string        `mapstructure:"private_key"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type FCM struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsPath string `mapstructure:"credentials_path"`
	CredentialsJSON string `mapstructure:"credentials_json"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Config struct {
	DB       pginfra.Config `mapstructure:"db"`
	In       KafkaIn        `mapstructure:"kafka_in"`
	VAPID    VAPID          `mapstructure:"vapid"`
	FCM      FCM            `mapstructure:"fcm"`
	Workers  int            `mapstructure:"workers"`
	Server   Server         `mapstructure:"server"`
	OTEL     OTEL           `mapstructure:"otel"`
	LogLevel string         `mapstructure:"log_level"`
}
