package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	AppPort string `envconfig:"PORT" default:"8080"`
	Host    string `envconfig:"HOST" default:"0.0.0.0"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// JWT settings
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRES_HOURS" default:"72"`

	// Nearby-store discovery
	DiscoveryRadiusKm float64 `envconfig:"DISCOVERY_RADIUS_KM" default:"5"`

	// Checkout pricing
	DeliveryCost float64 `envconfig:"DELIVERY_COST" default:"600"`

	// Event publishing. Empty brokers disable the outbox publisher;
	// events then stay queued in the outbox table.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"qbuy.events"`

	// Uploads
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	return &cfg
}
