package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base URL of a running relay, e.g. http://localhost:8080. Scenarios are skipped when empty.
	RelayURL   string `envconfig:"E2E_RELAY_URL"`
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR" default:"localhost:50051"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
