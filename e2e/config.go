package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COORDINATOR_ADDR points at a running coordinator, e.g.
	// "localhost:3000". Scenarios are skipped when it is unset.
	CoordinatorAddr string `envconfig:"E2E_COORDINATOR_ADDR"`
	// E2E_DEBUG_JSON dumps every frame exchanged during a scenario.
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
