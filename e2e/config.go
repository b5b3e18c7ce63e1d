package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HELPDESK_ADDR points at a running server. The suite is skipped without it.
	Address   string `envconfig:"HELPDESK_ADDR"`
	JWTSecret string `envconfig:"JWT_SECRET"`
	// E2E_DEBUG_JSON dumps every response body as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	Colours   bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
