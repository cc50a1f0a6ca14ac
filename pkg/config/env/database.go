package envconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type databaseEnv struct {
	Driver   string `env:"DB_DRIVER"`
	DSN      string `env:"DB_DSN"`
	Scenario string `env:"BOM_SCENARIO_DIR"`
}

type database struct {
	raw databaseEnv
}

func NewDatabaseConfig() (*database, error) {
	var raw databaseEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}

	switch raw.Driver {
	case "", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", raw.Driver)
	}
	if raw.Driver != "" && raw.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required for driver %q", raw.Driver)
	}

	return &database{raw: raw}, nil
}

func (cfg *database) Driver() string      { return cfg.raw.Driver }
func (cfg *database) DSN() string         { return cfg.raw.DSN }
func (cfg *database) ScenarioDir() string { return cfg.raw.Scenario }
