package envconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type engineEnv struct {
	MaxDepth      int   `env:"EXPLOSION_MAX_DEPTH" envDefault:"10"`
	RoundDecimals int32 `env:"SCALE_ROUND_DECIMALS" envDefault:"3"`
}

type engine struct {
	raw engineEnv
}

func NewEngineConfig() (*engine, error) {
	var raw engineEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	if raw.MaxDepth < 1 || raw.MaxDepth > 10 {
		return nil, fmt.Errorf("EXPLOSION_MAX_DEPTH must be in [1,10], got %d", raw.MaxDepth)
	}
	if raw.RoundDecimals < 0 || raw.RoundDecimals > 6 {
		return nil, fmt.Errorf("SCALE_ROUND_DECIMALS must be in [0,6], got %d", raw.RoundDecimals)
	}
	return &engine{raw: raw}, nil
}

func (cfg *engine) MaxDepth() int        { return cfg.raw.MaxDepth }
func (cfg *engine) RoundDecimals() int32 { return cfg.raw.RoundDecimals }
