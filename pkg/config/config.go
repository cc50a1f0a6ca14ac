package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	envconfig "github.com/vsinha/bomengine/pkg/config/env"
)

var cfg *config

type config struct {
	Server   Server
	Logger   Logger
	Database Database
	Engine   Engine
}

func Load(path ...string) error {
	const op = "config.Load"

	if shouldLoadDotenv() {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	serverCfg, err := envconfig.NewHTTPServerConfig()
	if err != nil {
		return fmt.Errorf("%s Server: %w", op, err)
	}

	loggerCfg, err := envconfig.NewLoggerConfig()
	if err != nil {
		return fmt.Errorf("%s Logger: %w", op, err)
	}

	databaseCfg, err := envconfig.NewDatabaseConfig()
	if err != nil {
		return fmt.Errorf("%s Database: %w", op, err)
	}

	engineCfg, err := envconfig.NewEngineConfig()
	if err != nil {
		return fmt.Errorf("%s Engine: %w", op, err)
	}

	cfg = &config{
		Server:   serverCfg,
		Logger:   loggerCfg,
		Database: databaseCfg,
		Engine:   engineCfg,
	}

	return nil
}

func C() *config { return cfg }

func shouldLoadDotenv() bool {
	return os.Getenv("APP_ENV") == "local"
}
