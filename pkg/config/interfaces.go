package config

import "time"

type Server interface {
	Host() string
	Port() int
	Address() string
	ReadTimeout() time.Duration
	ShutdownTimeout() time.Duration
	RequestTimeout() time.Duration
}

type Logger interface {
	Level() string
	AsJSON() bool
}

type Database interface {
	// Driver is "sqlite", "postgres" or empty for the in-memory store
	Driver() string
	DSN() string
	ScenarioDir() string
}

type Engine interface {
	MaxDepth() int
	RoundDecimals() int32
}
