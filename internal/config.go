package internal

import "time"

type Config struct {
	Host              string        `env:"HOST,required=true"`
	Port              int           `env:"PORT,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	OwnerUsername     string        `env:"OWNER_USERNAME,required=true"`
	OwnerPassword     string        `env:"OWNER_PASSWORD,required=true"`
	AuthTokenSecret   string        `env:"AUTH_TOKEN_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,required=true"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,required=true"`
	GCInterval        time.Duration `env:"GC_INTERVAL,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
}
