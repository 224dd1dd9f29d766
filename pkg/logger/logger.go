package logx

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "sentinel-protocol"

// Config is read from LOG_* by the autoload package.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{}

func safe(opts ...Config) Config {
	if len(opts) > 0 {
		return opts[0]
	}
	return *DefaultConfig
}

// Init replaces the global logger. Call once, before anything logs.
func Init(opts ...Config) {
	conf := safe(opts...)

	var base zerolog.Logger
	if conf.PrettyFormat {
		base = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("service", serviceName).Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	log.Logger = base.Level(level).With().Caller().Stack().Logger()
}
