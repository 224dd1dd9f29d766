package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// Load populates T from the environment under the given prefix. An env
// file is exported first: the -env flag wins, otherwise ./.env when it
// exists.
func Load[T any](prefix string) (*T, error) {
	if err := exportEnv(); err != nil {
		return nil, err
	}

	var conf T
	if err := envconfig.Process(strings.TrimSpace(prefix), &conf); err != nil {
		return nil, fmt.Errorf("process env prefix=%s: %w", prefix, err)
	}

	return &conf, nil
}

func MustLoad[T any](prefix string) *T {
	conf, err := Load[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

func exportEnv() error {
	if path := resolveEnvPath(); path != "" {
		if err := exportFile(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}

	// No -env flag: pick up ./.env when present, absence is fine.
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load default env file: %w", err)
	}
	if info.IsDir() {
		return nil
	}
	if err := exportFile(".env"); err != nil {
		return fmt.Errorf("failed to load default env file: %w", err)
	}
	return nil
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "env file exported before configs load")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

// exportFile reads one env file and exports every key into the process
// environment, uppercased, so envconfig sees file and ambient values the
// same way. A fresh viper instance keeps reads independent.
func exportFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, value := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
