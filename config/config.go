package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are merged,
// e.g. DB_HOST -> host, DB_CONN_MAX_LIFETIME -> conn_max_lifetime.
const EnvPrefix = "DB_"

// Load builds ConnectionParameters from three sources with increasing priority:
// built-in defaults, the YAML file at path (optional, skipped when path is
// empty or the file does not exist) and DB_-prefixed environment variables.
func Load(path string) (ConnectionParameters, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return ConnectionParameters{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return ConnectionParameters{}, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, value
		},
	}), nil); err != nil {
		return ConnectionParameters{}, fmt.Errorf("failed to load environment: %w", err)
	}

	var params ConnectionParameters
	if err := k.Unmarshal("", &params); err != nil {
		return ConnectionParameters{}, fmt.Errorf("failed to unmarshal connection parameters: %w", err)
	}

	if err := Validate(&params); err != nil {
		return ConnectionParameters{}, err
	}

	return params, nil
}

func defaults() map[string]any {
	return map[string]any{
		"host":                "localhost",
		"port":                DefaultPort,
		"ssl_mode":            "",
		"max_conns":           DefaultMaxConns,
		"max_idle_conns":      DefaultMaxIdleConns,
		"conn_max_lifetime":   DefaultConnMaxLifetime.String(),
		"conn_max_idle_time":  DefaultConnMaxIdleTime.String(),
		"connect_retries":     DefaultConnectRetries,
		"connect_retry_delay": DefaultConnectRetryDelay.String(),
		"connect_timeout":     DefaultConnectTimeout.String(),
	}
}
