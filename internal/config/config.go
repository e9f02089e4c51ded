// Package config loads the server configuration, layered lowest to
// highest: built-in defaults, a YAML file, ANKIMCP_* environment
// variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "ANKIMCP_"

// Config is the full server configuration.
type Config struct {
	// AnkiConnectURL is where the AnkiConnect add-on listens.
	AnkiConnectURL string `koanf:"ankiconnect_url" validate:"required,url"`
	// HTTPTimeoutSeconds bounds every AnkiConnect round-trip.
	HTTPTimeoutSeconds int `koanf:"http_timeout_seconds" validate:"gt=0"`

	// UTCOffsetMinutes and DayStartHour define the day-boundary
	// policy all streak and curve calculations share. The offset is
	// the learner's timezone as minutes east of UTC; the day-start
	// hour mirrors Anki's "next day starts at" preference.
	UTCOffsetMinutes int `koanf:"utc_offset_minutes" validate:"gte=-840,lte=840"`
	DayStartHour     int `koanf:"day_start_hour" validate:"gte=0,lte=23"`

	// Analytics defaults, overridable per tool call.
	DefaultWindowDays int `koanf:"default_window_days" validate:"gt=0"`
	EaseThreshold     int `koanf:"ease_threshold" validate:"gt=0"`
	LapseThreshold    int `koanf:"lapse_threshold" validate:"gt=0"`
	ProblemCardLimit  int `koanf:"problem_card_limit" validate:"gt=0"`

	// CachePath enables the local review-log cache when non-empty.
	CachePath string `koanf:"cache_path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		AnkiConnectURL:     "http://localhost:8765",
		HTTPTimeoutSeconds: 30,
		UTCOffsetMinutes:   0,
		DayStartHour:       0,
		DefaultWindowDays:  30,
		EaseThreshold:      2000,
		LapseThreshold:     8,
		ProblemCardLimit:   20,
	}
}

// HTTPTimeout returns the AnkiConnect timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load builds the configuration. path names a YAML file and may be
// empty; a missing file at the default location is fine, a missing
// explicitly named file is not. flags may be nil.
func Load(path string, explicit bool, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment config: %w", err)
	}

	if flags != nil {
		err := k.Load(posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		}), nil)
		if err != nil {
			return Config{}, fmt.Errorf("loading flag config: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
