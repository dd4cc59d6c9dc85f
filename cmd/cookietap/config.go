package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "COOKIETAP"

const (
	storeMemory   = "memory"
	storePostgres = "postgres"

	adapterPGX  = "pgx"
	adapterSQL  = "sql"
	adapterSQLX = "sqlx"

	sinkFormatLog   = "log"
	sinkFormatJSONL = "jsonl"
	sinkFormatBoth  = "both"

	logFormatText = "text"
	logFormatJSON = "json"
	logFormatOTel = "otel"

	metricsBackendPrometheus = "prometheus"
	metricsBackendOTel       = "otel"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete cookietap configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type StoreConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	Adapter string `mapstructure:"adapter"`
	Table   string `mapstructure:"table"`
}

type SinkConfig struct {
	Format     string `mapstructure:"format"`
	Stack      bool   `mapstructure:"stack"`
	TraceDepth int    `mapstructure:"trace_depth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.type", storeMemory)
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.adapter", adapterPGX)
	v.SetDefault("store.postgres.table", "cookies")
	v.SetDefault("sink.format", sinkFormatLog)
	v.SetDefault("sink.stack", false)
	v.SetDefault("sink.trace_depth", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logFormatText)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.backend", metricsBackendPrometheus)
	v.SetDefault("tracing.enabled", false)
}

// loadConfig reads configFile (if set) and the environment into a validated Config.
func loadConfig(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	switch c.Store.Type {
	case storeMemory:
	case storePostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres.dsn is required for the postgres store"))
		}

		if !oneOf(c.Store.Postgres.Adapter, adapterPGX, adapterSQL, adapterSQLX) {
			errs = append(errs, fmt.Errorf("store.postgres.adapter %q is not one of pgx, sql, sqlx", c.Store.Postgres.Adapter))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type %q is not one of memory, postgres", c.Store.Type))
	}

	if !oneOf(c.Sink.Format, sinkFormatLog, sinkFormatJSONL, sinkFormatBoth) {
		errs = append(errs, fmt.Errorf("sink.format %q is not one of log, jsonl, both", c.Sink.Format))
	}

	if c.Sink.TraceDepth < 0 {
		errs = append(errs, fmt.Errorf("sink.trace_depth %d must not be negative", c.Sink.TraceDepth))
	}

	if !oneOf(c.Log.Format, logFormatText, logFormatJSON, logFormatOTel) {
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json, otel", c.Log.Format))
	}

	if !oneOf(c.Metrics.Backend, metricsBackendPrometheus, metricsBackendOTel) {
		errs = append(errs, fmt.Errorf("metrics.backend %q is not one of prometheus, otel", c.Metrics.Backend))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func oneOf(value string, allowed ...string) bool {
	return slices.Contains(allowed, value)
}
