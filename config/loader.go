// =============================================================================
// 📦 Elyx configuration loader
// =============================================================================
// YAML file plus environment overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("elyx.yaml").
//	    WithEnvPrefix("ELYX").
//	    Load()
//
// Precedence: defaults → YAML file → environment
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 Configuration structure
// =============================================================================

// Config is the complete Elyx configuration.
type Config struct {
	Conversation ConversationConfig `yaml:"conversation" env:"CONVERSATION"`
	LLM          LLMConfig          `yaml:"llm" env:"LLM"`
	Log          LogConfig          `yaml:"log" env:"LOG"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" env:"TELEMETRY"`
	Metrics      MetricsConfig      `yaml:"metrics" env:"METRICS"`
	Transcript   TranscriptConfig   `yaml:"transcript" env:"TRANSCRIPT"`
}

// ConversationConfig tunes the turn controller and the drivers.
type ConversationConfig struct {
	// Upper bound on the session turn count
	TurnCeiling int `yaml:"turn_ceiling" env:"TURN_CEILING"`
	// Turns added per completed cycle
	TurnsPerCycle int `yaml:"turns_per_cycle" env:"TURNS_PER_CYCLE"`
	// Running context budget, in characters
	ContextBudget int `yaml:"context_budget" env:"CONTEXT_BUDGET"`
	// Max characters of a specialist reply kept in the running context
	SnippetLimit int `yaml:"snippet_limit" env:"SNIPPET_LIMIT"`
	// Specialist exchanges allowed per hand-off in simulated mode (0 = unbounded)
	SimulatedExchanges int `yaml:"simulated_exchanges" env:"SIMULATED_EXCHANGES"`
	// Specialist exchanges allowed per hand-off in interactive mode (0 = unbounded)
	InteractiveExchanges int `yaml:"interactive_exchanges" env:"INTERACTIVE_EXCHANGES"`
	// First counterpart line of a simulated session
	OpeningLine string `yaml:"opening_line" env:"OPENING_LINE"`
	// Orchestrator follow-up after a closed hand-off
	FollowUp string `yaml:"follow_up" env:"FOLLOW_UP"`

	SatisfactionKeywords []string `yaml:"satisfaction_keywords" env:"SATISFACTION_KEYWORDS"`
	EndKeywords          []string `yaml:"end_keywords" env:"END_KEYWORDS"`
	ExitCommands         []string `yaml:"exit_commands" env:"EXIT_COMMANDS"`
}

// LLMConfig selects and tunes the model backend.
type LLMConfig struct {
	// gemini, anthropic
	Provider string `yaml:"provider" env:"PROVIDER"`
	Model    string `yaml:"model" env:"MODEL"`
	APIKey   string `yaml:"api_key" env:"API_KEY"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	// Per-request timeout
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxTokens  int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`
	// Client-side request rate; 0 disables limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// json, console
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// MetricsConfig controls the Prometheus collector and its HTTP endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Addr      string `yaml:"addr" env:"ADDR"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// TranscriptConfig selects where turn events are persisted.
type TranscriptConfig struct {
	// none, memory, file, redis, database
	Store string `yaml:"store" env:"STORE"`
	// Directory of the file store
	Dir      string         `yaml:"dir" env:"DIR"`
	Redis    RedisConfig    `yaml:"redis" env:"REDIS"`
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`
}

// RedisConfig Redis connection settings.
type RedisConfig struct {
	Addr      string        `yaml:"addr" env:"ADDR"`
	Password  string        `yaml:"password" env:"PASSWORD"`
	DB        int           `yaml:"db" env:"DB"`
	KeyPrefix string        `yaml:"key_prefix" env:"KEY_PREFIX"`
	TTL       time.Duration `yaml:"ttl" env:"TTL"`
}

// DatabaseConfig SQL connection settings.
type DatabaseConfig struct {
	// postgres, mysql, sqlite
	Driver          string        `yaml:"driver" env:"DRIVER"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Name            string        `yaml:"name" env:"NAME"`
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// =============================================================================
// 🔧 Loader
// =============================================================================

// Loader builds a Config (builder style).
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the ELYX env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "ELYX",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load builds the configuration: defaults → YAML file → environment → validators.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks struct fields recursively using their env tags.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// comma separated
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// =============================================================================
// 🔍 Helpers
// =============================================================================

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []string

	conv := c.Conversation
	if conv.TurnCeiling < 1 {
		errs = append(errs, "conversation.turn_ceiling must be at least 1")
	}
	if conv.TurnsPerCycle < 1 {
		errs = append(errs, "conversation.turns_per_cycle must be at least 1")
	}
	if conv.ContextBudget < 1 {
		errs = append(errs, "conversation.context_budget must be at least 1")
	}
	if conv.SnippetLimit < 1 {
		errs = append(errs, "conversation.snippet_limit must be at least 1")
	}
	if conv.SimulatedExchanges < 0 || conv.InteractiveExchanges < 0 {
		errs = append(errs, "conversation exchange budgets must not be negative")
	}

	switch c.LLM.Provider {
	case "gemini", "anthropic":
	default:
		errs = append(errs, fmt.Sprintf("unsupported llm.provider %q", c.LLM.Provider))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, "llm.max_retries must not be negative")
	}

	switch c.Transcript.Store {
	case "", "none", "memory", "file", "redis", "database":
	default:
		errs = append(errs, fmt.Sprintf("unsupported transcript.store %q", c.Transcript.Store))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DSN returns the driver-specific connection string.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
