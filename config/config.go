// Package config loads askdata settings from an optional askdata.yaml,
// ASKDATA_* environment variables, and built-in defaults, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/translator"
)

// EnvPrefix is prepended to every environment override: llm.api_key is read
// from ASKDATA_LLM_API_KEY.
const EnvPrefix = "ASKDATA"

// Config is the full application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Server   ServerConfig   `mapstructure:"server"`
	S3       S3Config       `mapstructure:"s3"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// LLMConfig selects and authenticates the parser model.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxUploadMB    int64         `mapstructure:"max_upload_mb"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// S3Config points at an S3-compatible object store for remote datasets.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// PostgresConfig holds the connection string for query-backed datasets.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider: translator.ProviderOpenRouter,
			Timeout:  30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    32,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		S3: S3Config{
			UseSSL: true,
		},
	}
}

// Load reads askdata.yaml from dir (if present) and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("askdata")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	// Provider-specific key names are honored for compatibility.
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENROUTER_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind llm.api_key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		log.Printf("⚙️ AskData: no askdata.yaml found, using defaults and env vars")
	} else {
		log.Printf("⚙️ AskData: loaded %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.access_key", d.S3.AccessKey)
	v.SetDefault("s3.secret_key", d.S3.SecretKey)
	v.SetDefault("s3.use_ssl", d.S3.UseSSL)

	v.SetDefault("postgres.dsn", d.Postgres.DSN)
}

// Translator converts the LLM section into a translator config.
func (c LLMConfig) Translator() translator.Config {
	return translator.Config{
		Provider: c.Provider,
		APIKey:   c.APIKey,
		Model:    c.Model,
		Endpoint: c.Endpoint,
		Timeout:  c.Timeout,
	}
}

// Dataset converts the S3 section into a dataset loader config.
func (c S3Config) Dataset() dataset.S3Config {
	return dataset.S3Config{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
	}
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
