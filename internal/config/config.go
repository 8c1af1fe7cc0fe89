// Package config loads process configuration for the s3-utils binary from
// the environment, an optional .env file and an optional YAML file.
package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "S3UTILS"

// Config holds the settings shared by every subcommand.
type Config struct {
	Backend             string
	Endpoint            string
	Region              string
	PathStyle           bool
	AccessKey           string
	SecretKey           string
	UseSSL              bool
	Timeout             time.Duration
	FinalizeConcurrency int
	PageSize            int
	LogLevel            string
}

// Load reads configuration. Environment variables such as S3UTILS_REGION
// take precedence over the file. When configFile is empty, s3-utils.yaml is
// looked up in the working directory and in $HOME/.config/s3-utils; a
// missing file is not an error.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewError("config", err).WithMessage("reading " + configFile)
		}
	} else {
		v.SetConfigName("s3-utils")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/s3-utils")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.NewError("config", err)
			}
		}
	}

	cfg := &Config{
		Backend:             strings.ToLower(v.GetString("backend")),
		Endpoint:            v.GetString("endpoint"),
		Region:              v.GetString("region"),
		PathStyle:           v.GetBool("path_style"),
		AccessKey:           v.GetString("access_key"),
		SecretKey:           v.GetString("secret_key"),
		UseSSL:              v.GetBool("use_ssl"),
		Timeout:             v.GetDuration("timeout"),
		FinalizeConcurrency: v.GetInt("finalize_concurrency"),
		PageSize:            v.GetInt("page_size"),
		LogLevel:            v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", string(s3types.BackendAWS))
	v.SetDefault("endpoint", "")
	v.SetDefault("region", "")
	v.SetDefault("path_style", false)
	v.SetDefault("access_key", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("use_ssl", true)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("finalize_concurrency", 1)
	v.SetDefault("page_size", int(s3types.DefaultPageSize))
	v.SetDefault("log_level", "info")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch s3types.Backend(c.Backend) {
	case s3types.BackendAWS, s3types.BackendMinio:
	default:
		return invalid("backend must be one of aws, minio; got %q", c.Backend)
	}

	if c.PageSize < 1 || c.PageSize > int(s3types.DefaultPageSize) {
		return invalid("page_size must be between 1 and %d; got %d", s3types.DefaultPageSize, c.PageSize)
	}

	if c.FinalizeConcurrency < 1 {
		return invalid("finalize_concurrency must be at least 1; got %d", c.FinalizeConcurrency)
	}

	if c.Timeout < 0 {
		return invalid("timeout cannot be negative")
	}

	if (c.AccessKey == "") != (c.SecretKey == "") {
		return invalid("access_key and secret_key must be set together")
	}

	return nil
}

func invalid(format string, args ...any) error {
	return errors.NewError("config", fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidInput}, args...)...))
}
