package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "cijsubs/1.0 (+personal transcript downloader)"

// EnvPrefix namespaces environment variables, e.g. CIJSUBS_OUTPUT_DIR.
const EnvPrefix = "CIJSUBS"

type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	OutputDir     string        `mapstructure:"output_dir"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	Jitter        time.Duration `mapstructure:"jitter"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Pause         time.Duration `mapstructure:"pause"` // wait before every transcript request
	ClientTimeout time.Duration `mapstructure:"client_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	LogLevel      string        `mapstructure:"log_level"`
	MetricsFile   string        `mapstructure:"metrics_file"` // node exporter textfile, empty disables
	SentryDSN     string        `mapstructure:"sentry_dsn"`
}

var logger zerolog.Logger

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// SetDefaults registers the default value of every option on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://cijapanese.com")
	v.SetDefault("output_dir", "transcripts")
	v.SetDefault("base_delay", time.Second)
	v.SetDefault("max_delay", 30*time.Second)
	v.SetDefault("jitter", 250*time.Millisecond)
	v.SetDefault("max_attempts", 5)
	v.SetDefault("pause", 200*time.Millisecond)
	v.SetDefault("client_timeout", 30*time.Second)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_file", "")
	v.SetDefault("sentry_dsn", "")
}

// Load reads config.yaml (or configFile when set), CIJSUBS_* environment
// variables and the given command-line flags, in increasing precedence.
// Flags are bound by name with "-" mapped to "_", so --output-dir sets output_dir.
func Load(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL", EnvPrefix+"_LOG_LEVEL")

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || f.Name == "config" {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &cfg, nil
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive, got %s", c.BaseDelay)
	}
	if c.MaxDelay <= c.BaseDelay {
		return fmt.Errorf("max_delay (%s) must exceed base_delay (%s)", c.MaxDelay, c.BaseDelay)
	}
	// Keeps consecutive backoff waits increasing despite jitter.
	if c.Jitter < 0 || 2*c.Jitter >= c.BaseDelay {
		return fmt.Errorf("jitter must be at least 0 and below half of base_delay, got %s", c.Jitter)
	}
	if wait, ok := c.lastRetryWait(); !ok {
		return fmt.Errorf("max_delay (%s) must cover the last retry wait (%s) plus jitter (%s), lower max_attempts or raise max_delay",
			c.MaxDelay, wait, c.Jitter)
	}
	if c.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", c.Pause)
	}
	if c.ClientTimeout <= 0 {
		return fmt.Errorf("client_timeout must be positive, got %s", c.ClientTimeout)
	}
	return nil
}

// lastRetryWait returns the wait before the final attempt, base_delay doubled
// once per retry, and whether it still fits under max_delay with jitter added.
// Waits capped at max_delay would stop growing.
func (c *Config) lastRetryWait() (time.Duration, bool) {
	limit := c.MaxDelay - c.Jitter
	wait := c.BaseDelay
	for i := 2; i < c.MaxAttempts; i++ {
		if wait > limit/2 {
			return 2 * wait, false
		}
		wait *= 2
	}
	return wait, c.MaxAttempts < 2 || wait <= limit
}

// ConfigureLogger parses level and applies it globally. An invalid level
// falls back to info with a warning.
func ConfigureLogger(level string) {
	parsed := zerolog.InfoLevel // default
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			parsed = l
		} else {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(parsed)
	logger = logger.Level(parsed)
	logger.Debug().Str("level", parsed.String()).Msg("Logging configured")
}

func GetLogger() zerolog.Logger {
	return logger
}
