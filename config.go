package pozeclient

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvBaseURL is the environment variable selecting the API origin. It
// overrides the config file when set.
const EnvBaseURL = "POZE_API_URL"

// Config is the client configuration loaded from YAML.
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`

	Storage struct {
		// Path of the LevelDB directory holding the persisted session.
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Retry struct {
		// Max is a pointer so an explicit 0 (retries disabled) is
		// distinguishable from an omitted key.
		Max            *int   `yaml:"max"`
		InitialBackoff string `yaml:"initial_backoff"`
		MaxBackoff     string `yaml:"max_backoff"`

		count      int
		initialDur time.Duration
		maxDur     time.Duration
	} `yaml:"retry"`
}

// RetryCount returns the configured retry.max, defaulted when omitted.
func (c Config) RetryCount() int { return c.Retry.count }

// InitialBackoff returns the parsed retry.initial_backoff duration.
func (c Config) InitialBackoff() time.Duration { return c.Retry.initialDur }

// MaxBackoff returns the parsed retry.max_backoff duration.
func (c Config) MaxBackoff() time.Duration { return c.Retry.maxDur }

// QueryPolicy returns the base query policy the config describes: the
// stock defaults with the retry block applied.
func (c Config) QueryPolicy() Policy {
	p := DefaultPolicy()
	p.RetryCount = c.Retry.count
	p.RetryBackoff = c.Retry.initialDur
	p.RetryMaxBackoff = c.Retry.maxDur
	return p
}

// LoadConfig reads and validates a YAML config file. POZE_API_URL, when
// set, takes precedence over api.base_url.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return finishConfig(cfg)
}

// DefaultConfig returns a config built purely from the environment.
func DefaultConfig() (Config, error) {
	return finishConfig(Config{})
}

func finishConfig(cfg Config) (Config, error) {
	if env := os.Getenv(EnvBaseURL); env != "" {
		cfg.API.BaseURL = env
	}
	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("api.base_url is required (or set %s)", EnvBaseURL)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./data/session"
	}

	cfg.Retry.count = 1
	if cfg.Retry.Max != nil {
		if *cfg.Retry.Max < 0 {
			return Config{}, fmt.Errorf("retry.max must be non-negative")
		}
		cfg.Retry.count = *cfg.Retry.Max
	}
	cfg.Retry.initialDur = 250 * time.Millisecond
	if cfg.Retry.InitialBackoff != "" {
		d, err := time.ParseDuration(cfg.Retry.InitialBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("retry.initial_backoff: %w", err)
		}
		cfg.Retry.initialDur = d
	}
	cfg.Retry.maxDur = 5 * time.Second
	if cfg.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(cfg.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("retry.max_backoff: %w", err)
		}
		cfg.Retry.maxDur = d
	}
	if cfg.Retry.maxDur < cfg.Retry.initialDur {
		return Config{}, fmt.Errorf("retry.max_backoff must be >= retry.initial_backoff")
	}

	return cfg, nil
}
