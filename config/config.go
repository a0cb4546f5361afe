package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds operator-facing settings for the audit server and CLI.
// Values come from an optional YAML file; SELLERSCOPE_* environment variables
// always override the file.
type Config struct {
	// Directories report files may be loaded from (path-list separated in env).
	AllowedDirs []string `yaml:"allowed_dirs" env:"SELLERSCOPE_ALLOWED_DIRS" env-separator:":"`

	Marketplace   string  `yaml:"marketplace" env:"SELLERSCOPE_MARKETPLACE" env-default:"US" validate:"required,len=2"`
	BreakevenACoS float64 `yaml:"breakeven_acos" env:"SELLERSCOPE_BREAKEVEN_ACOS" env-default:"30" validate:"gt=0,lte=100"`
	HeroTopN      int     `yaml:"hero_top_n" env:"SELLERSCOPE_HERO_TOP_N" env-default:"3" validate:"min=1,max=50"`

	MaxConcurrentRequests int           `yaml:"max_concurrent_requests" env:"SELLERSCOPE_MAX_CONCURRENT_REQUESTS" env-default:"10" validate:"min=1"`
	MaxConcurrentParses   int           `yaml:"max_concurrent_parses" env:"SELLERSCOPE_MAX_CONCURRENT_PARSES" env-default:"4" validate:"min=1"`
	MaxSessions           int           `yaml:"max_sessions" env:"SELLERSCOPE_MAX_SESSIONS" env-default:"16" validate:"min=1"`
	OperationTimeout      time.Duration `yaml:"operation_timeout" env:"SELLERSCOPE_OPERATION_TIMEOUT" env-default:"60s"`
	AcquireTimeout        time.Duration `yaml:"acquire_timeout" env:"SELLERSCOPE_ACQUIRE_TIMEOUT" env-default:"2s"`

	LogLevel string `yaml:"log_level" env:"SELLERSCOPE_LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn error"`
}

// Load reads configuration from path (when non-empty) with environment
// overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.Marketplace = strings.ToUpper(strings.TrimSpace(cfg.Marketplace))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
