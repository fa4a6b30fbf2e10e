package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"github.com/techsaints/landing/pkg/enum"
	"github.com/techsaints/landing/pkg/env"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const SubscriptionRateLimiterKey = "subscription"

var (
	FileReadErr                  = errors.New("could not read the config file")
	RawConfigStructValidationErr = errors.New("invalid config")
)

type rateLimiterRawConfig struct {
	Storage       string
	Window        time.Duration
	MaxRequests   int           `mapstructure:"max_requests"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type rawConfig struct {
	App struct {
		Name         string
		Description  string
		URL          string
		SupportEmail string `mapstructure:"support_email"`
	}
	RateLimits struct {
		Subscription rateLimiterRawConfig
	} `mapstructure:"rate_limits"`
	Validation struct {
		Email struct {
			MaxLength      int      `mapstructure:"max_length"`
			AllowedDomains []string `mapstructure:"allowed_domains"`
		}
	}
	Email struct {
		Templates struct {
			Welcome struct {
				Subject string
				Sender  struct {
					Name  string
					Email string
				}
			}
		}
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Tech Saints")
	v.SetDefault("app.description", "Building Saints with Technology")
	v.SetDefault("app.url", "https://techsaints.dev")
	v.SetDefault("app.support_email", "support@techsaints.dev")

	v.SetDefault("rate_limits.subscription.storage", enum.MemoryStorage.String())
	v.SetDefault("rate_limits.subscription.window", "15m")
	v.SetDefault("rate_limits.subscription.max_requests", 5)
	v.SetDefault("rate_limits.subscription.sweep_interval", "5m")

	v.SetDefault("validation.email.max_length", 254)
	v.SetDefault("validation.email.allowed_domains", []string{})

	v.SetDefault("email.templates.welcome.subject", "Welcome to Tech Saints - Building Saints with Technology")
	v.SetDefault("email.templates.welcome.sender.name", "Rhyan from Tech Saints")
	v.SetDefault("email.templates.welcome.sender.email", "hello@rhyan.dev")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

type AppConfig struct {
	Name         string
	Description  string
	URL          string
	SupportEmail string
}

type RateLimiterConfig struct {
	Storage       enum.Storage
	Window        time.Duration
	MaxRequests   int
	SweepInterval time.Duration // memory storage only, 0 disables the sweeper
}

func (r RateLimiterConfig) validate() error {
	if r.Window <= 0 {
		return errors.New("rate limiter window must not be less than or equal to zero")
	}

	if r.MaxRequests <= 0 {
		return errors.New("rate limiter max_requests must not be less than or equal to zero")
	}

	if r.SweepInterval < 0 {
		return errors.New("rate limiter sweep_interval must not be negative")
	}

	return nil
}

type EmailValidationConfig struct {
	MaxLength      int
	AllowedDomains []string // lower-cased, empty means every domain is allowed
}

type Sender struct {
	Name  string
	Email string
}

type WelcomeEmailConfig struct {
	Subject string
	Sender  Sender
}

type MetricConfig struct {
	Enabled bool
	Path    string
}

type Config struct {
	App             AppConfig
	RateLimiters    map[string]RateLimiterConfig
	EmailValidation EmailValidationConfig
	WelcomeEmail    WelcomeEmailConfig
	Metrics         MetricConfig
}

func (c *Config) SubscriptionRateLimiter() RateLimiterConfig {
	return c.RateLimiters[SubscriptionRateLimiterKey]
}

func parseStorageConfig(storage string) (enum.Storage, error) {
	switch strings.ToLower(strings.TrimSpace(storage)) {
	case "memory":
		return enum.MemoryStorage, nil
	case "redis":
		return enum.RedisStorage, nil
	default:
		return enum.MemoryStorage, fmt.Errorf("unknown rate limiter storage %q", storage)
	}
}

func parseRateLimiterConfig(rlCfg rateLimiterRawConfig) (*RateLimiterConfig, error) {
	storage, err := parseStorageConfig(rlCfg.Storage)
	if err != nil {
		return nil, err
	}

	rateLimiter := RateLimiterConfig{
		Storage:       storage,
		Window:        rlCfg.Window,
		MaxRequests:   rlCfg.MaxRequests,
		SweepInterval: rlCfg.SweepInterval,
	}

	if err := rateLimiter.validate(); err != nil {
		return nil, err
	}

	return &rateLimiter, nil
}

func parseEmailValidationConfig(rc *rawConfig) (*EmailValidationConfig, error) {
	if rc.Validation.Email.MaxLength <= 0 {
		return nil, errors.New("validation.email.max_length must be greater than zero")
	}

	domains := make([]string, 0, len(rc.Validation.Email.AllowedDomains))
	for _, domain := range rc.Validation.Email.AllowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			domains = append(domains, domain)
		}
	}

	return &EmailValidationConfig{
		MaxLength:      rc.Validation.Email.MaxLength,
		AllowedDomains: domains,
	}, nil
}

func parseWelcomeEmailConfig(rc *rawConfig) (*WelcomeEmailConfig, error) {
	welcome := rc.Email.Templates.Welcome
	if strings.TrimSpace(welcome.Subject) == "" {
		return nil, errors.New("email.templates.welcome.subject could not be empty")
	}

	if strings.TrimSpace(welcome.Sender.Email) == "" {
		return nil, errors.New("email.templates.welcome.sender.email could not be empty")
	}

	return &WelcomeEmailConfig{
		Subject: welcome.Subject,
		Sender: Sender{
			Name:  welcome.Sender.Name,
			Email: welcome.Sender.Email,
		},
	}, nil
}

func parseMetricConfig(rc *rawConfig) (*MetricConfig, error) {
	if rc.Metrics.Path == "" {
		return nil, errors.New("metrics path could not be empty")
	}

	if !strings.HasPrefix(rc.Metrics.Path, "/") {
		return nil, errors.New("metrics path must start with a slash")
	}

	return &MetricConfig{
		Enabled: rc.Metrics.Enabled,
		Path:    rc.Metrics.Path,
	}, nil
}

func parseRawConfig(rc *rawConfig) (*Config, error) {
	subscription, err := parseRateLimiterConfig(rc.RateLimits.Subscription)
	if err != nil {
		return nil, fmt.Errorf("rate_limits.subscription: %w", err)
	}

	emailValidation, err := parseEmailValidationConfig(rc)
	if err != nil {
		return nil, err
	}

	welcome, err := parseWelcomeEmailConfig(rc)
	if err != nil {
		return nil, err
	}

	metric, err := parseMetricConfig(rc)
	if err != nil {
		return nil, err
	}

	return &Config{
		App: AppConfig{
			Name:         rc.App.Name,
			Description:  rc.App.Description,
			URL:          rc.App.URL,
			SupportEmail: rc.App.SupportEmail,
		},
		RateLimiters: map[string]RateLimiterConfig{
			SubscriptionRateLimiterKey: *subscription,
		},
		EmailValidation: *emailValidation,
		WelcomeEmail:    *welcome,
		Metrics:         *metric,
	}, nil
}

// newConfig reads the yaml file at path on top of the defaults.
// An empty path yields the defaults alone.
func newConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		slog.Info("loading config", "path", path)
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", FileReadErr, err)
		}
	}

	var rc rawConfig
	if err := v.Unmarshal(&rc); err != nil {
		return nil, fmt.Errorf("%w: unable to decode raw config: %v", RawConfigStructValidationErr, err)
	}

	cfg, err := parseRawConfig(&rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", RawConfigStructValidationErr, err)
	}

	return cfg, nil
}

var (
	once           sync.Once
	configInstance *Config
)

func GetConfig() *Config {
	once.Do(func() {
		var err error
		configInstance, err = newConfig(env.GetEnv().ConfigFile)
		if err != nil {
			log.Fatalf("Could not create new config err: %v", err)
		}
	})
	return configInstance
}
