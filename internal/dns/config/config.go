// Package config loads the forwarder's settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/miekg/dns"

	"github.com/haukened/split-dns/internal/dns/common/utils"
	"github.com/haukened/split-dns/internal/dns/domain"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// PrivateDomains routes any name containing one of these to the private
	// nameserver. Comma or space separated in the environment.
	PrivateDomains []string `koanf:"private_domains" validate:"dive,private_domain"`

	// PrivateNameserver answers names matching PrivateDomains.
	PrivateNameserver string `koanf:"private_nameserver" validate:"required,ip"`

	// PublicNameserver answers everything else.
	PublicNameserver string `koanf:"public_nameserver" validate:"required,ip"`

	// UpstreamPort is the port both nameservers are queried on.
	UpstreamPort int `koanf:"upstream_port" validate:"required,gte=1,lte=65535"`

	// Port is the UDP port the forwarder listens on.
	Port int `koanf:"port" validate:"required,gte=1,lte=65535"`

	// ListenAddress is the local IP the forwarder binds to.
	ListenAddress string `koanf:"listen_address" validate:"required,ip"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	MatchMode            string `koanf:"match_mode" validate:"required,oneof=substring suffix"`
	MatchCaseInsensitive bool   `koanf:"match_case_insensitive"`
	MatchCacheSize       int    `koanf:"match_cache_size" validate:"gte=0"`

	UpstreamTimeout time.Duration `koanf:"upstream_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// RequirePrivateDomains rejects an empty PrivateDomains list at startup.
	RequirePrivateDomains bool `koanf:"require_private_domains"`
}

// DEFAULT_APP_CONFIG defines the default application configuration. Both
// nameservers default to Google's public resolver.
var DEFAULT_APP_CONFIG = AppConfig{
	PrivateDomains:        []string{},
	PrivateNameserver:     "8.8.8.8",
	PublicNameserver:      "8.8.8.8",
	UpstreamPort:          53,
	Port:                  53,
	ListenAddress:         "0.0.0.0",
	LogLevel:              "warn",
	Env:                   "prod",
	MatchMode:             "substring",
	MatchCaseInsensitive:  false,
	MatchCacheSize:        0,
	UpstreamTimeout:       5 * time.Second,
	RequestTimeout:        10 * time.Second,
	RequirePrivateDomains: false,
}

// envKeys lists the variables read from the environment. Anything else in
// the environment is ignored.
var envKeys = map[string]bool{
	"PRIVATE_DOMAINS":         true,
	"PRIVATE_NAMESERVER":      true,
	"PUBLIC_NAMESERVER":       true,
	"UPSTREAM_PORT":           true,
	"PORT":                    true,
	"LISTEN_ADDRESS":          true,
	"LOG_LEVEL":               true,
	"ENV":                     true,
	"MATCH_MODE":              true,
	"MATCH_CASE_INSENSITIVE":  true,
	"MATCH_CACHE_SIZE":        true,
	"UPSTREAM_TIMEOUT":        true,
	"REQUEST_TIMEOUT":         true,
	"REQUIRE_PRIVATE_DOMAINS": true,
}

// listKeys are split on commas and whitespace.
var listKeys = map[string]bool{
	"private_domains": true,
}

// ListenAddr returns the host:port the forwarder binds to.
func (c *AppConfig) ListenAddr() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.Port))
}

// PrivateEndpoint returns the private upstream.
func (c *AppConfig) PrivateEndpoint() (domain.UpstreamEndpoint, error) {
	return endpoint(c.PrivateNameserver, c.UpstreamPort)
}

// PublicEndpoint returns the public upstream.
func (c *AppConfig) PublicEndpoint() (domain.UpstreamEndpoint, error) {
	return endpoint(c.PublicNameserver, c.UpstreamPort)
}

func endpoint(addr string, port int) (domain.UpstreamEndpoint, error) {
	if port < 1 || port > 65535 {
		return domain.UpstreamEndpoint{}, fmt.Errorf("%w: upstream port %d out of range", domain.ErrConfig, port)
	}
	ep, err := domain.NewUpstreamEndpoint(addr, uint16(port))
	if err != nil {
		return domain.UpstreamEndpoint{}, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	return ep, nil
}

// PublicSuffixWarnings returns the private domains that are themselves public
// suffixes. Every name under such a suffix is routed to the private
// nameserver, which is almost never intended.
func (c *AppConfig) PublicSuffixWarnings() []string {
	var out []string
	for _, d := range c.PrivateDomains {
		if utils.IsPublicSuffix(strings.TrimPrefix(strings.TrimSpace(d), ".")) {
			out = append(out, d)
		}
	}
	return out
}

// validPrivateDomain accepts a domain name with an optional leading dot.
func validPrivateDomain(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	name = strings.TrimPrefix(name, ".")
	if name == "" {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}

// splitList splits a list variable on commas and whitespace.
func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// envLoader loads the allow-listed, unprefixed environment variables and
// lowercases their keys. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			if !envKeys[key] {
				return "", nil
			}
			key = strings.ToLower(key)
			value = strings.TrimSpace(value)

			if listKeys[key] {
				return key, splitList(value)
			}
			if value == "" {
				// Empty behaves like unset.
				return "", nil
			}
			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "private_domain" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("private_domain", validPrivateDomain)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically. Every
// failure wraps domain.ErrConfig.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("%w: error loading default config: %w", domain.ErrConfig, err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("%w: error loading env: %w", domain.ErrConfig, err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling config: %w", domain.ErrConfig, err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("%w: error registering validation: %w", domain.ErrConfig, err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: validation failed: %w", domain.ErrConfig, err)
	}

	if cfg.RequirePrivateDomains && len(cfg.PrivateDomains) == 0 {
		return nil, fmt.Errorf("%w: REQUIRE_PRIVATE_DOMAINS is set but PRIVATE_DOMAINS is empty", domain.ErrConfig)
	}

	return &cfg, nil
}
