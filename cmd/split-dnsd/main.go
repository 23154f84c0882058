package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukened/split-dns/internal/dns/common/clock"
	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/config"
	"github.com/haukened/split-dns/internal/dns/gateways/transport"
	"github.com/haukened/split-dns/internal/dns/gateways/upstream"
	"github.com/haukened/split-dns/internal/dns/gateways/wire"
	"github.com/haukened/split-dns/internal/dns/repos/matcher"
	"github.com/haukened/split-dns/internal/dns/repos/matcher/bloom"
	"github.com/haukened/split-dns/internal/dns/repos/matcher/lru"
	"github.com/haukened/split-dns/internal/dns/services/router"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "split-dnsd"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the forwarder
type Application struct {
	config    *config.AppConfig
	matcher   *matcher.Matcher
	transport router.ServerTransport
	router    *router.Router

	shutdownTimeout time.Duration
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info(map[string]any{
		"app":                appName,
		"version":            version,
		"env":                cfg.Env,
		"log_level":          cfg.LogLevel,
		"listen":             cfg.ListenAddr(),
		"private_domains":    cfg.PrivateDomains,
		"private_nameserver": cfg.PrivateNameserver,
		"public_nameserver":  cfg.PublicNameserver,
		"upstream_port":      cfg.UpstreamPort,
		"match_mode":         cfg.MatchMode,
	}, "Starting split-dns forwarder")

	for _, d := range cfg.PublicSuffixWarnings() {
		log.Warn(map[string]any{"domain": d}, "Private domain is a public suffix; every name under it will be routed privately")
	}

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "split-dns forwarder stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()
	codec := wire.NewUDPCodec(logger)

	m, err := buildMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build domain matcher: %w", err)
	}

	private, public, err := buildUpstreams(cfg, codec)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream resolvers: %w", err)
	}

	r, err := router.New(router.Options{
		Matcher:        m,
		Private:        private,
		Public:         public,
		Logger:         logger,
		Clock:          clock.RealClock{},
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	t, err := transport.NewTransport(transport.TransportUDP, cfg.ListenAddr(), codec, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build transport: %w", err)
	}

	return &Application{
		config:          cfg,
		matcher:         m,
		transport:       t,
		router:          r,
		shutdownTimeout: defaultShutdownTimeout,
	}, nil
}

// buildMatcher compiles the private domain predicate with its decision
// cache and suffix prefilter.
func buildMatcher(cfg *config.AppConfig) (*matcher.Matcher, error) {
	cache, err := lru.New(cfg.MatchCacheSize)
	if err != nil {
		return nil, err
	}

	m, err := matcher.New(matcher.Options{
		Domains:         cfg.PrivateDomains,
		Mode:            matcher.Mode(cfg.MatchMode),
		CaseInsensitive: cfg.MatchCaseInsensitive,
		RequireDomains:  cfg.RequirePrivateDomains,
		Cache:           cache,
		Blooms:          bloom.NewFactory(),
	})
	if err != nil {
		return nil, err
	}

	log.Info(map[string]any{
		"domains":          m.Domains(),
		"mode":             string(m.Mode()),
		"case_insensitive": cfg.MatchCaseInsensitive,
		"cache_size":       cfg.MatchCacheSize,
	}, "Domain matcher configured")
	if len(m.Domains()) == 0 {
		log.Warn(nil, "No private domains configured; all queries go to the public nameserver")
	}
	return m, nil
}

// buildUpstreams creates one resolver per route.
func buildUpstreams(cfg *config.AppConfig, codec wire.DNSCodec) (private, public *upstream.Resolver, err error) {
	privEP, err := cfg.PrivateEndpoint()
	if err != nil {
		return nil, nil, err
	}
	pubEP, err := cfg.PublicEndpoint()
	if err != nil {
		return nil, nil, err
	}

	private, err = upstream.NewResolver(upstream.Options{Endpoint: privEP, Timeout: cfg.UpstreamTimeout, Codec: codec})
	if err != nil {
		return nil, nil, err
	}
	public, err = upstream.NewResolver(upstream.Options{Endpoint: pubEP, Timeout: cfg.UpstreamTimeout, Codec: codec})
	if err != nil {
		return nil, nil, err
	}

	log.Info(map[string]any{
		"private": privEP.String(),
		"public":  pubEP.String(),
		"timeout": cfg.UpstreamTimeout.String(),
	}, "Upstream resolvers configured")
	return private, public, nil
}

// Run starts the forwarder and blocks until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx, app.router); err != nil {
		return fmt.Errorf("failed to start UDP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "UDP",
	}, "DNS server started")

	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- app.transport.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warn(map[string]any{"error": err}, "Error during transport shutdown")
		}
		hits, misses, evictions := app.matcher.CacheStats()
		log.Info(map[string]any{
			"cache_hits":      hits,
			"cache_misses":    misses,
			"cache_evictions": evictions,
		}, "Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": app.shutdownTimeout.String()}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}
}
