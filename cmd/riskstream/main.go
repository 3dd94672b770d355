package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"riskstream/internal/config"
	"riskstream/internal/engine"
	"riskstream/internal/logging"
	"riskstream/internal/metrics"
	"riskstream/pkg/publish"
	"riskstream/pkg/stream"
)

const (
	AppName           = "Risk Stream"
	AppVersion        = "1.0.0"
	DefaultConfigPath = "./config.json"
)

var (
	configPath = flag.String("config", DefaultConfigPath, "Path to configuration file")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
	version    = flag.Bool("version", false, "Show version information")

	cfg    *config.Config
	logger *logging.Logger
)

// Application wires the engine, provider, publisher and metrics listener
type Application struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine        *engine.RiskEngine
	provider      stream.TickProvider
	publisher     publish.Publisher
	metricsServer *http.Server
}

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		os.Exit(0)
	}

	app, err := initializeApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.run(); err != nil {
		logger.Fatalf("Application failed: %v", err)
	}

	logger.Info("Application shutdown completed")
}

// initializeApplication loads config and builds all components
func initializeApplication() (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{ctx: ctx, cancel: cancel}

	var err error
	cfg, err = config.LoadConfig(*configPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if *debugMode {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
	}

	logger = logging.NewLogger(cfg.Logging)
	logging.InitGlobalLogger(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": cfg.App.Environment,
		"config_path": *configPath,
		"instruments": len(cfg.Instruments),
	}).Info("Starting risk stream")

	if err := cfg.Validate(); err != nil {
		cancel()
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	app.setupSignalHandling()

	return app, nil
}

// initializeComponents builds the engine, tick provider and output sink
func (app *Application) initializeComponents() error {
	var err error

	app.engine, err = engine.NewRiskEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to create risk engine: %w", err)
	}

	app.provider, err = stream.NewProvider(cfg.Stream)
	if err != nil {
		return fmt.Errorf("failed to create tick provider: %w", err)
	}

	app.publisher, err = publish.NewPublisher(cfg.Publish)
	if err != nil {
		return fmt.Errorf("failed to create publisher: %w", err)
	}

	return nil
}

// setupSignalHandling cancels the root context on SIGINT/SIGTERM
func (app *Application) setupSignalHandling() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("Signal received, initiating shutdown")
		app.cancel()
	}()
}

// run starts the engine and blocks until shutdown
func (app *Application) run() error {
	app.startMetricsListener()

	if err := app.engine.Start(app.ctx, app.provider, app.publisher); err != nil {
		return fmt.Errorf("failed to start risk engine: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Stream.ProviderType,
		"sink":     cfg.Publish.SinkType,
	}).Info("Risk stream running")

	<-app.ctx.Done()

	return app.shutdown()
}

// startMetricsListener exposes Prometheus metrics when configured
func (app *Application) startMetricsListener() {
	if cfg.App.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	app.metricsServer = &http.Server{Addr: cfg.App.MetricsAddr, Handler: mux}

	go func() {
		logger.WithField("addr", cfg.App.MetricsAddr).Info("Metrics listener started")
		if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics listener failed")
		}
	}()
}

// shutdown stops everything in dependency order
func (app *Application) shutdown() error {
	logger.Info("Shutting down")

	if err := app.engine.Stop(); err != nil {
		logger.WithError(err).Warn("Engine stop reported an error")
	}

	if app.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Metrics listener shutdown failed")
		}
	}

	return nil
}
