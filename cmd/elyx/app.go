package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent"
	"github.com/chinmaygupta26/elyx/agent/conversation"
	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/agent/persistence"
	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/internal/metrics"
	"github.com/chinmaygupta26/elyx/internal/server"
	"github.com/chinmaygupta26/elyx/internal/telemetry"
	"github.com/chinmaygupta26/elyx/llm"
	llmfactory "github.com/chinmaygupta26/elyx/llm/factory"
	"github.com/chinmaygupta26/elyx/types"
)

// newProvider builds the model backend; tests replace it.
var newProvider = func(ctx context.Context, cfg config.LLMConfig, opts llmfactory.Options, logger *zap.Logger) (llm.Provider, error) {
	return llmfactory.NewProvider(ctx, cfg, opts, logger)
}

// sessionFlags are shared by chat and simulate.
type sessionFlags struct {
	configPath  string
	provider    string
	model       string
	rosterPath  string
	metricsAddr string
}

func parseSessionFlags(name string, args []string, stderr io.Writer) (sessionFlags, error) {
	var f sessionFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Path to config file")
	fs.StringVar(&f.provider, "provider", "", "LLM provider (gemini, anthropic)")
	fs.StringVar(&f.model, "model", "", "Model name")
	fs.StringVar(&f.rosterPath, "roster", "", "Participant roster file")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// loadConfig loads the config file (if any) with ELYX_ environment overrides.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// App wiring
// =============================================================================

// app holds everything a session needs.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	otel       *telemetry.Providers
	collector  *metrics.Collector
	metricsSrv *server.Manager
	store      persistence.TranscriptStore
	team       *agent.Team
	router     *handoff.Router
}

func newApp(ctx context.Context, f sessionFlags) (*app, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.provider != "" {
		cfg.LLM.Provider = f.provider
	}
	if f.model != "" {
		cfg.LLM.Model = f.model
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = f.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &app{cfg: cfg, logger: initLogger(cfg.Log)}
	if err := a.init(ctx, f); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, f sessionFlags) error {
	a.logger.Info("starting elyx",
		zap.String("version", Version),
		zap.String("provider", a.cfg.LLM.Provider),
		zap.String("model", a.cfg.LLM.Model),
	)

	otelProviders, err := telemetry.Init(a.cfg.Telemetry, a.logger)
	if err != nil {
		a.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	a.otel = otelProviders

	var providerOpts llmfactory.Options
	providerOpts.Tracer = telemetry.Tracer()
	if a.cfg.Metrics.Enabled {
		a.collector = metrics.NewCollector(a.cfg.Metrics.Namespace, a.logger)
		providerOpts.Observer = a.collector
		if err := a.serveMetrics(); err != nil {
			return err
		}
	}

	provider, err := newProvider(ctx, a.cfg.LLM, providerOpts, a.logger)
	if err != nil {
		return fmt.Errorf("create llm provider: %w", err)
	}

	roster, err := agent.LoadRoster(f.rosterPath)
	if err != nil {
		return err
	}
	a.team, err = agent.NewTeam(roster, provider, agent.Config{
		Model:     a.cfg.LLM.Model,
		MaxTokens: a.cfg.LLM.MaxTokens,
		Timeout:   a.cfg.LLM.Timeout,
	}, a.logger)
	if err != nil {
		return err
	}

	var classifier handoff.Classifier
	if c, err := a.team.Classifier(); err == nil {
		classifier = c
	} else {
		a.logger.Warn("no router persona, every message stays with the orchestrator", zap.Error(err))
	}
	a.router = handoff.NewRouter(classifier, roster, a.logger)

	if persistence.StoreType(a.cfg.Transcript.Store) != persistence.StoreTypeNone {
		a.store, err = persistence.NewTranscriptStore(ctx, a.cfg.Transcript, a.logger)
		if err != nil {
			a.logger.Warn("transcript store unavailable, sessions will not be saved", zap.Error(err))
			a.store = nil
		}
	}
	return nil
}

func (a *app) serveMetrics() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = a.cfg.Metrics.Addr
	a.metricsSrv = server.NewManager(mux, srvCfg, a.logger)
	if err := a.metricsSrv.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}
	a.logger.Info("metrics endpoint listening", zap.String("addr", a.metricsSrv.Addr()))
	return nil
}

// controllerOptions fills the instrumentation of a driver config.
func (a *app) controllerOptions(opts *conversation.Options, sink conversation.EventSink) {
	opts.Logger = a.logger
	opts.Tracer = telemetry.Tracer()
	if a.collector != nil {
		opts.Metrics = a.collector
	}

	sinks := conversation.MultiSink{sink}
	if a.store != nil {
		sinks = append(sinks, conversation.NewTranscriptSink(a.store, a.logger))
	}
	opts.Sink = sinks
}

func (a *app) roster() *types.Roster { return a.team.Roster() }

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close transcript store", zap.Error(err))
		}
	}
	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown metrics server", zap.Error(err))
		}
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown telemetry", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// =============================================================================
// chat / simulate
// =============================================================================

func runChat(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseSessionFlags("chat", args, stderr)
	if err != nil {
		return exitCode(err)
	}
	a, err := newApp(ctx, f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	cfg := conversation.InteractiveConfig(a.cfg.Conversation)
	cfg.Prompt = stdout
	a.controllerOptions(&cfg.Controller, conversation.NewConsoleRenderer(stdout, a.roster()))

	driver := conversation.NewInteractiveDriver(a.roster(), a.team, a.router, stdin, cfg)
	return a.finish(driver.Run(ctx))
}

func runSimulate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseSessionFlags("simulate", args, stderr)
	if err != nil {
		return exitCode(err)
	}
	a, err := newApp(ctx, f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	cfg := conversation.SimulatedConfig(a.cfg.Conversation)
	renderer := conversation.NewConsoleRenderer(stdout, a.roster(),
		conversation.WithCounterpartEcho(true),
		conversation.WithBanner(conversation.SimulatedBanner(a.roster().Counterpart())),
	)
	a.controllerOptions(&cfg.Controller, renderer)

	driver := conversation.NewSimulatedDriver(a.roster(), a.team, a.router, cfg)
	return a.finish(driver.Run(ctx))
}

func (a *app) finish(res *conversation.Result, err error) int {
	if err != nil {
		a.logger.Error("session failed", zap.Error(err))
		return 1
	}
	a.logger.Info("session finished",
		zap.String("session_id", res.SessionID),
		zap.String("reason", string(res.Reason)),
		zap.Int("turns", res.TurnCount),
		zap.Int("handoffs", len(res.Handoffs)),
		zap.Duration("duration", res.Duration),
	)
	return 0
}

func exitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}
