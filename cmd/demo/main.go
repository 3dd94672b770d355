package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riskstream/internal/config"
	"riskstream/internal/engine"
	"riskstream/internal/explain"
	"riskstream/internal/logging"
	"riskstream/internal/types"
	"riskstream/pkg/publish"
	"riskstream/pkg/stream"
)

var (
	duration = flag.Duration("duration", 30*time.Second, "How long to run the demo")
	interval = flag.Duration("interval", 250*time.Millisecond, "Simulated tick interval")
	seed     = flag.Int64("seed", 42, "Simulation seed")
)

// explainingPublisher wraps the log sink, keeps recent snapshots as
// context and prints an explanation for every event
type explainingPublisher struct {
	inner     publish.Publisher
	explainer explain.Explainer
	context   *explain.ContextBuffer
}

func (ep *explainingPublisher) PublishMetrics(ctx context.Context, snapshot types.MetricsSnapshot) error {
	ep.context.Push(snapshot)
	fmt.Printf("[%s] %s  price=%.2f  delta=%.4f  gamma=%.6f  score=%.1f  regime=%s\n",
		snapshot.Timestamp.Format("15:04:05.000"),
		snapshot.InstrumentID,
		snapshot.UnderlyingPrice,
		snapshot.Greeks.Delta,
		snapshot.Greeks.Gamma,
		snapshot.RiskScore,
		snapshot.Regime)
	return ep.inner.PublishMetrics(ctx, snapshot)
}

func (ep *explainingPublisher) PublishEvent(ctx context.Context, event types.RiskEvent) error {
	text, err := ep.explainer.Explain(event, ep.context.Recent())
	if err != nil {
		text = event.Description
	}
	fmt.Printf("\n*** %s [%s] %s\n    %s\n\n", event.Kind, event.Severity, event.InstrumentID, text)
	return ep.inner.PublishEvent(ctx, event)
}

func (ep *explainingPublisher) Close() error {
	return ep.inner.Close()
}

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Logging.Output = "stdout"
	cfg.Logging.Level = "warn"
	logging.InitGlobalLogger(cfg.Logging)

	explainer, err := explain.NewExplainer(cfg.Explain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create explainer: %v\n", err)
		os.Exit(1)
	}

	riskEngine, err := engine.NewRiskEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	provider := stream.NewSimulationProvider(config.StreamConfig{
		Seed:          *seed,
		TickInterval:  *interval,
		InitialPrices: map[string]float64{"GC": 2050.0},
	})

	sink := &explainingPublisher{
		inner:     publish.NewLogPublisher(),
		explainer: explainer,
		context:   explain.NewContextBuffer(cfg.Explain.ContextSize),
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Streaming simulated ticks for %s (seed %d)...\n\n", *duration, *seed)

	if err := riskEngine.Start(ctx, provider, sink); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start engine: %v\n", err)
		os.Exit(1)
	}

	<-ctx.Done()
	riskEngine.Stop()

	fmt.Println("\nDemo finished.")
}
