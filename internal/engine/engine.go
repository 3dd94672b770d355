package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"riskstream/internal/config"
	"riskstream/internal/data"
	"riskstream/internal/logging"
	"riskstream/internal/metrics"
	"riskstream/internal/pricing"
	"riskstream/internal/risk"
	"riskstream/internal/types"
	"riskstream/pkg/publish"
	"riskstream/pkg/stream"
)

// lane holds the full per-instrument pipeline. Each lane is processed
// strictly sequentially; different lanes run in parallel. The lane mutex
// serializes direct ProcessTick calls against the streaming worker.
type lane struct {
	contract   *types.Contract
	state      *risk.GreeksState
	scorer     *risk.RiskScorer
	classifier *risk.RegimeClassifier
	detector   *risk.EventDetector

	queue    chan types.Tick
	done     chan struct{}
	mu       sync.Mutex
	lastSeen time.Time
	hasLast  bool
}

// outputItem carries one tick's results to the publication worker
type outputItem struct {
	snapshot types.MetricsSnapshot
	events   []types.RiskEvent
}

// RiskEngine orchestrates tick ingestion across instruments. Ticks for the
// same instrument are processed in arrival order; ticks for different
// instruments proceed concurrently. A rejected tick never mutates state.
type RiskEngine struct {
	cfg      *config.Config
	lanes    map[string]*lane
	mu       sync.RWMutex
	logger   *logging.Logger
	volProxy *data.VolProxy

	provider  stream.TickProvider
	publisher publish.Publisher
	outChan   chan outputItem

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRiskEngine creates an engine and registers the configured instruments
func NewRiskEngine(cfg *config.Config) (*RiskEngine, error) {
	if cfg.Engine.LaneQueueSize <= 0 {
		cfg.Engine.LaneQueueSize = 256
	}
	if cfg.Engine.OutputQueueSize <= 0 {
		cfg.Engine.OutputQueueSize = 1024
	}

	e := &RiskEngine{
		cfg:      cfg,
		lanes:    make(map[string]*lane),
		logger:   logging.NewComponentLogger("engine"),
		volProxy: data.NewVolProxy(cfg.VolProxy),
		outChan:  make(chan outputItem, cfg.Engine.OutputQueueSize),
	}

	for _, ic := range cfg.Instruments {
		if err := e.RegisterInstrument(ic); err != nil {
			return nil, fmt.Errorf("failed to register instrument %s: %w", ic.ID, err)
		}
	}

	return e, nil
}

// RegisterInstrument adds a tracked contract. Safe while the engine is
// running; the new lane starts empty with no previous state.
func (e *RiskEngine) RegisterInstrument(ic config.InstrumentConfig) error {
	contract, err := contractFromConfig(ic)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.lanes[ic.ID]; exists {
		return fmt.Errorf("instrument %s is already registered", ic.ID)
	}

	ln := &lane{
		contract:   contract,
		state:      risk.NewGreeksState(),
		scorer:     risk.NewRiskScorer(e.cfg.Scoring),
		classifier: risk.NewRegimeClassifier(e.cfg.Regime),
		detector:   risk.NewEventDetector(e.cfg.Thresholds),
		queue:      make(chan types.Tick, e.cfg.Engine.LaneQueueSize),
		done:       make(chan struct{}),
	}
	e.lanes[ic.ID] = ln

	if e.running {
		e.wg.Add(1)
		go e.laneWorker(ic.ID, ln)
	}

	e.logger.WithFields(map[string]interface{}{
		"instrument": ic.ID,
		"symbol":     contract.Symbol,
		"strike":     contract.Strike,
	}).Info("Instrument registered")

	return nil
}

// UnregisterInstrument removes an instrument. Queued ticks for the
// instrument are drained before its worker exits.
func (e *RiskEngine) UnregisterInstrument(instrumentID string) error {
	e.mu.Lock()
	ln, exists := e.lanes[instrumentID]
	if !exists {
		e.mu.Unlock()
		return &types.UnknownInstrumentError{InstrumentID: instrumentID}
	}
	delete(e.lanes, instrumentID)
	e.mu.Unlock()

	// Signals the lane worker to drain what is queued and exit. The queue
	// itself is never closed; the dispatcher may have a send in flight.
	close(ln.done)

	e.logger.WithField("instrument", instrumentID).Info("Instrument unregistered")

	return nil
}

// Instruments returns the ids of all registered instruments
func (e *RiskEngine) Instruments() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.lanes))
	for id := range e.lanes {
		ids = append(ids, id)
	}
	return ids
}

// ProcessTick runs one tick through the pipeline synchronously and returns
// the resulting snapshot and any emitted events. On error the instrument's
// state, regime and detector memory are untouched.
func (e *RiskEngine) ProcessTick(tick types.Tick) (types.MetricsSnapshot, []types.RiskEvent, error) {
	e.mu.RLock()
	ln, exists := e.lanes[tick.InstrumentID]
	e.mu.RUnlock()

	if !exists {
		err := &types.UnknownInstrumentError{InstrumentID: tick.InstrumentID}
		metrics.TicksRejected.WithLabelValues(tick.InstrumentID, metrics.ReasonUnknownInstrument).Inc()
		e.logger.LogTickRejected(tick.InstrumentID, metrics.ReasonUnknownInstrument, err)
		return types.MetricsSnapshot{}, nil, err
	}

	ln.mu.Lock()
	defer ln.mu.Unlock()

	return e.processLocked(ln, tick)
}

// processLocked is the per-tick pipeline. Caller holds the lane mutex.
func (e *RiskEngine) processLocked(ln *lane, tick types.Tick) (types.MetricsSnapshot, []types.RiskEvent, error) {
	if ln.hasLast && !tick.Timestamp.After(ln.lastSeen) {
		err := &types.OutOfOrderError{
			InstrumentID: tick.InstrumentID,
			Timestamp:    tick.Timestamp,
			LastSeen:     ln.lastSeen,
		}
		metrics.TicksRejected.WithLabelValues(tick.InstrumentID, metrics.ReasonOutOfOrder).Inc()
		e.logger.LogTickRejected(tick.InstrumentID, metrics.ReasonOutOfOrder, err)
		return types.MetricsSnapshot{}, nil, err
	}

	// Ticks without an implied volatility can borrow the realized-vol
	// estimate once the proxy window has filled
	if !tick.HasVolatility() && e.cfg.VolProxy.Enabled && e.volProxy.Ready(tick.InstrumentID) {
		tick.Volatility = e.volProxy.Estimate(tick.InstrumentID)
	}

	snapshot, err := pricing.SnapshotFor(ln.contract, tick)
	if err != nil {
		metrics.TicksRejected.WithLabelValues(tick.InstrumentID, metrics.ReasonInvalidInput).Inc()
		e.logger.LogTickRejected(tick.InstrumentID, metrics.ReasonInvalidInput, err)
		return types.MetricsSnapshot{}, nil, err
	}

	// The tick is valid from here on; nothing below can fail
	e.volProxy.Observe(tick.InstrumentID, tick.Price)

	shocks := make([]types.ShockResult, 0, len(e.cfg.Engine.ShockScenarios))
	for _, pct := range e.cfg.Engine.ShockScenarios {
		if shock, shockErr := pricing.Shock(ln.contract, tick, pct); shockErr == nil {
			shocks = append(shocks, shock)
		}
	}

	current, previous, hasPrevious := ln.state.Update(snapshot)
	score := ln.scorer.Score(current, previous, hasPrevious)
	transition := ln.classifier.Observe(score)
	regime, _ := ln.classifier.Regime()
	events := ln.detector.Detect(tick.InstrumentID, tick.Timestamp, current, previous, hasPrevious, transition)

	ln.lastSeen = tick.Timestamp
	ln.hasLast = true

	metrics.TicksProcessed.WithLabelValues(tick.InstrumentID).Inc()
	metrics.RiskScore.WithLabelValues(tick.InstrumentID).Set(score)
	metrics.RegimeLevel.WithLabelValues(tick.InstrumentID).Set(float64(regime.Level()))

	if transition != nil {
		e.logger.LogRegimeChange(tick.InstrumentID, string(transition.From), string(transition.To), transition.Score)
	}
	for _, ev := range events {
		metrics.EventsEmitted.WithLabelValues(tick.InstrumentID, string(ev.Kind)).Inc()
		e.logger.LogRiskEvent(tick.InstrumentID, string(ev.Kind), string(ev.Severity), ev.OldValue, ev.NewValue, ev.ChangePct)
	}
	e.logger.LogSnapshot(tick.InstrumentID, tick.Price, score, string(regime))

	result := types.MetricsSnapshot{
		InstrumentID:    tick.InstrumentID,
		Timestamp:       tick.Timestamp,
		UnderlyingPrice: tick.Price,
		Volatility:      tick.Volatility,
		Greeks:          snapshot,
		RiskScore:       score,
		Regime:          regime,
		Shocks:          shocks,
	}

	return result, events, nil
}

// Start connects the engine to a tick provider and publisher and begins
// streaming. Each instrument gets its own worker; a dispatcher routes ticks
// to lane queues and a publication worker drains the output buffer.
func (e *RiskEngine) Start(ctx context.Context, provider stream.TickProvider, publisher publish.Publisher) error {
	e.mu.Lock()

	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("engine is already running")
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.provider = provider
	e.publisher = publisher
	e.running = true

	instruments := make([]string, 0, len(e.lanes))
	for id, ln := range e.lanes {
		instruments = append(instruments, id)
		e.wg.Add(1)
		go e.laneWorker(id, ln)
	}

	e.wg.Add(2)
	go e.dispatchWorker()
	go e.publishWorker()

	e.mu.Unlock()

	if err := provider.Start(e.ctx, instruments); err != nil {
		e.Stop()
		return fmt.Errorf("failed to start tick provider: %w", err)
	}

	e.logger.WithField("instruments", strings.Join(instruments, ",")).Info("Risk engine started")

	return nil
}

// Stop shuts the engine down and waits for in-flight ticks to finish
func (e *RiskEngine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.cancel()
	e.mu.Unlock()

	if e.provider != nil {
		e.provider.Stop()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	timeout := e.cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	select {
	case <-done:
		e.logger.Info("Risk engine stopped")
	case <-time.After(timeout):
		e.logger.Warn("Shutdown timeout reached before workers finished")
	}

	if e.publisher != nil {
		if err := e.publisher.Close(); err != nil {
			e.logger.WithError(err).Warn("Publisher close failed")
		}
	}

	return nil
}

// dispatchWorker routes provider ticks to per-instrument queues
func (e *RiskEngine) dispatchWorker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case tick, ok := <-e.provider.Ticks():
			if !ok {
				return
			}

			e.mu.RLock()
			ln, exists := e.lanes[tick.InstrumentID]
			e.mu.RUnlock()

			if !exists {
				metrics.TicksRejected.WithLabelValues(tick.InstrumentID, metrics.ReasonUnknownInstrument).Inc()
				continue
			}

			select {
			case ln.queue <- tick:
			case <-e.ctx.Done():
				return
			}
		}
	}
}

// laneWorker processes one instrument's queue sequentially
func (e *RiskEngine) laneWorker(instrumentID string, ln *lane) {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ln.done:
			// Unregistered: drain whatever is already queued, then exit
			for {
				select {
				case tick := <-ln.queue:
					e.handleTick(ln, tick)
				default:
					return
				}
			}
		case tick := <-ln.queue:
			e.handleTick(ln, tick)
		}
	}
}

// handleTick processes one queued tick and enqueues its output
func (e *RiskEngine) handleTick(ln *lane, tick types.Tick) {
	ln.mu.Lock()
	snapshot, events, err := e.processLocked(ln, tick)
	ln.mu.Unlock()

	if err != nil {
		// Already counted and logged; the stream continues
		return
	}

	select {
	case e.outChan <- outputItem{snapshot: snapshot, events: events}:
	default:
		// Publication must never stall the pipeline
		metrics.PublicationsDropped.Inc()
	}
}

// publishWorker drains the output buffer into the configured sink
func (e *RiskEngine) publishWorker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case item := <-e.outChan:
			if err := e.publisher.PublishMetrics(e.ctx, item.snapshot); err != nil {
				e.logger.WithError(err).Warn("Metrics publication failed")
			}
			for _, ev := range item.events {
				if err := e.publisher.PublishEvent(e.ctx, ev); err != nil {
					e.logger.WithError(err).Warn("Event publication failed")
				}
			}
		}
	}
}

// contractFromConfig builds the immutable contract for a lane
func contractFromConfig(ic config.InstrumentConfig) (*types.Contract, error) {
	var optionType types.OptionType
	switch strings.ToLower(ic.OptionType) {
	case "call":
		optionType = types.OptionCall
	case "put":
		optionType = types.OptionPut
	default:
		return nil, fmt.Errorf("unknown option type %q for instrument %s", ic.OptionType, ic.ID)
	}

	if ic.Strike <= 0 {
		return nil, fmt.Errorf("instrument %s has non-positive strike %.4f", ic.ID, ic.Strike)
	}
	if ic.Expiration.IsZero() {
		return nil, fmt.Errorf("instrument %s has no expiration", ic.ID)
	}

	return &types.Contract{
		Symbol:       ic.Symbol,
		Underlying:   ic.Underlying,
		OptionType:   optionType,
		Strike:       ic.Strike,
		Expiration:   ic.Expiration,
		RiskFreeRate: ic.RiskFreeRate,
	}, nil
}
