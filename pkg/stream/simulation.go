package stream

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

// SimulationProvider generates a seeded random-walk price stream for
// development and demos. Timestamps are strictly increasing per instrument.
type SimulationProvider struct {
	cfg      config.StreamConfig
	tickChan chan types.Tick
	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc

	// Simulation state
	currentPrices map[string]float64
	baseVols      map[string]float64
	rng           *rand.Rand
}

// NewSimulationProvider creates a new simulation provider
func NewSimulationProvider(cfg config.StreamConfig) *SimulationProvider {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.RandomVolatility <= 0 {
		cfg.RandomVolatility = 0.10
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &SimulationProvider{
		cfg:           cfg,
		tickChan:      make(chan types.Tick, cfg.BufferSize),
		currentPrices: make(map[string]float64),
		baseVols:      make(map[string]float64),
		rng:           rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Start begins the simulation
func (sp *SimulationProvider) Start(ctx context.Context, instruments []string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.running {
		return nil // Already running
	}

	sp.ctx, sp.cancel = context.WithCancel(ctx)
	sp.running = true

	for _, id := range instruments {
		if price, exists := sp.cfg.InitialPrices[id]; exists {
			sp.currentPrices[id] = price
		} else {
			sp.currentPrices[id] = 100 + sp.rng.Float64()*900
		}
		// Implied vol wanders around 20%
		sp.baseVols[id] = 0.20
	}

	go sp.simulationLoop()

	return nil
}

// Stop stops the simulation
func (sp *SimulationProvider) Stop() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !sp.running {
		return nil
	}

	sp.cancel()
	sp.running = false
	close(sp.tickChan)

	return nil
}

// Ticks returns the tick channel
func (sp *SimulationProvider) Ticks() <-chan types.Tick {
	return sp.tickChan
}

// IsConnected returns true if the simulation is running
func (sp *SimulationProvider) IsConnected() bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.running
}

// GetLastError returns the last error (always nil for simulation)
func (sp *SimulationProvider) GetLastError() error {
	return nil
}

// simulationLoop generates ticks on the configured interval
func (sp *SimulationProvider) simulationLoop() {
	ticker := time.NewTicker(sp.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sp.ctx.Done():
			return
		case now := <-ticker.C:
			sp.generateTicks(now)
		}
	}
}

// generateTicks produces one tick per instrument
func (sp *SimulationProvider) generateTicks(timestamp time.Time) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !sp.running {
		return
	}

	for id, price := range sp.currentPrices {
		newPrice := sp.nextPrice(price)
		sp.currentPrices[id] = newPrice

		vol := sp.nextVolatility(id)

		// Synthetic quote around the new price
		spread := newPrice * 0.0001 * (1.0 + sp.rng.Float64()*0.5)

		tick := types.Tick{
			InstrumentID: id,
			Timestamp:    timestamp,
			Price:        newPrice,
			Volatility:   vol,
			Bid:          newPrice - spread/2,
			Ask:          newPrice + spread/2,
		}

		select {
		case sp.tickChan <- tick:
		case <-sp.ctx.Done():
			return
		}
	}
}

// nextPrice advances the random walk
func (sp *SimulationProvider) nextPrice(current float64) float64 {
	// Random walk scaled by configured volatility, with a cap on extreme
	// single-tick moves
	change := sp.rng.NormFloat64() * sp.cfg.RandomVolatility * current * 0.01

	maxChange := current * 0.05
	if change > maxChange {
		change = maxChange
	} else if change < -maxChange {
		change = -maxChange
	}

	next := current + change
	if next < 0.01 {
		next = 0.01
	}
	return next
}

// nextVolatility lets the implied vol drift slowly around its base level
func (sp *SimulationProvider) nextVolatility(id string) float64 {
	base := sp.baseVols[id]
	drift := sp.rng.NormFloat64() * 0.002
	next := base + drift
	if next < 0.05 {
		next = 0.05
	} else if next > 0.80 {
		next = 0.80
	}
	sp.baseVols[id] = next
	return next
}
