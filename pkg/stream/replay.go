package stream

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

// ReplayProvider streams ticks from a CSV file. Expected columns:
// instrument_id,timestamp,price,volatility[,bid,ask]. The timestamp column
// accepts RFC 3339 or a Unix timestamp in milliseconds.
//
// With PlaybackSpeed > 0 the provider sleeps between ticks to reproduce the
// recorded pacing; with PlaybackSpeed == 0 it replays as fast as possible.
type ReplayProvider struct {
	cfg      config.StreamConfig
	tickChan chan types.Tick
	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	lastErr  error
}

// NewReplayProvider creates a new CSV replay provider
func NewReplayProvider(cfg config.StreamConfig) *ReplayProvider {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}

	return &ReplayProvider{
		cfg:      cfg,
		tickChan: make(chan types.Tick, cfg.BufferSize),
	}
}

// Start begins replaying the recorded tick file
func (rp *ReplayProvider) Start(ctx context.Context, instruments []string) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return nil
	}

	file, err := os.Open(rp.cfg.DataPath)
	if err != nil {
		return fmt.Errorf("failed to open replay file %s: %w", rp.cfg.DataPath, err)
	}

	wanted := make(map[string]bool, len(instruments))
	for _, id := range instruments {
		wanted[id] = true
	}

	rp.ctx, rp.cancel = context.WithCancel(ctx)
	rp.running = true

	go rp.replayLoop(file, wanted)

	return nil
}

// Stop stops the replay
func (rp *ReplayProvider) Stop() error {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if !rp.running {
		return nil
	}

	rp.cancel()
	rp.running = false

	return nil
}

// Ticks returns the tick channel
func (rp *ReplayProvider) Ticks() <-chan types.Tick {
	return rp.tickChan
}

// IsConnected returns true while the replay is in progress
func (rp *ReplayProvider) IsConnected() bool {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	return rp.running
}

// GetLastError returns the last read or parse error
func (rp *ReplayProvider) GetLastError() error {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	return rp.lastErr
}

func (rp *ReplayProvider) setError(err error) {
	rp.mu.Lock()
	rp.lastErr = err
	rp.mu.Unlock()
}

// replayLoop reads the file sequentially and emits ticks with pacing
func (rp *ReplayProvider) replayLoop(file *os.File, wanted map[string]bool) {
	defer file.Close()
	defer close(rp.tickChan)
	defer func() {
		rp.mu.Lock()
		rp.running = false
		rp.mu.Unlock()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var prevTimestamp time.Time

	for lineNo := 0; ; lineNo++ {
		select {
		case <-rp.ctx.Done():
			return
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			rp.setError(fmt.Errorf("replay read error at line %d: %w", lineNo+1, err))
			return
		}

		// Skip a header row if present
		if lineNo == 0 && isHeaderRow(record) {
			continue
		}

		tick, err := parseTickRecord(record)
		if err != nil {
			rp.setError(fmt.Errorf("replay parse error at line %d: %w", lineNo+1, err))
			continue
		}

		if len(wanted) > 0 && !wanted[tick.InstrumentID] {
			continue
		}

		// Reproduce the recorded inter-tick gaps when pacing is enabled
		if rp.cfg.PlaybackSpeed > 0 && !prevTimestamp.IsZero() {
			gap := tick.Timestamp.Sub(prevTimestamp)
			if gap > 0 {
				scaled := time.Duration(float64(gap) / rp.cfg.PlaybackSpeed)
				select {
				case <-time.After(scaled):
				case <-rp.ctx.Done():
					return
				}
			}
		}
		prevTimestamp = tick.Timestamp

		select {
		case rp.tickChan <- tick:
		case <-rp.ctx.Done():
			return
		}
	}
}

// isHeaderRow detects a non-numeric first data column
func isHeaderRow(record []string) bool {
	if len(record) < 3 {
		return false
	}
	_, err := strconv.ParseFloat(record[2], 64)
	return err != nil
}

// parseTickRecord converts a CSV row into a tick
func parseTickRecord(record []string) (types.Tick, error) {
	if len(record) < 4 {
		return types.Tick{}, fmt.Errorf("expected at least 4 columns, got %d", len(record))
	}

	timestamp, err := parseTimestamp(record[1])
	if err != nil {
		return types.Tick{}, fmt.Errorf("bad timestamp %q: %w", record[1], err)
	}

	price, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return types.Tick{}, fmt.Errorf("bad price %q: %w", record[2], err)
	}

	volatility, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return types.Tick{}, fmt.Errorf("bad volatility %q: %w", record[3], err)
	}

	tick := types.Tick{
		InstrumentID: record[0],
		Timestamp:    timestamp,
		Price:        price,
		Volatility:   volatility,
	}

	if len(record) >= 6 {
		if bid, err := strconv.ParseFloat(record[4], 64); err == nil {
			tick.Bid = bid
		}
		if ask, err := strconv.ParseFloat(record[5], 64); err == nil {
			tick.Ask = ask
		}
	}

	return tick, nil
}

// parseTimestamp accepts RFC 3339 or Unix milliseconds
func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("not RFC 3339 or unix millis")
	}
	return time.UnixMilli(millis).UTC(), nil
}
