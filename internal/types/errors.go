package types

import (
	"fmt"
	"time"
)

// InvalidInputError reports a malformed or economically nonsensical tick or
// contract input. The offending tick is rejected and instrument state is
// left untouched.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v (%s)", e.Field, e.Value, e.Reason)
}

// OutOfOrderError reports a tick whose timestamp does not exceed the
// instrument's last processed timestamp.
type OutOfOrderError struct {
	InstrumentID string
	Timestamp    time.Time
	LastSeen     time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out-of-order tick for %s: %s does not exceed %s",
		e.InstrumentID, e.Timestamp.Format(time.RFC3339Nano), e.LastSeen.Format(time.RFC3339Nano))
}

// UnknownInstrumentError reports a tick for an instrument with no registered
// contract. Rejection does not create implicit state.
type UnknownInstrumentError struct {
	InstrumentID string
}

func (e *UnknownInstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument: %s", e.InstrumentID)
}
