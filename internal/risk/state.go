package risk

import (
	"riskstream/internal/types"
)

// GreeksState is the rolling two-snapshot record for one instrument: the
// latest Greeks and the snapshot from the preceding tick. It is owned by a
// single engine lane and is not safe for concurrent use.
type GreeksState struct {
	current     types.GreeksSnapshot
	previous    types.GreeksSnapshot
	hasCurrent  bool
	hasPrevious bool
}

// NewGreeksState creates an empty state
func NewGreeksState() *GreeksState {
	return &GreeksState{}
}

// Update shifts the current snapshot into previous and installs the new
// snapshot as current. It returns the new current, the previous snapshot and
// whether a previous snapshot exists (false on the first tick).
func (s *GreeksState) Update(snapshot types.GreeksSnapshot) (current, previous types.GreeksSnapshot, hasPrevious bool) {
	if s.hasCurrent {
		s.previous = s.current
		s.hasPrevious = true
	}
	s.current = snapshot
	s.hasCurrent = true
	return s.current, s.previous, s.hasPrevious
}

// Current returns the latest snapshot and whether one exists
func (s *GreeksState) Current() (types.GreeksSnapshot, bool) {
	return s.current, s.hasCurrent
}

// Previous returns the prior snapshot and whether one exists
func (s *GreeksState) Previous() (types.GreeksSnapshot, bool) {
	return s.previous, s.hasPrevious
}

// DeltaOf returns the signed difference of the named Greek between current
// and previous. The second return is false when no previous snapshot exists,
// in which case no event may fire for this instrument.
func (s *GreeksState) DeltaOf(field string) (float64, bool) {
	if !s.hasPrevious {
		return 0, false
	}
	return s.current.Field(field) - s.previous.Field(field), true
}
