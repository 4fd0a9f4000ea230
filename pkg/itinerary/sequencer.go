package itinerary

import (
	"errors"
	"fmt"
	"strings"
)

// Pool identifies one of the two location collections.
type Pool int

const (
	// Candidate holds locations offered for the trip but not yet planned.
	Candidate Pool = iota
	// Staged holds the ordered stay list that becomes the itinerary.
	Staged
)

func (p Pool) valid() bool {
	return p == Candidate || p == Staged
}

func (p Pool) String() string {
	switch p {
	case Candidate:
		return "candidate"
	case Staged:
		return "staged"
	default:
		return fmt.Sprintf("pool(%d)", int(p))
	}
}

var (
	// ErrUnknownItem is returned when the item is not in the source pool.
	ErrUnknownItem = errors.New("itinerary: unknown item")
	// ErrNotStaged is returned by SetNights for items outside the stay list.
	ErrNotStaged = errors.New("itinerary: item is not staged")
	// ErrUnknownPool is returned for pool values other than Candidate/Staged.
	ErrUnknownPool = errors.New("itinerary: unknown pool")
)

// StayItem is a staged location with the nights spent there.
type StayItem struct {
	Name   string `json:"name"`
	Nights int    `json:"nights"`
}

// Sequencer owns the candidate pool and the staged stay list. A location name
// lives in exactly one of them; every operation conserves the total count.
//
// Like the form session that owns it, a Sequencer is single-owner and not
// safe for concurrent use.
type Sequencer struct {
	candidates []string
	staged     []StayItem
}

// New returns a sequencer seeded with candidates.
func New(candidates ...string) *Sequencer {
	s := &Sequencer{}
	s.Seed(candidates)
	return s
}

// Seed replaces both pools: candidates become the given names (blank and
// repeated names dropped) and the stay list is emptied.
func (s *Sequencer) Seed(candidates []string) {
	s.candidates = s.candidates[:0]
	s.staged = nil
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		s.candidates = append(s.candidates, trimmed)
	}
}

// Reset empties both pools.
func (s *Sequencer) Reset() {
	s.candidates = nil
	s.staged = nil
}

// Move transfers item id from one pool into the other, inserting it at
// toIndex clamped to the destination bounds. Dropping onto the pool the item
// came from is a no-op and reports false. Items entering the stay list start
// with zero nights; items returning to candidates lose their nights.
func (s *Sequencer) Move(id string, from, to Pool, toIndex int) (bool, error) {
	if !from.valid() || !to.valid() {
		return false, fmt.Errorf("%w: %s -> %s", ErrUnknownPool, from, to)
	}
	if !s.contains(from, id) {
		return false, fmt.Errorf("%w: %q in %s", ErrUnknownItem, id, from)
	}
	if from == to {
		return false, nil
	}

	if from == Candidate {
		idx := indexOf(s.candidates, id)
		s.candidates = append(s.candidates[:idx], s.candidates[idx+1:]...)
		at := clamp(toIndex, len(s.staged))
		s.staged = append(s.staged, StayItem{})
		copy(s.staged[at+1:], s.staged[at:])
		s.staged[at] = StayItem{Name: id}
		return true, nil
	}

	idx := s.stagedIndex(id)
	s.staged = append(s.staged[:idx], s.staged[idx+1:]...)
	at := clamp(toIndex, len(s.candidates))
	s.candidates = append(s.candidates, "")
	copy(s.candidates[at+1:], s.candidates[at:])
	s.candidates[at] = id
	return true, nil
}

// Contains reports which pool holds id.
func (s *Sequencer) Contains(id string) (Pool, bool) {
	if indexOf(s.candidates, id) >= 0 {
		return Candidate, true
	}
	if s.stagedIndex(id) >= 0 {
		return Staged, true
	}
	return 0, false
}

func (s *Sequencer) contains(pool Pool, id string) bool {
	if pool == Candidate {
		return indexOf(s.candidates, id) >= 0
	}
	return s.stagedIndex(id) >= 0
}

// SetNights updates a staged item's nights. Negative input is clamped to 0.
func (s *Sequencer) SetNights(id string, nights int) error {
	idx := s.stagedIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotStaged, id)
	}
	if nights < 0 {
		nights = 0
	}
	s.staged[idx].Nights = nights
	return nil
}

// Candidates returns a copy of the candidate pool in order.
func (s *Sequencer) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// Staged returns a copy of the stay list in order.
func (s *Sequencer) Staged() []StayItem {
	return append([]StayItem(nil), s.staged...)
}

// Len is the number of locations across both pools.
func (s *Sequencer) Len() int {
	return len(s.candidates) + len(s.staged)
}

// Payload is the itinerary handed to the record at submit: the stay list.
// Leftover candidates are not part of it. An empty stay list yields an empty,
// non-nil slice.
func (s *Sequencer) Payload() []StayItem {
	out := make([]StayItem, len(s.staged))
	copy(out, s.staged)
	return out
}

// TotalNights sums nights across the stay list.
func (s *Sequencer) TotalNights() int {
	total := 0
	for _, item := range s.staged {
		total += item.Nights
	}
	return total
}

func (s *Sequencer) stagedIndex(id string) int {
	for i, item := range s.staged {
		if item.Name == id {
			return i
		}
	}
	return -1
}

func indexOf(list []string, id string) int {
	for i, name := range list {
		if name == id {
			return i
		}
	}
	return -1
}

func clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
