// Package repository records finished match outcomes.
package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrInvalidResult is returned when a result is missing required fields.
var ErrInvalidResult = errors.New("invalid match result")

// Result is the outcome of one finished match. Game state is never stored.
type Result struct {
	MatchID  string    `json:"matchId"`
	WinnerID string    `json:"winnerId,omitempty"`
	Winner   string    `json:"winner,omitempty"`
	LoserID  string    `json:"loserId,omitempty"`
	Loser    string    `json:"loser,omitempty"`
	Draw     bool      `json:"draw"`
	Turns    int       `json:"turns"`
	Reason   string    `json:"reason,omitempty"`
	EndedAt  time.Time `json:"endedAt"`
}

// Validate checks the result can be stored.
func (r Result) Validate() error {
	if r.MatchID == "" {
		return errors.New("match id is required")
	}
	if !r.Draw && r.WinnerID == "" {
		return errors.New("winner is required unless the match is drawn")
	}
	if r.Turns < 0 {
		return errors.New("turns must not be negative")
	}
	return nil
}

// ResultStore persists match outcomes.
type ResultStore interface {
	Save(ctx context.Context, r Result) error
	// Recent returns up to n results, newest first.
	Recent(ctx context.Context, n int) ([]Result, error)
	Close()
}

// MemoryStore keeps results in process memory, bounded to capacity entries.
type MemoryStore struct {
	mu       sync.RWMutex
	results  []Result
	capacity int
}

// DefaultMemoryCapacity bounds a MemoryStore created with capacity <= 0.
const DefaultMemoryCapacity = 1000

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Save appends r, evicting the oldest result when full.
func (s *MemoryStore) Save(ctx context.Context, r Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return errors.Join(ErrInvalidResult, err)
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	if len(s.results) > s.capacity {
		s.results = s.results[len(s.results)-s.capacity:]
	}
	return nil
}

// Recent returns up to n results ordered by end time, newest first.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}
