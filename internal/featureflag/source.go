// Package featureflag resolves boolean feature flags, the inflation adjustment toggle in
// particular, from a static table, Redis or LaunchDarkly.
package featureflag

import (
	"context"
	"errors"
	"sync"
	"time"
)

// InflationAdjuster is the flag gating inflation-adjusted projections.
const InflationAdjuster = "inflation-adjuster"

// ErrClosed is returned by sources used after Close.
var ErrClosed = errors.New("feature flag source closed")

// Source evaluates boolean flags. Implementations return fallback together with a non-nil error
// when the flag cannot be evaluated.
type Source interface {
	BoolVariation(ctx context.Context, key string, fallback bool) (bool, error)
}

// StatusReporter is implemented by sources that serve a cached value and can report whether
// their last refresh failed.
type StatusReporter interface {
	Status() (value bool, lastErr error, checked time.Time)
}

// StaticSource serves flags from an in-memory table. Unknown keys yield the fallback.
type StaticSource struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewStaticSource creates a StaticSource seeded with flags.
func NewStaticSource(flags map[string]bool) *StaticSource {
	s := &StaticSource{flags: make(map[string]bool, len(flags))}
	for k, v := range flags {
		s.flags[k] = v
	}
	return s
}

func (s *StaticSource) BoolVariation(_ context.Context, key string, fallback bool) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.flags[key]; ok {
		return v, nil
	}
	return fallback, nil
}

// Set changes a flag value.
func (s *StaticSource) Set(key string, value bool) {
	s.mu.Lock()
	s.flags[key] = value
	s.mu.Unlock()
}
