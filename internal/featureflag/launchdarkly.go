package featureflag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
)

// LDClient is the subset of *ld.LDClient used by LaunchDarklySource.
type LDClient interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	Close() error
}

// LaunchDarklySource evaluates flags for a single fixed evaluation context.
type LaunchDarklySource struct {
	client  LDClient
	context ldcontext.Context

	mu     sync.RWMutex
	closed bool
}

// EvaluationContext builds the user context flags are evaluated for.
func EvaluationContext(userKey, country string) ldcontext.Context {
	b := ldcontext.NewBuilder(userKey).Kind(ldcontext.DefaultKind)
	if country != "" {
		b.SetString("country", country)
	}
	return b.Build()
}

// NewLaunchDarklySource connects to LaunchDarkly, waiting up to wait for the first flag payload.
// A client that is still initializing when wait expires is kept; it serves fallbacks until ready.
func NewLaunchDarklySource(sdkKey, userKey, country string, wait time.Duration) (*LaunchDarklySource, error) {
	client, err := ld.MakeClient(sdkKey, wait)
	if err != nil && !errors.Is(err, ld.ErrInitializationTimeout) {
		if client != nil {
			_ = client.Close()
		}
		return nil, fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	return NewLaunchDarklySourceWithClient(client, EvaluationContext(userKey, country)), nil
}

// NewLaunchDarklySourceWithClient wraps an existing client.
func NewLaunchDarklySourceWithClient(client LDClient, evalContext ldcontext.Context) *LaunchDarklySource {
	return &LaunchDarklySource{client: client, context: evalContext}
}

func (s *LaunchDarklySource) BoolVariation(_ context.Context, key string, fallback bool) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fallback, ErrClosed
	}

	v, err := s.client.BoolVariation(key, s.context, fallback)
	if err != nil {
		return fallback, fmt.Errorf("evaluate flag %s: %w", key, err)
	}
	return v, nil
}

// Close shuts the client down and flushes pending analytics events.
func (s *LaunchDarklySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
