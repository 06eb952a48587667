package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rpgo/retirement-projector/internal/calculation"
	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/internal/featureflag"
	"github.com/rpgo/retirement-projector/internal/repository"
)

// Options configures a ProjectionService. Zero values select the defaults.
type Options struct {
	FlagKey  string
	Cache    repository.CacheRepository
	CacheTTL time.Duration
	Logger   logrus.FieldLogger
}

// ProjectionService resolves the inflation flag for each request and runs the engine, caching
// results by input.
type ProjectionService struct {
	engine  *calculation.CalculationEngine
	flags   featureflag.Source
	flagKey string
	cache   repository.CacheRepository
	ttl     time.Duration
	log     logrus.FieldLogger
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(engine *calculation.CalculationEngine, flags featureflag.Source, opts Options) *ProjectionService {
	if opts.FlagKey == "" {
		opts.FlagKey = featureflag.InflationAdjuster
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &ProjectionService{
		engine:  engine,
		flags:   flags,
		flagKey: opts.FlagKey,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		log:     opts.Logger,
	}
}

// FlagStatus is the body of the flag status endpoint.
type FlagStatus struct {
	InflationEnabled bool    `json:"inflation_enabled"`
	Error            *string `json:"error"`
}

// InflationEnabled evaluates the inflation flag. Evaluation errors are logged and read as off.
func (s *ProjectionService) InflationEnabled(ctx context.Context) bool {
	enabled, err := s.flags.BoolVariation(ctx, s.flagKey, false)
	if err != nil {
		s.log.WithError(err).WithField("flag", s.flagKey).Warn("feature flag evaluation failed, inflation adjustment disabled")
		return false
	}
	return enabled
}

// FlagStatus reports the flag value together with the evaluation error, if any. A source that
// serves a cached value reports the error of its last refresh.
func (s *ProjectionService) FlagStatus(ctx context.Context) FlagStatus {
	enabled, err := s.flags.BoolVariation(ctx, s.flagKey, false)
	if sr, ok := s.flags.(featureflag.StatusReporter); ok && err == nil {
		_, err, _ = sr.Status()
	}
	if err != nil {
		msg := err.Error()
		return FlagStatus{InflationEnabled: false, Error: &msg}
	}
	return FlagStatus{InflationEnabled: enabled}
}

// Project converts a wire request using the current flag value and projects it.
func (s *ProjectionService) Project(ctx context.Context, req domain.ProjectionRequest) (domain.ProjectionResult, error) {
	in, err := req.ToInput(s.InflationEnabled(ctx))
	if err != nil {
		return domain.ProjectionResult{}, err
	}
	return s.ProjectInput(ctx, in)
}

// ProjectInput projects an already resolved input.
func (s *ProjectionService) ProjectInput(ctx context.Context, in domain.ProjectionInput) (domain.ProjectionResult, error) {
	return cached(ctx, s, "projection", in, func() (domain.ProjectionResult, error) {
		return s.engine.Project(in)
	})
}

// SavingsGoal solves for the yearly contribution that reaches the requested target.
func (s *ProjectionService) SavingsGoal(ctx context.Context, req domain.SavingsGoalRequest) (domain.SavingsGoalResult, error) {
	in, err := req.ToInput(s.InflationEnabled(ctx))
	if err != nil {
		return domain.SavingsGoalResult{}, err
	}
	return cached(ctx, s, "savings-goal", in, func() (domain.SavingsGoalResult, error) {
		return s.engine.PlanSavingsGoal(in)
	})
}

// AnnualSavings projects a fixed yearly deposit. The request's inflation setting is honoured
// only while the flag is on.
func (s *ProjectionService) AnnualSavings(ctx context.Context, in domain.AnnualSavingsInput) (domain.AnnualSavingsResult, error) {
	in.InflationAdjustmentEnabled = in.InflationAdjustmentEnabled && s.InflationEnabled(ctx)
	return cached(ctx, s, "annual-savings", in, func() (domain.AnnualSavingsResult, error) {
		return s.engine.ProjectAnnualSavings(in)
	})
}

// cached returns the stored result for kind and input, or runs compute and stores its result.
// Cache failures are logged and never fail the call.
func cached[T any](ctx context.Context, s *ProjectionService, kind string, input any, compute func() (T, error)) (T, error) {
	if s.cache == nil {
		return compute()
	}

	key, err := cacheKey(kind, input)
	if err != nil {
		s.log.WithError(err).Warn("cannot derive cache key")
		return compute()
	}
	log := s.log.WithField("key", key)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var hit T
		if err := json.Unmarshal([]byte(raw), &hit); err == nil {
			log.Debug("cache hit")
			return hit, nil
		}
		log.Warn("discarding undecodable cache entry")
	}

	res, err := compute()
	if err != nil {
		return res, err
	}
	data, err := json.Marshal(res)
	if err != nil {
		log.WithError(err).Warn("cannot encode result for cache")
		return res, nil
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		log.WithError(err).Warn("cache write failed")
	}
	return res, nil
}

func cacheKey(kind string, input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(append([]byte(kind+":"), data...))
	return kind + ":" + hex.EncodeToString(sum[:]), nil
}
