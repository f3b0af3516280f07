package repo

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// MetricsRepo owns the provider/usage metrics singleton. Updates are
// field-level merges; the document is never replaced wholesale.
type MetricsRepo struct {
	mu      sync.Mutex
	metrics domain.Metrics

	store  *store.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewMetrics loads the persisted metrics singleton, if any.
func NewMetrics(s *store.Store, c clock.Clock, logger zerolog.Logger) *MetricsRepo {
	r := &MetricsRepo{store: s, clock: c, logger: logger}
	r.store.Load("metrics", &r.metrics)
	return r
}

// Get returns the current metrics document.
func (r *MetricsRepo) Get() domain.Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics
}

// Patch merges the supplied fields. The quota fields are honored both at
// the top level and nested under token_usage, and token_usage.last_updated
// is stamped on every patch.
func (r *MetricsRepo) Patch(p domain.MetricsPatch) (domain.Metrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.metrics
	if p.Provider != nil {
		r.metrics.Provider = *p.Provider
	}
	if p.Model != nil {
		r.metrics.Model = *p.Model
	}
	if p.PremiumRemaining != nil {
		r.metrics.TokenUsage.PremiumRemaining = p.PremiumRemaining
	}
	if p.ChatRemaining != nil {
		r.metrics.TokenUsage.ChatRemaining = p.ChatRemaining
	}
	if p.TokenUsage != nil {
		if p.TokenUsage.PremiumRemaining != nil {
			r.metrics.TokenUsage.PremiumRemaining = p.TokenUsage.PremiumRemaining
		}
		if p.TokenUsage.ChatRemaining != nil {
			r.metrics.TokenUsage.ChatRemaining = p.TokenUsage.ChatRemaining
		}
	}
	now := domain.Timestamp(r.clock.Now())
	r.metrics.TokenUsage.LastUpdated = &now

	if err := r.store.Save("metrics", r.metrics); err != nil {
		r.metrics = prev
		return domain.Metrics{}, err
	}
	return r.metrics, nil
}
