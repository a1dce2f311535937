package sources

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"HashArb/internal/domain/models"
	"HashArb/internal/domain/repository"
	"HashArb/internal/service/ratelimit"
	applogger "HashArb/pkg/logger"
)

// CategoryFetcher normalizes one provider's payload to algorithm -> value.
type CategoryFetcher func(ctx context.Context) (map[string]float64, error)

// FeesFetcher normalizes a fee payload to algorithm -> market -> fee rate.
type FeesFetcher func(ctx context.Context) (models.Fees, error)

type registeredSource struct {
	desc      models.SourceDescriptor
	fetch     CategoryFetcher
	fetchFees FeesFetcher
}

// Registry tracks source health and routes category fetches by priority.
// Unhealthy sources are skipped until a probe marks them healthy again.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*registeredSource
	health  map[string]*models.SourceHealth

	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *applogger.Logger
	metrics repository.Metrics
}

func NewRegistry(l *applogger.Logger, m repository.Metrics) *Registry {
	return &Registry{
		sources: make(map[string]*registeredSource),
		health:  make(map[string]*models.SourceHealth),
		client:  &http.Client{},
		limiter: ratelimit.New(),
		logger:  l,
		metrics: m,
	}
}

// Register adds a source serving a plain algorithm -> value category.
func (r *Registry) Register(desc models.SourceDescriptor, fetch CategoryFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[desc.ID] = &registeredSource{desc: desc, fetch: fetch}
	r.health[desc.ID] = &models.SourceHealth{Status: models.SourceUnknown}
}

// RegisterFees adds a source serving the fee category.
func (r *Registry) RegisterFees(desc models.SourceDescriptor, fetch FeesFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[desc.ID] = &registeredSource{desc: desc, fetchFees: fetch}
	r.health[desc.ID] = &models.SourceHealth{Status: models.SourceUnknown}
}

// Probe walks the source's endpoints in order. The first HTTP 200 marks the
// source healthy and stops; if none succeeds the source is unhealthy.
func (r *Registry) Probe(ctx context.Context, id string) bool {
	r.mu.RLock()
	src, ok := r.sources[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	start := time.Now()
	healthy := false
	for _, endpoint := range src.desc.Endpoints {
		if r.probeEndpoint(ctx, src.desc, endpoint) {
			healthy = true
			break
		}
	}
	latency := time.Since(start)

	r.mu.Lock()
	h := r.health[id]
	h.LastCheck = time.Now()
	if healthy {
		h.Status = models.SourceHealthy
		h.SuccessCount++
		h.AvgLatency = latency
	} else {
		h.Status = models.SourceUnhealthy
		h.FailureCount++
	}
	r.mu.Unlock()

	r.metrics.RecordSourceHealth(id, healthy)
	if !healthy {
		r.logger.Warn("source unhealthy", applogger.String("source", id))
	}
	return healthy
}

func (r *Registry) probeEndpoint(ctx context.Context, desc models.SourceDescriptor, endpoint string) bool {
	ctx, cancel := context.WithTimeout(ctx, desc.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.BaseURL+endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// RefreshAll re-probes every registered source.
func (r *Registry) RefreshAll(ctx context.Context) {
	ids := r.ids()
	healthy := 0
	for _, id := range ids {
		if r.Probe(ctx, id) {
			healthy++
		}
	}
	r.logger.Info("source probe sweep done",
		applogger.Int("healthy", healthy),
		applogger.Int("total", len(ids)),
	)
}

// Fetch routes a category fetch across its sources by ascending priority,
// skipping non-healthy ones. All sources failing yields an empty map, not an
// error.
func (r *Registry) Fetch(ctx context.Context, category models.SourceCategory) map[string]float64 {
	for _, src := range r.candidates(category) {
		if src.fetch == nil {
			continue
		}
		if err := r.limiter.Wait(ctx, src.desc.ID, src.desc.RateLimit, src.desc.RateLimit/60.0); err != nil {
			break
		}
		data, err := src.fetch(ctx)
		if err != nil {
			r.metrics.RecordFetch(string(category), src.desc.ID, "error")
			r.logger.Error("source fetch failed",
				applogger.String("category", string(category)),
				applogger.String("source", src.desc.ID),
				applogger.Error(err),
			)
			continue
		}
		r.metrics.RecordFetch(string(category), src.desc.ID, "ok")
		return data
	}
	r.logger.Warn("all sources failed for category", applogger.String("category", string(category)))
	return map[string]float64{}
}

// FetchFees routes the fee category. Empty fees on total failure.
func (r *Registry) FetchFees(ctx context.Context) models.Fees {
	for _, src := range r.candidates(models.CategoryFees) {
		if src.fetchFees == nil {
			continue
		}
		if err := r.limiter.Wait(ctx, src.desc.ID, src.desc.RateLimit, src.desc.RateLimit/60.0); err != nil {
			break
		}
		fees, err := src.fetchFees(ctx)
		if err != nil {
			r.metrics.RecordFetch(string(models.CategoryFees), src.desc.ID, "error")
			r.logger.Error("fee fetch failed",
				applogger.String("source", src.desc.ID),
				applogger.Error(err),
			)
			continue
		}
		r.metrics.RecordFetch(string(models.CategoryFees), src.desc.ID, "ok")
		return fees
	}
	return models.Fees{}
}

// candidates returns healthy-ordered sources for a category.
func (r *Registry) candidates(category models.SourceCategory) []*registeredSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*registeredSource
	for id, src := range r.sources {
		if src.desc.Category != category {
			continue
		}
		if r.health[id].Status != models.SourceHealthy {
			continue
		}
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].desc.Priority < out[j].desc.Priority
	})
	return out
}

// Health returns a snapshot copy of all source health records.
func (r *Registry) Health() map[string]models.SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.SourceHealth, len(r.health))
	for id, h := range r.health {
		out[id] = *h
	}
	return out
}

func (r *Registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
