package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"worklens/internal/domain"
	"worklens/internal/provider"
)

// Engine fans a unified query out to every relevant provider concurrently
// and merges the results into per-entity buckets. A failing provider
// contributes an error string, never a failed response: partial data is
// still an answer.
type Engine struct {
	providers map[string]provider.Provider
	logger    *zap.Logger
}

func NewEngine(providers []provider.Provider, logger *zap.Logger) *Engine {
	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Engine{providers: byName, logger: logger}
}

// Execute runs the query against the named tools. Only tools whose
// capability covers at least one requested entity are contacted, and each
// tool only receives the entity types it supports.
func (e *Engine) Execute(ctx context.Context, query domain.UnifiedQuery, tools []string) domain.UnifiedResponse {
	entities := append([]domain.EntityType{}, query.Entities...)
	entities = append(entities, query.IncludeRelated...)

	resp := domain.UnifiedResponse{
		Data: make(map[domain.EntityType][]domain.Entity),
	}
	for _, et := range query.Entities {
		resp.Data[et] = []domain.Entity{}
	}

	type fetchResult struct {
		tool    string
		entity  domain.EntityType
		items   []domain.Entity
		fetched bool
	}

	var mu sync.Mutex
	contributed := map[string]bool{}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range tools {
		p, ok := e.providers[name]
		if !ok {
			continue
		}
		capability := p.Capability()

		// One weighted semaphore per tool keeps concurrent calls
		// proportional to its rate limit.
		weight := int64(capability.RateLimitPerMin / 100)
		if weight < 1 {
			weight = 1
		}
		sem := semaphore.NewWeighted(weight)

		for _, et := range entities {
			if !capability.SupportsEntity(et) {
				continue
			}
			p, name, et := p, name, et
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return nil
				}
				defer sem.Release(1)

				items, err := p.Fetch(gctx, et, query.Filters, query.Limit)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					e.logger.Warn("tool fetch failed",
						zap.String("tool", name),
						zap.String("entity", string(et)),
						zap.Error(err))
					resp.Errors = append(resp.Errors, fmt.Sprintf("Error fetching from %s: %v", name, err))
					return nil
				}
				resp.Data[et] = append(resp.Data[et], items...)
				// An empty result set is still a successful fetch; a
				// legitimately empty project must not read as failure.
				contributed[name] = true
				return nil
			})
		}
	}
	g.Wait()

	for name := range contributed {
		resp.SourceTools = append(resp.SourceTools, name)
	}
	sort.Strings(resp.SourceTools)
	sort.Strings(resp.Errors)

	e.postProcess(&resp, query)

	resp.Success = len(resp.SourceTools) > 0
	return resp
}

// postProcess applies the limit and sort to each bucket and fills in the
// response metadata. Truncation happens before sorting.
func (e *Engine) postProcess(resp *domain.UnifiedResponse, query domain.UnifiedQuery) {
	counts := make(map[domain.EntityType]int, len(resp.Data))
	total := 0

	for et, bucket := range resp.Data {
		if query.Limit > 0 && len(bucket) > query.Limit {
			bucket = bucket[:query.Limit]
		}
		if query.SortBy != "" {
			e.sortBucket(et, bucket, query.SortBy, query.SortOrder)
		}
		resp.Data[et] = bucket
		counts[et] = len(bucket)
		total += len(bucket)
	}

	resp.Metadata = domain.ResponseMetadata{
		TotalEntities: total,
		EntityCounts:  counts,
		Limit:         query.Limit,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
		Filters:       query.Filters,
	}
}

// sortBucket sorts in place by the named field. A bucket containing any
// entity without that field is left in arrival order.
func (e *Engine) sortBucket(et domain.EntityType, bucket []domain.Entity, field, order string) {
	type keyed struct {
		key    string
		entity domain.Entity
	}
	items := make([]keyed, len(bucket))
	for i, entity := range bucket {
		v, ok := entity.SortValue(field)
		if !ok {
			e.logger.Debug("skipping sort, field missing",
				zap.String("entity", string(et)),
				zap.String("field", field))
			return
		}
		items[i] = keyed{key: v, entity: entity}
	}

	desc := order == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return items[i].key > items[j].key
		}
		return items[i].key < items[j].key
	})
	for i := range items {
		bucket[i] = items[i].entity
	}
}
