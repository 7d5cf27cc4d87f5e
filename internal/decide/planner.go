package decide

import (
	"sort"

	"worklens/internal/domain"
)

// Relationship table used to pull in supporting entities alongside what was
// asked for.
var relatedEntities = map[domain.EntityType][]domain.EntityType{
	domain.EntityWorkItem:    {domain.EntityUser, domain.EntitySprint},
	domain.EntitySprint:      {domain.EntityWorkItem},
	domain.EntityPullRequest: {domain.EntityUser, domain.EntityCommit, domain.EntityRepository},
	domain.EntityRepository:  {domain.EntityPullRequest, domain.EntityCommit},
}

// RelatedEntities returns the supporting entity types for the given main
// entities, excluding the main entities themselves. The result is sorted for
// stable output.
func RelatedEntities(main []domain.EntityType) []domain.EntityType {
	requested := map[domain.EntityType]bool{}
	for _, et := range main {
		requested[et] = true
	}

	seen := map[domain.EntityType]bool{}
	var related []domain.EntityType
	for _, et := range main {
		for _, rel := range relatedEntities[et] {
			if requested[rel] || seen[rel] {
				continue
			}
			seen[rel] = true
			related = append(related, rel)
		}
	}
	sort.Slice(related, func(i, j int) bool { return related[i] < related[j] })
	return related
}

// PlanQuery turns a Decision into the executable UnifiedQuery, clamping the
// limit into [1, maxLimit] with defaultLimit applied when the decision
// carries no hint.
func PlanQuery(decision domain.Decision, defaultLimit, maxLimit int) domain.UnifiedQuery {
	limit := decision.Hints.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	sortOrder := decision.Hints.SortOrder
	if sortOrder != "desc" {
		sortOrder = "asc"
	}

	return domain.UnifiedQuery{
		Entities:       decision.EntitiesNeeded,
		Filters:        decision.Filters,
		IncludeRelated: RelatedEntities(decision.EntitiesNeeded),
		Limit:          limit,
		SortBy:         decision.Hints.SortBy,
		SortOrder:      sortOrder,
	}
}
