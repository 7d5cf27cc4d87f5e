package mutate

import (
	"sort"
	"strings"

	"worklens/internal/domain"
)

// duplicateThreshold is the title similarity at which two items count as the
// same piece of work.
const duplicateThreshold = 0.9

// DuplicateGroup is a set of near-identical work items. Kept is the earliest
// created item; the rest are the duplicates to resolve.
type DuplicateGroup struct {
	Kept       domain.WorkItem
	Duplicates []domain.WorkItem
}

// FindDuplicates groups work items whose normalized titles are at least 90%
// similar. Within a group the earliest created item is kept.
func FindDuplicates(items []domain.WorkItem) []DuplicateGroup {
	var groups []DuplicateGroup
	processed := map[string]bool{}

	for i, first := range items {
		if processed[first.ID] {
			continue
		}

		var similar []domain.WorkItem
		for j, second := range items {
			if i == j || processed[second.ID] {
				continue
			}
			if Similarity(normalizeTitle(first.Title), normalizeTitle(second.Title)) >= duplicateThreshold {
				similar = append(similar, second)
				processed[second.ID] = true
			}
		}

		if len(similar) == 0 {
			continue
		}

		group := append([]domain.WorkItem{first}, similar...)
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].CreatedAt.Before(group[b].CreatedAt)
		})

		groups = append(groups, DuplicateGroup{
			Kept:       group[0],
			Duplicates: group[1:],
		})
		processed[first.ID] = true
	}

	return groups
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// DuplicateResolution is the update applied to each duplicate instead of a
// destructive delete.
func DuplicateResolution() map[string]any {
	return map[string]any{
		"status":     "Done",
		"resolution": "Duplicate",
	}
}
