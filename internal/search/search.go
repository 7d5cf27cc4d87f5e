// Package search ranks work items by relevance to free-text queries. It is
// purely lexical: field-weighted term matching with no index, which is enough
// for the result set sizes a single aggregation pass returns.
package search

import (
	"sort"
	"strings"

	"worklens/internal/domain"
)

// Match pairs a work item with its relevance score and a snippet showing
// where the query matched.
type Match struct {
	Item    domain.WorkItem
	Score   float64
	Snippet string
}

// Field weights. Title matches dominate, an exact title match gets a bonus,
// labels and comments contribute less.
const (
	titleWeight      = 10.0
	exactTitleBonus  = 5.0
	descWeight       = 5.0
	labelWeight      = 3.0
	commentWeight    = 2.0
	snippetRadius    = 30
	snippetMaxLength = 100
)

// stopwords are query words that carry no search signal: articles,
// prepositions, and the verbs the intent layer has already consumed.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "for": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "with": {}, "about": {}, "me": {}, "my": {}, "all": {},
	"any": {}, "please": {}, "show": {}, "find": {}, "search": {},
	"get": {}, "look": {}, "items": {}, "item": {}, "work": {},
	"tasks": {}, "task": {}, "related": {},
}

// Rank scores every item against the query and returns the matches sorted by
// descending score. Items that match no query term are omitted.
func Rank(items []domain.WorkItem, query string) []Match {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	var matches []Match
	for _, item := range items {
		score, snippet := scoreItem(item, terms)
		if score > 0 {
			matches = append(matches, Match{Item: item, Score: score, Snippet: snippet})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// ReorderByRelevance moves the entities that match the query to the front,
// best first, keeping unmatched entities behind them in their original order.
// Non work-item entities pass through untouched.
func ReorderByRelevance(entities []domain.Entity, query string) []domain.Entity {
	var items []domain.WorkItem
	for _, e := range entities {
		if item, ok := e.(domain.WorkItem); ok {
			items = append(items, item)
		}
	}
	matches := Rank(items, query)
	if len(matches) == 0 {
		return entities
	}

	matched := make(map[string]struct{}, len(matches))
	out := make([]domain.Entity, 0, len(entities))
	for _, m := range matches {
		matched[m.Item.ID] = struct{}{}
		out = append(out, m.Item)
	}
	for _, e := range entities {
		if item, ok := e.(domain.WorkItem); ok {
			if _, hit := matched[item.ID]; hit {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	var terms []string
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'")
		if f == "" {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func scoreItem(item domain.WorkItem, terms []string) (float64, string) {
	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)

	score := 0.0
	snippet := ""
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
			if title == term {
				score += exactTitleBonus
			}
			if snippet == "" {
				snippet = highlight(item.Title, term)
			}
		}
		if strings.Contains(desc, term) {
			score += descWeight
			if snippet == "" {
				snippet = extractSnippet(item.Description, term)
			}
		}
		for _, label := range item.Labels {
			if strings.Contains(strings.ToLower(label), term) {
				score += labelWeight
				if snippet == "" {
					snippet = "Label: " + highlight(label, term)
				}
			}
		}
		for _, comment := range item.Comments {
			if strings.Contains(strings.ToLower(comment.Content), term) {
				score += commentWeight
				if snippet == "" {
					snippet = extractSnippet(comment.Content, term)
				}
			}
		}
	}
	if score > 0 && snippet == "" {
		snippet = item.Title
	}
	return score, snippet
}

// extractSnippet returns the text around the first occurrence of term,
// ellipsized at both ends when the match sits inside a longer passage.
func extractSnippet(text, term string) string {
	index := strings.Index(strings.ToLower(text), term)
	if index == -1 {
		if len(text) > snippetMaxLength {
			return text[:snippetMaxLength] + "..."
		}
		return text
	}

	start := index - snippetRadius
	if start < 0 {
		start = 0
	}
	end := index + len(term) + snippetRadius
	if end > len(text) {
		end = len(text)
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return highlight(snippet, term)
}

// highlight wraps the first case-insensitive occurrence of term in markdown
// bold markers.
func highlight(text, term string) string {
	index := strings.Index(strings.ToLower(text), term)
	if index == -1 {
		return text
	}
	return text[:index] + "**" + text[index:index+len(term)] + "**" + text[index+len(term):]
}
