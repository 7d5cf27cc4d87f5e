package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("fix login bug", "fix login bug"))
}

func TestSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))
}

func TestSimilarityNearDuplicates(t *testing.T) {
	a := "fix login bug"
	b := "fix login bug "
	assert.GreaterOrEqual(t, Similarity(a, b), 0.9)
}

func TestSimilarityDistinct(t *testing.T) {
	assert.Less(t, Similarity("fix login bug", "add dark mode"), 0.5)
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "implement search", "implement searching"
	assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-9)
}
