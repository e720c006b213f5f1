// internal/textdedup/dedup_test.go
package textdedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdenticalStrings(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("hello world", "hello world"))
	assert.Equal(t, 1.0, Similarity("Hello World", "  hello world  "))
}

func TestSimilarityEmptyStrings(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "something"))
	assert.Equal(t, 0.0, Similarity("something", ""))
}

func TestSimilarityVeryDifferentLengthsShortCircuits(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("a", "a very long completely unrelated sentence of text"))
}

func TestSimilarityCloseButNotIdentical(t *testing.T) {
	sim := Similarity("the quick brown fox", "the quick brown fax")
	// Word Jaccard 3/5, one edit over 19 characters.
	assert.InDelta(t, 0.3*0.6+0.7*(18.0/19.0), sim, 1e-9)
	assert.Less(t, sim, 1.0)
}

func TestDedupKeepsLongestRepresentativePerCluster(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps",
		"the quick brown fox jump",
		"a totally unrelated line",
	}
	result := Dedup(texts, DefaultThreshold)
	assert.Len(t, result, 2)
	assert.Equal(t, "the quick brown fox jumps", result[0])
}

func TestDedupEmptyInput(t *testing.T) {
	assert.Nil(t, Dedup(nil, DefaultThreshold))
	assert.Nil(t, Dedup([]string{}, 0.5))
}

func TestDedupNonPositiveThresholdUsesDefault(t *testing.T) {
	texts := []string{"same text here", "same text here"}
	result := Dedup(texts, 0)
	assert.Len(t, result, 1)
}

func TestDedupDistinctTextsAllSurvive(t *testing.T) {
	texts := []string{"first distinct line", "second unrelated line", "third completely different"}
	result := Dedup(texts, DefaultThreshold)
	assert.Len(t, result, 3)
}
