// internal/textdedup/dedup.go
package textdedup

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the similarity cutoff above which two strings are
// considered duplicates — spec.md §4.6 default 0.85.
const DefaultThreshold = 0.85

// maxCompareLen bounds the Levenshtein comparison window; spec.md §4.6
// compares only the first 200 runes of each string.
const maxCompareLen = 200

// Dedup collapses near-duplicate strings, keeping the first accepted
// representative of each similarity cluster in descending-length order —
// spec.md §4.6's clustering rule. threshold <= 0 uses DefaultThreshold.
func Dedup(texts []string, threshold float64) []string {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(texts) == 0 {
		return nil
	}

	candidates := make([]string, len(texts))
	copy(candidates, texts)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	var accepted []string
	for _, candidate := range candidates {
		duplicate := false
		for _, existing := range accepted {
			if Similarity(candidate, existing) >= threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, candidate)
		}
	}
	return accepted
}

// Similarity implements spec.md §4.6's hybrid lexical-similarity metric:
// 0.3·Jaccard(words) + 0.7·(1 − normalized Levenshtein distance), with the
// documented short-circuits evaluated before the weighted blend.
func Similarity(a, b string) float64 {
	normA := strings.ToLower(strings.TrimSpace(a))
	normB := strings.ToLower(strings.TrimSpace(b))
	if normA == normB {
		return 1
	}
	if normA == "" || normB == "" {
		return 0
	}

	shorter, longer := len(normA), len(normB)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if float64(shorter)/float64(longer) < 0.3 {
		return 0
	}

	jaccard := jaccardSimilarity(wordSet(normA), wordSet(normB))
	if jaccard < 0.1 {
		return jaccard
	}

	lev := levenshteinSimilarity(truncate(normA, maxCompareLen), truncate(normB, maxCompareLen))
	return 0.3*jaccard + 0.7*lev
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// jaccardSimilarity is plain set arithmetic over word tokens — trivial
// enough that reaching for a dependency would add nothing (see DESIGN.md).
func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func levenshteinSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
