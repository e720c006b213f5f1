// internal/domain/types_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanConfidenceEmpty(t *testing.T) {
	assert.Equal(t, 0.0, MeanConfidence(nil))
	assert.Equal(t, 0.0, MeanConfidence([]WordDetail{}))
}

func TestMeanConfidenceAveragesWords(t *testing.T) {
	words := []WordDetail{{Confidence: 0.9}, {Confidence: 0.7}, {Confidence: 0.5}}
	assert.InDelta(t, 0.7, MeanConfidence(words), 1e-9)
}

func TestNewOCRResultMaintainsCountsAndConfidence(t *testing.T) {
	words := []WordDetail{{Text: "a", Confidence: 0.8}, {Text: "b", Confidence: 0.6}}
	lines := []TextLine{{Text: "a b", Confidence: 0.7}}

	result := NewOCRResult("a b", words, lines, 42*time.Millisecond)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.WordCount)
	assert.Equal(t, 1, result.LineCount)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Equal(t, 42*time.Millisecond, result.ProcessingTime)
	assert.Empty(t, result.ErrorMessage)
}

func TestFailedOCRResultZeroesBody(t *testing.T) {
	result := FailedOCRResult("decode error")
	assert.False(t, result.Success)
	assert.Equal(t, "decode error", result.ErrorMessage)
	assert.Zero(t, result.WordCount)
	assert.Zero(t, result.Confidence)
}

func TestPolygonBoundingBox(t *testing.T) {
	poly := Polygon{Points: [4]Point{{X: 10, Y: 10}, {X: 30, Y: 12}, {X: 28, Y: 40}, {X: 8, Y: 38}}}
	bbox := poly.BoundingBox()
	assert.Equal(t, BBox{X: 8, Y: 10, Width: 22, Height: 30}, bbox)
}

func TestDefaultOptsAreStable(t *testing.T) {
	pre := DefaultPreprocessOpts()
	assert.True(t, pre.Deskew)
	assert.True(t, pre.Upscale)
	assert.Equal(t, ThresholdAdaptiveGaussian, pre.ThresholdMethod)

	text := DefaultTextOpts()
	assert.True(t, text.UseAdvanced)
	assert.Equal(t, ReadingOrderLTRTTB, text.ReadingOrder)

	video := DefaultVideoOpts()
	assert.Equal(t, 0.98, video.SimilarityThreshold)
	assert.Equal(t, 50, video.MaxFrames)
}
