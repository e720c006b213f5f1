// internal/recognizer/recognizer_test.go
package recognizer

import (
	"testing"

	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPoly(x0, y0, x1, y1 int) [4]domain.Point {
	return [4]domain.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestNormalizeDropsWordsBelowMinConfidence(t *testing.T) {
	raw := RawResult{
		RecTexts:  []string{"keep", "drop"},
		RecScores: []float64{0.9, 0.1},
		RecPolys:  [][4]domain.Point{rawPoly(0, 0, 10, 10), rawPoly(0, 0, 10, 10)},
	}

	words, lines := Normalize(raw, 0.5)
	require.Len(t, words, 1)
	require.Len(t, lines, 1)
	assert.Equal(t, "keep", words[0].Text)
	assert.Equal(t, "keep", lines[0].Text)
}

func TestNormalizeStopsAtShortestParallelSlice(t *testing.T) {
	raw := RawResult{
		RecTexts:  []string{"a", "b", "c"},
		RecScores: []float64{0.9, 0.9},
		RecPolys:  [][4]domain.Point{rawPoly(0, 0, 1, 1), rawPoly(0, 0, 1, 1)},
	}

	words, lines := Normalize(raw, 0.0)
	assert.Len(t, words, 2)
	assert.Len(t, lines, 2)
}

func TestNormalizeFillsOrientationAngleWhenPresent(t *testing.T) {
	raw := RawResult{
		RecTexts:       []string{"tilted"},
		RecScores:      []float64{0.9},
		RecPolys:       [][4]domain.Point{rawPoly(0, 0, 4, 4)},
		TextlineAngles: []float64{12.5},
	}

	_, lines := Normalize(raw, 0.0)
	require.Len(t, lines, 1)
	assert.Equal(t, 12.5, lines[0].OrientationAngle)
}

func TestNormalizeDefaultsOrientationAngleToZeroWhenAbsent(t *testing.T) {
	raw := RawResult{
		RecTexts:  []string{"flat"},
		RecScores: []float64{0.9},
		RecPolys:  [][4]domain.Point{rawPoly(0, 0, 4, 4)},
	}

	_, lines := Normalize(raw, 0.0)
	require.Len(t, lines, 1)
	assert.Equal(t, 0.0, lines[0].OrientationAngle)
}

func TestNormalizeComputesBoundingBoxFromPolygon(t *testing.T) {
	raw := RawResult{
		RecTexts:  []string{"box"},
		RecScores: []float64{0.9},
		RecPolys:  [][4]domain.Point{rawPoly(2, 3, 12, 9)},
	}

	words, _ := Normalize(raw, 0.0)
	require.Len(t, words, 1)
	assert.Equal(t, 2, words[0].BBox.X)
	assert.Equal(t, 3, words[0].BBox.Y)
	assert.Equal(t, 10, words[0].BBox.Width)
	assert.Equal(t, 6, words[0].BBox.Height)
}

func TestNormalizeEmptyInputYieldsEmptySlicesNotNil(t *testing.T) {
	words, lines := Normalize(RawResult{}, 0.0)
	assert.Len(t, words, 0)
	assert.Len(t, lines, 0)
}
