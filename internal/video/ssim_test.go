// internal/video/ssim_test.go
package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solidMat(value uint8, rows, cols int) gocv.Mat {
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	mat.SetTo(gocv.NewScalar(float64(value), 0, 0, 0))
	return mat
}

func TestSSIMIdenticalMatsIsOne(t *testing.T) {
	a := solidMat(128, 32, 32)
	defer a.Close()
	b := solidMat(128, 32, 32)
	defer b.Close()

	assert.InDelta(t, 1.0, ssim(a, b), 1e-6)
}

func TestSSIMVeryDifferentMatsIsLow(t *testing.T) {
	a := solidMat(0, 32, 32)
	defer a.Close()
	b := solidMat(255, 32, 32)
	defer b.Close()

	score := ssim(a, b)
	assert.Less(t, score, 0.5)
}

func TestThumbnailProducesFixedSizeGrayscale(t *testing.T) {
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(10, 20, 30, 0))

	thumb := thumbnail(mat)
	defer thumb.Close()

	require.False(t, thumb.Empty())
	assert.Equal(t, thumbnailSize[1], thumb.Rows())
	assert.Equal(t, thumbnailSize[0], thumb.Cols())
	assert.Equal(t, 1, thumb.Channels())
}

func TestThumbnailPassesThroughAlreadyGrayscale(t *testing.T) {
	mat := gocv.NewMatWithSize(100, 200, gocv.MatTypeCV8UC1)
	defer mat.Close()

	thumb := thumbnail(mat)
	defer thumb.Close()
	assert.Equal(t, 1, thumb.Channels())
}
