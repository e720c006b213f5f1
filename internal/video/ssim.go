// internal/video/ssim.go
package video

import (
	"image"

	"gocv.io/x/gocv"
)

// thumbnailSize is the fixed small size spec.md §4.5 step 3 specifies for
// downscaled grayscale thumbnails used in frame-to-frame SSIM comparison.
var thumbnailSize = [2]int{320, 180}

const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// ssim computes the Structural Similarity Index between two equally-sized
// single-channel grayscale Mats, following the standard global formulation
// (gocv ships no SSIM primitive, so this is hand-rolled on top of its Mat
// arithmetic — see DESIGN.md).
func ssim(a, b gocv.Mat) float64 {
	meanA, stdA := gocv.NewMat(), gocv.NewMat()
	defer meanA.Close()
	defer stdA.Close()
	gocv.MeanStdDev(a, &meanA, &stdA)

	meanB, stdB := gocv.NewMat(), gocv.NewMat()
	defer meanB.Close()
	defer stdB.Close()
	gocv.MeanStdDev(b, &meanB, &stdB)

	muA := meanA.GetDoubleAt(0, 0)
	muB := meanB.GetDoubleAt(0, 0)
	sigmaA := stdA.GetDoubleAt(0, 0)
	sigmaB := stdB.GetDoubleAt(0, 0)
	varA := sigmaA * sigmaA
	varB := sigmaB * sigmaB

	covar := covariance(a, b, muA, muB)

	numerator := (2*muA*muB + ssimC1) * (2*covar + ssimC2)
	denominator := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	if denominator == 0 {
		return 1
	}
	return numerator / denominator
}

// covariance computes the pixelwise covariance of two equally-sized
// single-channel Mats given their precomputed means.
func covariance(a, b gocv.Mat, meanA, meanB float64) float64 {
	rows, cols := a.Rows(), a.Cols()
	if rows == 0 || cols == 0 {
		return 0
	}
	var sum float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			va := float64(a.GetUCharAt(y, x)) - meanA
			vb := float64(b.GetUCharAt(y, x)) - meanB
			sum += va * vb
		}
	}
	return sum / float64(rows*cols)
}

// thumbnail downscales a BGR or grayscale Mat to the fixed comparison size
// and converts it to single-channel grayscale.
func thumbnail(mat gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if mat.Channels() > 1 {
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	} else {
		mat.CopyTo(&gray)
	}
	defer gray.Close()

	out := gocv.NewMat()
	gocv.Resize(gray, &out, image.Pt(thumbnailSize[0], thumbnailSize[1]), 0, 0, gocv.InterpolationArea)
	return out
}
