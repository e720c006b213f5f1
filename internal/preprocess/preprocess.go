// internal/preprocess/preprocess.go
package preprocess

import (
	"image"
	"math"
	"sort"

	"github.com/stackvity/ocr-server/internal/domain"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Pipeline runs the fixed-order image enhancement stages spec.md §4.3
// describes over gocv Mats. It never raises: any stage failure falls back
// to the last known-good Mat, and a decode failure falls back to a blank
// white image.
type Pipeline struct {
	minWidthForOCR int
	logger         *zap.Logger
}

// New constructs a Pipeline. minWidthForOCR is the upscale trigger width
// (spec.md default 600-800px; this repo's config default is 700).
func New(minWidthForOCR int, logger *zap.Logger) *Pipeline {
	return &Pipeline{minWidthForOCR: minWidthForOCR, logger: logger.Named("Pipeline")}
}

// qualityAnalysis holds the cheap heuristics spec.md §4.3 stage 2 requires
// to gate the optional denoise/contrast stages.
type qualityAnalysis struct {
	sharpness float64 // variance of Laplacian
	contrast  float64 // stddev of luminance
	noise     float64 // mean gradient magnitude
}

const (
	blurSharpnessThreshold = 100.0 // below this, treat the image as blurry
	lowContrastThreshold   = 40.0  // below this stddev, treat as low-contrast
	noiseThreshold         = 25.0  // above this, treat as noisy
)

// Run applies every enabled stage in spec.md's fixed order and returns the
// resulting Mat, encoded as PNG bytes ready for the Recognizer. Callers own
// the returned byte slice; no Mat is leaked.
func (p *Pipeline) Run(fileBytes []byte, opts domain.PreprocessOpts) ([]byte, error) {
	// Stage 1: decode.
	mat, err := gocv.IMDecode(fileBytes, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		p.logger.Warn("decode failed, falling back to blank image", zap.Error(err))
		blank := blankWhiteImage()
		defer blank.Close()
		return encode(blank)
	}
	defer mat.Close()

	original := gocv.NewMat()
	defer original.Close()
	mat.CopyTo(&original)

	working := mat

	quality := p.analyzeQuality(working)

	if opts.Upscale {
		if upscaled, ok := p.stageUpscale(working); ok {
			defer upscaled.Close()
			working = upscaled
		}
	}

	if opts.Deskew {
		if deskewed, ok := p.stageDeskew(working); ok {
			defer deskewed.Close()
			working = deskewed
		}
	}

	gray, ok := p.stageGrayscale(working)
	if !ok {
		return fallback(original, p.logger)
	}
	defer gray.Close()
	working = gray

	if opts.Denoise && (quality.sharpness < blurSharpnessThreshold || quality.noise > noiseThreshold) {
		if denoised, ok := p.stageDenoise(working); ok {
			defer denoised.Close()
			working = denoised
		}
	}

	if opts.EnhanceContrast && quality.contrast < lowContrastThreshold {
		if enhanced, ok := p.stageContrast(working); ok {
			defer enhanced.Close()
			working = enhanced
		}
	}

	if opts.ThresholdMethod != domain.ThresholdNone {
		if thresholded, ok := p.stageThreshold(working, opts.ThresholdMethod); ok {
			defer thresholded.Close()
			working = thresholded
		}
	}

	if opts.Morphology && quality.noise > noiseThreshold {
		if morphed, ok := p.stageMorphology(working); ok {
			defer morphed.Close()
			working = morphed
		}
	}

	out, err := encode(working)
	if err != nil {
		p.logger.Warn("encode of processed image failed, falling back to original", zap.Error(err))
		return fallback(original, p.logger)
	}
	return out, nil
}

func fallback(original gocv.Mat, logger *zap.Logger) ([]byte, error) {
	out, err := encode(original)
	if err != nil {
		logger.Error("fallback encode of original image failed", zap.Error(err))
		blank := blankWhiteImage()
		defer blank.Close()
		return encode(blank)
	}
	return out, nil
}

func encode(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".png", mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func blankWhiteImage() gocv.Mat {
	mat := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(255, 255, 255, 0))
	return mat
}

// analyzeQuality computes the cheap sharpness/contrast/noise heuristics
// spec.md §4.3 stage 2 describes, used only to gate later optional stages.
func (p *Pipeline) analyzeQuality(mat gocv.Mat) qualityAnalysis {
	gray := gocv.NewMat()
	defer gray.Close()
	if mat.Channels() > 1 {
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	} else {
		mat.CopyTo(&gray)
	}

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)
	mean, stddevLap := gocv.NewMat(), gocv.NewMat()
	defer mean.Close()
	defer stddevLap.Close()
	gocv.MeanStdDev(laplacian, &mean, &stddevLap)
	sharpness := 0.0
	if stddevLap.Rows() > 0 {
		v := stddevLap.GetDoubleAt(0, 0)
		sharpness = v * v
	}

	meanLum, stddevLum := gocv.NewMat(), gocv.NewMat()
	defer meanLum.Close()
	defer stddevLum.Close()
	gocv.MeanStdDev(gray, &meanLum, &stddevLum)
	contrast := 0.0
	if stddevLum.Rows() > 0 {
		contrast = stddevLum.GetDoubleAt(0, 0)
	}

	gradX, gradY := gocv.NewMat(), gocv.NewMat()
	defer gradX.Close()
	defer gradY.Close()
	gocv.Sobel(gray, &gradX, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gradY, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, gocv.BorderDefault)
	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.Magnitude(gradX, gradY, &magnitude)
	meanMag := magnitude.Mean()

	return qualityAnalysis{sharpness: sharpness, contrast: contrast, noise: meanMag.Val1}
}

func (p *Pipeline) stageUpscale(mat gocv.Mat) (gocv.Mat, bool) {
	if mat.Cols() >= p.minWidthForOCR {
		return gocv.Mat{}, false
	}
	scale := float64(p.minWidthForOCR) / float64(mat.Cols())
	newW := int(float64(mat.Cols()) * scale)
	newH := int(float64(mat.Rows()) * scale)
	out := gocv.NewMat()
	gocv.Resize(mat, &out, image.Pt(newW, newH), 0, 0, gocv.InterpolationLanczos4)
	return out, true
}

// stageDeskew downsamples to ~1000px width, runs Canny + probabilistic
// Hough lines restricted to near-horizontal bearings, takes the median
// angle of the top 10 detected lines, and rotates the full-resolution
// image around its center if the angle exceeds 0.2 degrees.
func (p *Pipeline) stageDeskew(mat gocv.Mat) (gocv.Mat, bool) {
	const detectWidth = 1000
	scale := 1.0
	small := gocv.NewMat()
	defer small.Close()
	if mat.Cols() > detectWidth {
		scale = float64(detectWidth) / float64(mat.Cols())
		gocv.Resize(mat, &small, image.Pt(detectWidth, int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
	} else {
		mat.CopyTo(&small)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, 50, 50, 10)

	angles := make([]float64, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		x1 := float64(lines.GetVeciAt(i, 0)[0])
		y1 := float64(lines.GetVeciAt(i, 0)[1])
		x2 := float64(lines.GetVeciAt(i, 0)[2])
		y2 := float64(lines.GetVeciAt(i, 0)[3])
		if x2 == x1 {
			continue
		}
		angle := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
		if math.Abs(angle) < 45 { // near-horizontal only
			angles = append(angles, angle)
		}
	}
	if len(angles) == 0 {
		return gocv.Mat{}, false
	}
	if len(angles) > 10 {
		angles = angles[:10]
	}
	sort.Float64s(angles)
	medianAngle := angles[len(angles)/2]

	if math.Abs(medianAngle) < 0.2 {
		return gocv.Mat{}, false
	}

	center := image.Pt(mat.Cols()/2, mat.Rows()/2)
	rotMat := gocv.GetRotationMatrix2D(center, medianAngle, 1.0)
	defer rotMat.Close()
	out := gocv.NewMat()
	gocv.WarpAffineWithParams(mat, &out, rotMat, image.Pt(mat.Cols(), mat.Rows()), gocv.InterpolationLinear, gocv.BorderReplicate, gocv.NewScalar(0, 0, 0, 0))
	return out, true
}

func (p *Pipeline) stageGrayscale(mat gocv.Mat) (gocv.Mat, bool) {
	out := gocv.NewMat()
	if mat.Channels() == 1 {
		mat.CopyTo(&out)
		return out, true
	}
	gocv.CvtColor(mat, &out, gocv.ColorBGRToGray)
	return out, true
}

func (p *Pipeline) stageDenoise(mat gocv.Mat) (gocv.Mat, bool) {
	out := gocv.NewMat()
	gocv.BilateralFilter(mat, &out, 5, 50, 50)
	return out, true
}

func (p *Pipeline) stageContrast(mat gocv.Mat) (gocv.Mat, bool) {
	clahe := gocv.NewCLAHEWithParams(2.5, image.Pt(8, 8))
	defer clahe.Close()
	out := gocv.NewMat()
	clahe.Apply(mat, &out)
	return out, true
}

func (p *Pipeline) stageThreshold(mat gocv.Mat, method domain.ThresholdMethod) (gocv.Mat, bool) {
	out := gocv.NewMat()
	switch method {
	case domain.ThresholdOtsu:
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(mat, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
		gocv.Threshold(blurred, &out, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	case domain.ThresholdAdaptiveGaussian:
		gocv.AdaptiveThreshold(mat, &out, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 13, 2)
	case domain.ThresholdAdaptiveMean:
		gocv.AdaptiveThreshold(mat, &out, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, 13, 2)
	default:
		out.Close()
		return gocv.Mat{}, false
	}
	return out, true
}

func (p *Pipeline) stageMorphology(mat gocv.Mat) (gocv.Mat, bool) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	closed := gocv.NewMat()
	gocv.MorphologyEx(mat, &closed, gocv.MorphClose, kernel)
	out := gocv.NewMat()
	gocv.MorphologyEx(closed, &out, gocv.MorphOpen, kernel)
	closed.Close()
	return out, true
}
