// internal/dispatcher/dispatcher_test.go
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stackvity/ocr-server/internal/cache"
	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/preprocess"
	"github.com/stackvity/ocr-server/internal/recognizer"
	"github.com/stackvity/ocr-server/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRecognizer stands in for the Tesseract-backed engine so dispatcher
// tests don't depend on a real OCR binary being installed.
type fakeRecognizer struct {
	calls  int32
	result recognizer.RawResult
	err    error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, imageBytes []byte) (recognizer.RawResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.result, f.err
}

func (f *fakeRecognizer) Ping(ctx context.Context) error { return nil }

func testPNGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := 0; x < 64; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestDispatcher(t *testing.T, r recognizer.Recognizer) *Dispatcher {
	t.Helper()
	c, err := cache.New(100, time.Hour, zap.NewNop())
	require.NoError(t, err)
	pipeline := preprocess.New(700, zap.NewNop())
	sampler := video.New(45*time.Second, zap.NewNop())
	return New(8, c, r, pipeline, sampler, 0.5, 10*time.Second, 10*time.Second, 45*time.Second, zap.NewNop())
}

func TestSubmitImageSuccessPath(t *testing.T) {
	fake := &fakeRecognizer{result: recognizer.RawResult{
		RecTexts:  []string{"hello"},
		RecScores: []float64{0.9},
		RecPolys:  [][4]domain.Point{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}},
	}}
	d := newTestDispatcher(t, fake)

	result, err := d.SubmitImage(context.Background(), testPNGBytes(t), domain.DefaultPreprocessOpts(), domain.DefaultTextOpts())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Text, "hello")
	assert.Equal(t, 1, result.WordCount)

	snap := d.Metrics().Snapshot()
	assert.EqualValues(t, 1, snap.JobsSubmitted)
	assert.EqualValues(t, 1, snap.JobsSucceeded)
	assert.EqualValues(t, 1, snap.CacheMisses)
}

func TestSubmitImageCachesRepeatedRequests(t *testing.T) {
	fake := &fakeRecognizer{result: recognizer.RawResult{
		RecTexts:  []string{"cached"},
		RecScores: []float64{0.9},
		RecPolys:  [][4]domain.Point{{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}}},
	}}
	d := newTestDispatcher(t, fake)
	fileBytes := testPNGBytes(t)
	opts := domain.DefaultPreprocessOpts()
	textOpts := domain.DefaultTextOpts()

	_, err := d.SubmitImage(context.Background(), fileBytes, opts, textOpts)
	require.NoError(t, err)
	_, err = d.SubmitImage(context.Background(), fileBytes, opts, textOpts)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))

	snap := d.Metrics().Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
}

func TestSubmitImageRecognitionFailureYieldsFailedResultNotError(t *testing.T) {
	fake := &fakeRecognizer{err: domain.NewErrTransientIO("recognize", errors.New("engine crashed"))}
	d := newTestDispatcher(t, fake)

	result, err := d.SubmitImage(context.Background(), testPNGBytes(t), domain.DefaultPreprocessOpts(), domain.DefaultTextOpts())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestSubmitBatchHandlesMixOfValidAndMissingFiles(t *testing.T) {
	fake := &fakeRecognizer{result: recognizer.RawResult{
		RecTexts:  []string{"batch"},
		RecScores: []float64{0.9},
		RecPolys:  [][4]domain.Point{{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}}},
	}}
	d := newTestDispatcher(t, fake)

	dir := t.TempDir()
	validPath := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(validPath, testPNGBytes(t), 0o644))
	missingPath := filepath.Join(dir, "missing.png")

	result := d.SubmitBatch(context.Background(), []string{validPath, missingPath}, domain.DefaultPreprocessOpts(), domain.DefaultTextOpts())

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, "File not found", result.Results[1].ErrorMessage)
}

func TestSubmitBatchPreservesInputOrder(t *testing.T) {
	fake := &fakeRecognizer{result: recognizer.RawResult{RecTexts: []string{"x"}, RecScores: []float64{0.9}, RecPolys: [][4]domain.Point{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}}}
	d := newTestDispatcher(t, fake)

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(p, testPNGBytes(t), 0o644))
		paths = append(paths, p)
	}

	result := d.SubmitBatch(context.Background(), paths, domain.DefaultPreprocessOpts(), domain.DefaultTextOpts())
	assert.Equal(t, 5, result.FilesProcessed)
	assert.Len(t, result.Results, 5)
}
