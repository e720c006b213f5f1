// internal/layout/layout.go
package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/stackvity/ocr-server/internal/domain"
)

// columnGapFraction is the minimum x-axis gap, as a fraction of page width,
// that separates columns — spec.md §4.7 step 1 default.
const columnGapFraction = 0.1

// blockGapFactor and paragraphGapFactor scale avg block height to decide
// where a new block starts and where a paragraph break is emitted.
const (
	blockGapFactor     = 1.5
	paragraphGapFactor = 2.0
	rowGapFactor       = 0.5
)

type layoutKind int

const (
	layoutSingleColumn layoutKind = iota
	layoutMultiColumn
	layoutTable
)

type block struct {
	words  []domain.WordDetail
	bbox   domain.BBox
	height float64
}

// Reconstruct turns an unordered set of recognised words into
// reading-order prose per spec.md §4.7. Any panic during reconstruction is
// swallowed and the fallback (plain space-joined word texts) is returned
// instead — post-processing must never fail a request.
func Reconstruct(words []domain.WordDetail, pageWidth int, opts domain.TextOpts) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fallbackJoin(words)
		}
	}()

	if len(words) == 0 {
		return ""
	}
	if !opts.UseAdvanced {
		return fallbackJoin(words)
	}

	blocks := groupBlocks(words, pageWidth)
	if len(blocks) == 0 {
		return fallbackJoin(words)
	}

	avgHeight := averageHeight(blocks)
	sortBlocksByReadingOrder(blocks, opts.ReadingOrder)

	kind := classifyLayout(blocks, pageWidth)
	switch kind {
	case layoutTable:
		return cleanup(emitTable(blocks, avgHeight))
	case layoutMultiColumn:
		return cleanup(emitMultiColumn(blocks, pageWidth, opts.ReadingOrder))
	default:
		return cleanup(emitSingleColumn(blocks, avgHeight))
	}
}

func fallbackJoin(words []domain.WordDetail) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) != "" {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// classifyLayout implements spec.md §4.7 step 1: sort the block x-origins,
// find gaps between neighbours wider than columnGapFraction·pageWidth, then disambiguate
// table vs multi-column by origin diversity.
func classifyLayout(blocks []block, pageWidth int) layoutKind {
	if pageWidth <= 0 {
		return layoutSingleColumn
	}
	gapThreshold := float64(pageWidth) * columnGapFraction

	xs := make([]int, len(blocks))
	for i, b := range blocks {
		xs[i] = b.bbox.X
	}
	sort.Ints(xs)

	gaps := 0
	for i := 1; i < len(xs); i++ {
		if float64(xs[i]-xs[i-1]) > gapThreshold {
			gaps++
		}
	}
	if gaps == 0 {
		return layoutSingleColumn
	}

	distinctX := distinctCount(blocks, func(b block) int { return b.bbox.X })
	distinctY := distinctCount(blocks, func(b block) int { return b.bbox.Y })
	if distinctX >= 3 && distinctY >= 3 {
		return layoutTable
	}
	return layoutMultiColumn
}

func distinctCount(blocks []block, key func(block) int) int {
	seen := make(map[int]struct{}, len(blocks))
	for _, b := range blocks {
		seen[key(b)] = struct{}{}
	}
	return len(seen)
}

// groupBlocks implements spec.md §4.7 step 2: sort words by (y, x), then
// walk the list, starting a new block whenever the vertical offset from
// the current block exceeds blockGapFactor·avgHeight, or (when pageWidth is
// known) whenever the horizontal distance from the previous word exceeds
// columnGapFraction·pageWidth, so side-by-side columns stay separate blocks.
func groupBlocks(words []domain.WordDetail, pageWidth int) []block {
	sorted := make([]domain.WordDetail, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].BBox, sorted[j].BBox
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	avgHeight := averageWordHeight(sorted)
	if avgHeight <= 0 {
		avgHeight = 1
	}
	columnGap := float64(pageWidth) * columnGapFraction

	var blocks []block
	var current []domain.WordDetail
	lastY := 0
	for i, w := range sorted {
		if i == 0 {
			current = append(current, w)
			lastY = w.BBox.Y
			continue
		}
		prev := sorted[i-1].BBox
		hGap := abs(w.BBox.X - (prev.X + prev.Width))
		if float64(w.BBox.Y-lastY) > blockGapFactor*avgHeight ||
			(pageWidth > 0 && float64(hGap) > columnGap) {
			blocks = append(blocks, newBlock(current))
			current = nil
		}
		current = append(current, w)
		lastY = w.BBox.Y
	}
	if len(current) > 0 {
		blocks = append(blocks, newBlock(current))
	}
	return blocks
}

func newBlock(words []domain.WordDetail) block {
	b := block{words: words}
	minX, minY := words[0].BBox.X, words[0].BBox.Y
	maxX, maxY := words[0].BBox.X+words[0].BBox.Width, words[0].BBox.Y+words[0].BBox.Height
	var heightSum float64
	for _, w := range words {
		if w.BBox.X < minX {
			minX = w.BBox.X
		}
		if w.BBox.Y < minY {
			minY = w.BBox.Y
		}
		if w.BBox.X+w.BBox.Width > maxX {
			maxX = w.BBox.X + w.BBox.Width
		}
		if w.BBox.Y+w.BBox.Height > maxY {
			maxY = w.BBox.Y + w.BBox.Height
		}
		heightSum += float64(w.BBox.Height)
	}
	b.bbox = domain.BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	b.height = heightSum / float64(len(words))
	return b
}

func averageWordHeight(words []domain.WordDetail) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += float64(w.BBox.Height)
	}
	return sum / float64(len(words))
}

func averageHeight(blocks []block) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range blocks {
		sum += b.height
	}
	return sum / float64(len(blocks))
}

// sortBlocksByReadingOrder implements spec.md §4.7 step 3's four sort keys.
func sortBlocksByReadingOrder(blocks []block, order domain.ReadingOrder) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i].bbox, blocks[j].bbox
		switch order {
		case domain.ReadingOrderRTLTTB:
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.X > b.X
		case domain.ReadingOrderTTBLTR:
			if a.X != b.X {
				return a.X < b.X
			}
			return a.Y < b.Y
		case domain.ReadingOrderTTBRTL:
			if a.X != b.X {
				return a.X > b.X
			}
			return a.Y < b.Y
		default: // ReadingOrderLTRTTB
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.X < b.X
		}
	})
}

func blockText(b block) string {
	words := make([]string, 0, len(b.words))
	for _, w := range b.words {
		if strings.TrimSpace(w.Text) != "" {
			words = append(words, w.Text)
		}
	}
	return strings.Join(words, " ")
}

// emitSingleColumn implements spec.md §4.7 step 4's single-column rule.
func emitSingleColumn(blocks []block, avgHeight float64) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			gap := float64(b.bbox.Y - (blocks[i-1].bbox.Y + blocks[i-1].bbox.Height))
			if avgHeight > 0 && gap > paragraphGapFactor*avgHeight {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(blockText(b))
	}
	return sb.String()
}

// emitMultiColumn implements spec.md §4.7 step 4's multi-column rule:
// assign each block to the column whose x-interval contains its centre.
func emitMultiColumn(blocks []block, pageWidth int, order domain.ReadingOrder) string {
	columns := detectColumns(blocks, pageWidth)
	buckets := make([][]block, len(columns))
	for _, b := range blocks {
		centre := b.bbox.X + b.bbox.Width/2
		idx := columnIndexFor(columns, centre)
		buckets[idx] = append(buckets[idx], b)
	}

	var parts []string
	for _, col := range buckets {
		if len(col) == 0 {
			continue
		}
		parts = append(parts, emitSingleColumn(col, averageHeight(col)))
	}
	return strings.Join(parts, "\n\n--- Column Break ---\n\n")
}

type xInterval struct{ min, max int }

func detectColumns(blocks []block, pageWidth int) []xInterval {
	gapThreshold := float64(pageWidth) * columnGapFraction

	xs := make([]int, len(blocks))
	for i, b := range blocks {
		xs[i] = b.bbox.X
	}
	sort.Ints(xs)

	var boundaries []int
	for i := 1; i < len(xs); i++ {
		if float64(xs[i]-xs[i-1]) > gapThreshold {
			boundaries = append(boundaries, (xs[i]+xs[i-1])/2)
		}
	}
	if len(boundaries) == 0 {
		return []xInterval{{min: -1 << 30, max: 1 << 30}}
	}

	intervals := make([]xInterval, 0, len(boundaries)+1)
	prev := -1 << 30
	for _, bnd := range boundaries {
		intervals = append(intervals, xInterval{min: prev, max: bnd})
		prev = bnd
	}
	intervals = append(intervals, xInterval{min: prev, max: 1 << 30})
	return intervals
}

func columnIndexFor(columns []xInterval, x int) int {
	for i, c := range columns {
		if x >= c.min && x < c.max {
			return i
		}
	}
	return len(columns) - 1
}

// emitTable implements spec.md §4.7 step 4's table rule: rows by near-equal
// y, cells joined with " | ", rows joined with newlines.
func emitTable(blocks []block, avgHeight float64) string {
	sorted := make([]block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].bbox.Y < sorted[j].bbox.Y })

	rowThreshold := rowGapFactor * avgHeight
	var rows [][]block
	var current []block
	lastY := 0
	for i, b := range sorted {
		if i == 0 {
			current = append(current, b)
			lastY = b.bbox.Y
			continue
		}
		if float64(abs(b.bbox.Y-lastY)) >= rowThreshold {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, b)
		lastY = b.bbox.Y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].bbox.X < row[j].bbox.X })
		cells := make([]string, 0, len(row))
		for _, b := range row {
			cells = append(cells, blockText(b))
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var (
	interiorWhitespace = regexp.MustCompile(`[ \t]+`)
	lineEdgeWhitespace = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	excessNewlines     = regexp.MustCompile(`\n{3,}`)
)

// cleanup implements spec.md §4.7 step 5.
func cleanup(s string) string {
	s = interiorWhitespace.ReplaceAllString(s, " ")
	s = lineEdgeWhitespace.ReplaceAllString(s, "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
