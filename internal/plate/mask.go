package plate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// TargetKind selects how a plate's hidden target is shaped.
type TargetKind string

const (
	// KindGlyph embeds a digit, drawn from a fixed bitmap font and scaled to
	// the grid resolution.
	KindGlyph TargetKind = "glyph"
	// KindShape embeds a geometric figure defined by a closed-form inequality.
	KindShape TargetKind = "shape"
)

// glyphRows holds 5x7 bitmaps for the digits used as symbolic targets.
var glyphRows = map[string][7]string{
	"0": {"01110", "10001", "10011", "10101", "11001", "10001", "01110"},
	"1": {"00100", "01100", "00100", "00100", "00100", "00100", "01110"},
	"2": {"01110", "10001", "00001", "00010", "00100", "01000", "11111"},
	"3": {"11111", "00010", "00100", "00010", "00001", "10001", "01110"},
	"4": {"00010", "00110", "01010", "10010", "11111", "00010", "00010"},
	"5": {"11111", "10000", "11110", "00001", "00001", "10001", "01110"},
	"6": {"00110", "01000", "10000", "11110", "10001", "10001", "01110"},
	"7": {"11111", "00001", "00010", "00100", "01000", "01000", "01000"},
	"8": {"01110", "10001", "10001", "01110", "10001", "10001", "01110"},
	"9": {"01110", "10001", "10001", "01111", "00001", "00010", "01100"},
}

var glyphValues = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

var shapeValues = []string{"circle", "square", "diamond", "triangle"}

// ValuePool returns the candidate target values for a kind. The slice is
// shared; callers must not modify it.
func ValuePool(kind TargetKind) []string {
	if kind == KindShape {
		return shapeValues
	}
	return glyphValues
}

// buildMask produces the row-major target membership mask for a grid of the
// given size.
func buildMask(kind TargetKind, value string, grid int) ([]bool, error) {
	switch kind {
	case KindGlyph:
		return glyphMask(value, grid)
	case KindShape:
		return shapeMask(value, grid)
	default:
		return nil, fmt.Errorf("plate: unknown target kind %q", kind)
	}
}

// glyphMask scales the glyph's 5x7 bitmap to the active grid resolution with
// nearest-neighbour interpolation, leaving a one-eighth margin on each side.
func glyphMask(value string, grid int) ([]bool, error) {
	rows, ok := glyphRows[value]
	if !ok {
		return nil, fmt.Errorf("plate: no glyph bitmap for %q", value)
	}

	src := image.NewGray(image.Rect(0, 0, 5, 7))
	for y, row := range rows {
		for x := 0; x < 5; x++ {
			if row[x] == '1' {
				src.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	margin := grid / 8
	inner := grid - 2*margin
	dst := image.NewGray(image.Rect(0, 0, inner, inner))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	mask := make([]bool, grid*grid)
	for y := 0; y < inner; y++ {
		for x := 0; x < inner; x++ {
			if dst.GrayAt(x, y).Y > 127 {
				mask[(y+margin)*grid+(x+margin)] = true
			}
		}
	}
	return mask, nil
}

// shapeMask evaluates the shape's closed-form inequality per grid cell
// relative to the grid centre.
func shapeMask(value string, grid int) ([]bool, error) {
	mask := make([]bool, grid*grid)
	cx := float64(grid-1) / 2
	cy := float64(grid-1) / 2
	radius := float64(grid) * 0.32

	var inside func(dx, dy float64) bool
	switch value {
	case "circle":
		inside = func(dx, dy float64) bool {
			return math.Sqrt(dx*dx+dy*dy) < radius
		}
	case "square":
		inside = func(dx, dy float64) bool {
			return math.Max(math.Abs(dx), math.Abs(dy)) <= radius*0.85
		}
	case "diamond":
		inside = func(dx, dy float64) bool {
			return math.Abs(dx)+math.Abs(dy) <= radius*1.15
		}
	case "triangle":
		// Upward triangle: half-width grows linearly with dy from the apex.
		inside = func(dx, dy float64) bool {
			if dy < -radius || dy > radius {
				return false
			}
			halfWidth := (dy + radius) / 2
			return math.Abs(dx) <= halfWidth
		}
	default:
		return nil, fmt.Errorf("plate: unknown shape %q", value)
	}

	for y := 0; y < grid; y++ {
		for x := 0; x < grid; x++ {
			if inside(float64(x)-cx, float64(y)-cy) {
				mask[y*grid+x] = true
			}
		}
	}
	return mask, nil
}

// maskBounds returns the bounding rectangle, in grid cells, of the set cells.
func maskBounds(mask []bool, grid int) image.Rectangle {
	minX, minY := grid, grid
	maxX, maxY := -1, -1
	for y := 0; y < grid; y++ {
		for x := 0; x < grid; x++ {
			if mask[y*grid+x] {
				minX = min(minX, x)
				minY = min(minY, y)
				maxX = max(maxX, x)
				maxY = max(maxY, y)
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
