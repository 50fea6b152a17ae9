// Package plate procedurally generates colour-vision test plates: a tiled
// background with an embedded target whose hue sits on (or off) a known
// confusion axis. Generation is a pure function of the request, so equal
// seeds always reproduce identical plates.
package plate

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/chromacheck/chromacheck/internal/colour"
	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/rng"
)

// DefaultGridSize is the tile grid resolution used when a request does not
// specify one.
const DefaultGridSize = 24

// ErrInvalidRequest reports a malformed generation request.
var ErrInvalidRequest = errors.New("plate: invalid request")

// Target describes the embedded figure the subject must identify.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value string     `json:"value"`
}

// AnimParams are the deterministic noise-field parameters an external
// renderer uses to modulate one cell's colour over time. The generator only
// supplies them; per-frame evaluation belongs to the renderer.
type AnimParams struct {
	Phase float64 `json:"phase"`
	Speed float64 `json:"speed"`
	FlowX float64 `json:"flowX"`
	FlowY float64 `json:"flowY"`
}

// Cell is one tile of the plate grid.
type Cell struct {
	Base     colour.RGB  `json:"base"`
	InTarget bool        `json:"inTarget"`
	Anim     *AnimParams `json:"anim,omitempty"`
}

// Plate is one immutable test trial.
type Plate struct {
	Seed         string             `json:"seed"`
	Category     Category           `json:"category"`
	Difficulty   Difficulty         `json:"difficulty"`
	Target       Target             `json:"target"`
	GridSize     int                `json:"gridSize"`
	Mask         []bool             `json:"-"`
	Cells        []Cell             `json:"-"`
	Background   colour.HSL         `json:"background"`
	TargetColour colour.HSL         `json:"targetColour"`
	TargetBounds image.Rectangle    `json:"targetBounds"`
	Filter       *filter.Parameters `json:"filter,omitempty"`
}

// Request describes one plate to generate.
type Request struct {
	Seed       string
	Category   Category
	Difficulty Difficulty
	TargetKind TargetKind
	// Filter, when non-nil, pre-transforms every cell colour at
	// FilterStrength (default 1.0).
	Filter         *filter.Parameters
	FilterStrength float64
	// Animated swaps static per-cell jitter for noise-field animation
	// parameters supplied to the renderer.
	Animated bool
	GridSize int
}

// Generate builds one plate from the request. Calling it twice with an
// identical request produces structurally identical output.
func Generate(req Request) (*Plate, error) {
	if req.Seed == "" {
		return nil, fmt.Errorf("%w: empty seed", ErrInvalidRequest)
	}
	pal, ok := palettes[req.Category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, req.Category)
	}
	diff := req.Difficulty
	if diff == "" {
		diff = DifficultyMedium
	}
	spec, ok := difficulties[diff]
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, diff)
	}
	grid := req.GridSize
	if grid == 0 {
		grid = DefaultGridSize
	}
	if grid < 8 {
		return nil, fmt.Errorf("%w: grid size %d below minimum 8", ErrInvalidRequest, grid)
	}
	kind := req.TargetKind
	if kind == "" {
		kind = KindGlyph
	}

	stream := rng.FromString(req.Seed)

	bg, err := rng.Pick(stream, pal.backgrounds)
	if err != nil {
		return nil, err
	}
	tg, err := rng.Pick(stream, pal.targets)
	if err != nil {
		return nil, err
	}

	// Harder plates pull the target hue toward the background hue.
	tg.H = lerpHue(tg.H, bg.H, spec.huePull)

	var value string
	switch kind {
	case KindGlyph:
		value, err = rng.Pick(stream, glyphValues)
	case KindShape:
		value, err = rng.Pick(stream, shapeValues)
	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", ErrInvalidRequest, kind)
	}
	if err != nil {
		return nil, err
	}

	mask, err := buildMask(kind, value, grid)
	if err != nil {
		return nil, err
	}

	strength := req.FilterStrength
	if req.Filter != nil && strength == 0 {
		strength = 1.0
	}

	cells := make([]Cell, grid*grid)
	for i := range cells {
		base := bg
		if mask[i] {
			base = tg
		}

		cell := Cell{InTarget: mask[i]}
		if req.Animated {
			cell.Anim = &AnimParams{
				Phase: stream.Range(0, 2*math.Pi),
				Speed: stream.Range(0.5, 1.5),
				FlowX: stream.Range(-1, 1),
				FlowY: stream.Range(-1, 1),
			}
		} else {
			base.H = colour.NormalizeHue(base.H + stream.Range(-spec.hueJitter, spec.hueJitter))
			base.S = colour.Clamp(base.S+stream.Range(-spec.satJitter, spec.satJitter), 0, 1)
			base.L = colour.Clamp(base.L+stream.Range(-spec.lumJitter, spec.lumJitter), 0, 1)
		}

		rgb := colour.HSLToRGB(base)
		if req.Filter != nil {
			rgb = filter.Apply(rgb, *req.Filter, strength)
		}
		cell.Base = rgb
		cells[i] = cell
	}

	return &Plate{
		Seed:         req.Seed,
		Category:     req.Category,
		Difficulty:   diff,
		Target:       Target{Kind: kind, Value: value},
		GridSize:     grid,
		Mask:         mask,
		Cells:        cells,
		Background:   bg,
		TargetColour: tg,
		TargetBounds: maskBounds(mask, grid),
		Filter:       req.Filter,
	}, nil
}
