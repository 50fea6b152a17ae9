package plate

import (
	"fmt"
	"math"

	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/rng"
)

// SequenceRequest describes a batch of plates forming one session.
type SequenceRequest struct {
	Total int
	// CategoryRatio is the fraction of confusion-axis plates; the control
	// count is the remainder. Counts are rounded, not truncated.
	CategoryRatio float64
	Seed          string
	// ProgressiveDifficulty assigns difficulty by position: the first ~25%
	// easy, the next ~35% medium, the remainder hard.
	ProgressiveDifficulty bool
	TargetKind            TargetKind
	Filter                *filter.Parameters
	FilterStrength        float64
	Animated              bool
	GridSize              int
}

// GenerateSequence builds an ordered batch of plates. The category order, the
// per-plate sub-seeds, and the difficulty ramp are all deterministic functions
// of the session seed, so the same request reproduces the same session.
func GenerateSequence(req SequenceRequest) ([]*Plate, error) {
	if req.Total <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %d", ErrInvalidRequest, req.Total)
	}
	if req.CategoryRatio < 0 || req.CategoryRatio > 1 {
		return nil, fmt.Errorf("%w: category ratio %.3f outside [0,1]", ErrInvalidRequest, req.CategoryRatio)
	}
	if req.Seed == "" {
		return nil, fmt.Errorf("%w: empty seed", ErrInvalidRequest)
	}

	confusion := int(math.Round(float64(req.Total) * req.CategoryRatio))
	control := req.Total - confusion

	categories := make([]Category, 0, req.Total)
	for i := 0; i < confusion; i++ {
		categories = append(categories, CategoryDeutan)
	}
	for i := 0; i < control; i++ {
		categories = append(categories, CategoryControl)
	}

	stream := rng.FromString(req.Seed)
	categories, err := rng.Shuffle(stream, categories)
	if err != nil {
		return nil, err
	}

	plates := make([]*Plate, req.Total)
	for i, cat := range categories {
		p, err := Generate(Request{
			Seed:           rng.SubSeed(req.Seed, i),
			Category:       cat,
			Difficulty:     difficultyAt(i, req.Total, req.ProgressiveDifficulty),
			TargetKind:     req.TargetKind,
			Filter:         req.Filter,
			FilterStrength: req.FilterStrength,
			Animated:       req.Animated,
			GridSize:       req.GridSize,
		})
		if err != nil {
			return nil, fmt.Errorf("plate %d: %w", i, err)
		}
		plates[i] = p
	}
	return plates, nil
}

// difficultyAt maps a position to its difficulty tier when the ramp is on.
func difficultyAt(i, total int, progressive bool) Difficulty {
	if !progressive {
		return DifficultyMedium
	}
	easyEnd := int(math.Round(float64(total) * 0.25))
	mediumEnd := int(math.Round(float64(total) * 0.60))
	switch {
	case i < easyEnd:
		return DifficultyEasy
	case i < mediumEnd:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
