package plate

import "github.com/chromacheck/chromacheck/internal/colour"

// Category classifies a plate by the palette pair it draws from.
type Category string

const (
	// CategoryDeutan uses confusion-axis palette pairs that are hard to
	// discriminate under red-green deficiency.
	CategoryDeutan Category = "deutan"
	// CategoryControl uses palette pairs unaffected by red-green deficiency,
	// validating subject attention and baseline competence.
	CategoryControl Category = "control"
)

// Difficulty selects how far apart the target and background sit perceptually.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// paletteDef holds the candidate background and target hues for a category.
// Lightness is kept close between the two pools so hue carries the signal.
type paletteDef struct {
	backgrounds []colour.HSL
	targets     []colour.HSL
}

// palettes is the tagged palette table: one entry per category, replacing the
// per-variant generator classes of older designs with data.
var palettes = map[Category]paletteDef{
	CategoryDeutan: {
		// Olive-to-green backgrounds against red/orange/brown targets: the
		// classic deutan confusion axis.
		backgrounds: []colour.HSL{
			{H: 95, S: 0.40, L: 0.54},
			{H: 110, S: 0.36, L: 0.52},
			{H: 125, S: 0.34, L: 0.50},
			{H: 85, S: 0.44, L: 0.55},
		},
		targets: []colour.HSL{
			{H: 18, S: 0.50, L: 0.52},
			{H: 28, S: 0.54, L: 0.50},
			{H: 38, S: 0.46, L: 0.53},
			{H: 10, S: 0.44, L: 0.51},
		},
	},
	CategoryControl: {
		// Blue backgrounds against yellow targets: discriminable under any
		// red-green deficiency.
		backgrounds: []colour.HSL{
			{H: 215, S: 0.42, L: 0.54},
			{H: 230, S: 0.38, L: 0.52},
			{H: 205, S: 0.44, L: 0.55},
		},
		targets: []colour.HSL{
			{H: 52, S: 0.58, L: 0.54},
			{H: 45, S: 0.54, L: 0.52},
			{H: 60, S: 0.50, L: 0.55},
		},
	},
}

// difficultySpec controls per-cell jitter amplitude and how far the target
// hue is pulled toward the background hue.
type difficultySpec struct {
	hueJitter float64 // degrees
	satJitter float64
	lumJitter float64
	huePull   float64 // fraction of the hue gap removed
}

var difficulties = map[Difficulty]difficultySpec{
	DifficultyEasy:   {hueJitter: 4, satJitter: 0.04, lumJitter: 0.04, huePull: 0},
	DifficultyMedium: {hueJitter: 6, satJitter: 0.05, lumJitter: 0.06, huePull: 0.12},
	DifficultyHard:   {hueJitter: 8, satJitter: 0.06, lumJitter: 0.09, huePull: 0.28},
}

// lerpHue interpolates from hue a toward hue b by t along the shortest arc.
func lerpHue(a, b, t float64) float64 {
	diff := b - a
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return colour.NormalizeHue(a + diff*t)
}
