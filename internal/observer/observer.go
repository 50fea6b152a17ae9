// Package observer provides a simulated test subject. It projects plate
// colours through a red-green deficiency model, measures how discriminable
// the target remains, and answers with an accuracy derived from that. It
// stands in for a live subject in non-interactive runs; real responses flow
// through the same Responder contract.
package observer

import (
	"github.com/chromacheck/chromacheck/internal/colour"
	"github.com/chromacheck/chromacheck/internal/plate"
	"github.com/chromacheck/chromacheck/internal/rng"
	"github.com/chromacheck/chromacheck/internal/session"
)

// Deficiency names the colour-vision condition being simulated.
type Deficiency string

const (
	DeficiencyNone   Deficiency = "none"
	DeficiencyDeutan Deficiency = "deutan"
	DeficiencyProtan Deficiency = "protan"
)

// Dichromat projection matrices in RGB space (Vienot-style approximations).
// Rows produce the simulated R, G, B from the original channels.
var deficiencyMatrices = map[Deficiency][3][3]float64{
	DeficiencyDeutan: {
		{0.625, 0.375, 0.0},
		{0.700, 0.300, 0.0},
		{0.0, 0.300, 0.700},
	},
	DeficiencyProtan: {
		{0.567, 0.433, 0.0},
		{0.558, 0.442, 0.0},
		{0.0, 0.242, 0.758},
	},
}

// Discriminability thresholds for the accuracy ramp, in degrees of hue
// separation after the deficiency projection: below the floor the subject is
// guessing, above the ceiling they always answer correctly.
const (
	hueFloor   = 10.0
	hueCeiling = 30.0
	guessRate  = 0.15
)

// Simulated is a deterministic simulated subject. All randomness comes from
// its own seeded stream, so a fixed seed reproduces the full response series.
type Simulated struct {
	deficiency Deficiency
	severity   float64
	stream     *rng.Stream
}

// NewSimulated creates a subject with the given deficiency at severity in
// [0, 1], where 0 is trichromatic vision and 1 full dichromacy.
func NewSimulated(seed string, deficiency Deficiency, severity float64) *Simulated {
	return &Simulated{
		deficiency: deficiency,
		severity:   colour.Clamp(severity, 0, 1),
		stream:     rng.FromString(seed),
	}
}

// Respond answers one plate. The answer is correct with a probability driven
// by how much hue separation survives between the target and background after
// the deficiency projection: red-green pairs collapse onto nearby hues for a
// dichromat while blue-yellow pairs stay far apart.
func (o *Simulated) Respond(p *plate.Plate) session.Response {
	target, background := meanColours(p)
	sep := colour.HueDistance(
		colour.RGBToHSL(o.project(target)).H,
		colour.RGBToHSL(o.project(background)).H,
	)

	pCorrect := guessRate
	if sep > hueFloor {
		pCorrect += (1 - guessRate) * colour.Clamp((sep-hueFloor)/(hueCeiling-hueFloor), 0, 1)
	}

	value := p.Target.Value
	if o.stream.Float64() >= pCorrect {
		value = o.wrongAnswer(p)
	}

	return session.Response{
		Value:  value,
		TimeMs: 700 + o.stream.IntN(1400),
	}
}

// project applies the deficiency matrix, blended by severity.
func (o *Simulated) project(c colour.RGB) colour.RGB {
	m, ok := deficiencyMatrices[o.deficiency]
	if !ok || o.severity == 0 {
		return c
	}
	in := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v := m[i][0]*in[0] + m[i][1]*in[1] + m[i][2]*in[2]
		out[i] = (1-o.severity)*in[i] + o.severity*v
	}
	return colour.RGB{
		R: uint8(colour.Clamp(out[0], 0, 255)),
		G: uint8(colour.Clamp(out[1], 0, 255)),
		B: uint8(colour.Clamp(out[2], 0, 255)),
	}
}

// wrongAnswer picks a plausible incorrect answer from the plate's value pool.
func (o *Simulated) wrongAnswer(p *plate.Plate) string {
	pool := plate.ValuePool(p.Target.Kind)
	candidates := make([]string, 0, len(pool))
	for _, v := range pool {
		if v != p.Target.Value {
			candidates = append(candidates, v)
		}
	}
	v, err := rng.Pick(o.stream, candidates)
	if err != nil {
		return ""
	}
	return v
}

// meanColours averages the rendered target and background cells.
func meanColours(p *plate.Plate) (target, background colour.RGB) {
	var tr, tg, tb, br, bg, bb float64
	var tn, bn int
	for _, c := range p.Cells {
		if c.InTarget {
			tr += float64(c.Base.R)
			tg += float64(c.Base.G)
			tb += float64(c.Base.B)
			tn++
		} else {
			br += float64(c.Base.R)
			bg += float64(c.Base.G)
			bb += float64(c.Base.B)
			bn++
		}
	}
	if tn > 0 {
		target = colour.RGB{R: uint8(tr / float64(tn)), G: uint8(tg / float64(tn)), B: uint8(tb / float64(tn))}
	}
	if bn > 0 {
		background = colour.RGB{R: uint8(br / float64(bn)), G: uint8(bg / float64(bn)), B: uint8(bb / float64(bn))}
	}
	return target, background
}
