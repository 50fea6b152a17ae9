package filter

import (
	"math"

	"github.com/chromacheck/chromacheck/internal/rng"
)

// Space is the bounded search space over filter parameters. It owns the
// per-parameter ranges and provides the neighbourhood and similarity
// operations used by local search.
type Space struct {
	defs []paramDef
}

// NewSpace returns the default parameter space.
func NewSpace() *Space {
	return &Space{defs: paramDefs}
}

// Neighbors returns up to 2x(parameter count) candidates: for every parameter,
// one variant stepped down and one stepped up by step*mult, holding all other
// parameters fixed. Variants that would leave the parameter's range are omitted.
func (sp *Space) Neighbors(p Parameters, mult float64) []Parameters {
	out := make([]Parameters, 0, 2*len(sp.defs))
	for _, d := range sp.defs {
		step := d.rng.Step * mult
		if v := d.get(p) - step; v >= d.rng.Min-epsilon {
			q := p
			d.set(&q, snap(v, d.rng))
			out = append(out, q)
		}
		if v := d.get(p) + step; v <= d.rng.Max+epsilon {
			q := p
			d.set(&q, snap(v, d.rng))
			out = append(out, q)
		}
	}
	return out
}

// Similarity returns 1 minus the mean absolute difference across parameters,
// each normalized by its range width. Symmetric, and 1.0 when a == b.
func (sp *Space) Similarity(a, b Parameters) float64 {
	var total float64
	for _, d := range sp.defs {
		width := d.rng.Max - d.rng.Min
		if width == 0 {
			continue
		}
		total += math.Abs(d.get(a)-d.get(b)) / width
	}
	return 1.0 - total/float64(len(sp.defs))
}

// Normalize clamps every parameter into its declared range.
func (sp *Space) Normalize(p Parameters) Parameters {
	q := p
	for _, d := range sp.defs {
		v := d.get(q)
		if v < d.rng.Min {
			d.set(&q, d.rng.Min)
		} else if v > d.rng.Max {
			d.set(&q, d.rng.Max)
		}
	}
	return q
}

// Perturb offsets every parameter by an independent random amount bounded by
// its step size, drawn from the given stream, and clamps the result. Used by
// the tuner to explore a new direction when the neighbourhood is exhausted.
func (sp *Space) Perturb(p Parameters, stream *rng.Stream) Parameters {
	q := p
	for _, d := range sp.defs {
		offset := stream.Range(-d.rng.Step, d.rng.Step)
		d.set(&q, d.get(q)+offset)
	}
	return sp.Normalize(q)
}

// snap clamps a stepped value onto the range boundary when floating point
// drift lands it marginally outside.
func snap(v float64, r Range) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

const epsilon = 1e-9
