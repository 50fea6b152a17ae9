// Package tuner searches the correction-filter parameter space for settings
// that improve confusion-axis accuracy. The search is a bounded hill climb:
// each round evaluates one parameter set on freshly generated plates, keeps
// the best seen, and perturbs toward unexplored neighbours. Every round and
// the loop as a whole are bounded, and all randomness flows through the
// session's seeded stream so a tuning run is reproducible end to end.
package tuner

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/plate"
	"github.com/chromacheck/chromacheck/internal/rng"
	"github.com/chromacheck/chromacheck/internal/session"
)

// Similarity thresholds above which a candidate counts as already explored.
// The threshold is looser when climbing outward from an improving round.
const (
	exploitThreshold = 0.95
	exploreThreshold = 0.90
)

// Responder supplies one answer per presented plate. A live UI and the
// simulated observer both satisfy it.
type Responder interface {
	Respond(p *plate.Plate) session.Response
}

// Config bounds the search.
type Config struct {
	Rounds         int     // round budget R
	PlatesPerRound int     // plates evaluated per round N
	StallLimit     int     // rounds without improvement before stopping K
	Strength       float64 // filter application strength
	TargetKind     plate.TargetKind
	GridSize       int
}

// DefaultConfig returns the standard tuning bounds.
func DefaultConfig() Config {
	return Config{
		Rounds:         5,
		PlatesPerRound: 5,
		StallLimit:     2,
		Strength:       1.0,
	}
}

// Round records one evaluated parameter set. Appended to the history and
// never mutated; the history feeds similarity dedupe and best tracking.
type Round struct {
	Number int               `json:"number"`
	Params filter.Parameters `json:"params"`
	Score  int               `json:"score"`
}

// Outcome is the immutable final artifact of a tuning run.
type Outcome struct {
	BestParams    filter.Parameters `json:"bestParams"`
	BestScore     int               `json:"bestScore"`
	BaselineScore int               `json:"baselineScore"`
	Rounds        int               `json:"rounds"`
	History       []Round           `json:"history"`
}

// Tuner drives one tuning run. Each run owns its own stream and history.
type Tuner struct {
	space  *filter.Space
	cfg    Config
	seed   string
	stream *rng.Stream
	log    hclog.Logger
}

// New creates a tuner. The seed governs plate generation and every random
// choice the search makes.
func New(space *filter.Space, cfg Config, seed string, log hclog.Logger) *Tuner {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultConfig().Rounds
	}
	if cfg.PlatesPerRound <= 0 {
		cfg.PlatesPerRound = DefaultConfig().PlatesPerRound
	}
	if cfg.StallLimit <= 0 {
		cfg.StallLimit = DefaultConfig().StallLimit
	}
	if cfg.Strength <= 0 {
		cfg.Strength = 1.0
	}
	return &Tuner{
		space:  space,
		cfg:    cfg,
		seed:   seed,
		stream: rng.FromString(seed + ":tuner"),
		log:    log.Named("tuner"),
	}
}

// Run executes the bounded search. The baseline bucket selects the starting
// preset and baselineScore is the score to beat. The loop never exceeds the
// round budget regardless of search outcome.
func (t *Tuner) Run(bucket session.Bucket, baselineScore int, responder Responder) (*Outcome, error) {
	current := t.space.Normalize(filter.Preset(string(bucket)))
	best := current
	bestScore := baselineScore
	stall := 0
	history := make([]Round, 0, t.cfg.Rounds)

	for r := 1; r <= t.cfg.Rounds; r++ {
		score, err := t.evaluate(r, current, responder)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", r, err)
		}
		history = append(history, Round{Number: r, Params: current, Score: score})

		if score > bestScore {
			bestScore = score
			best = current
			stall = 0
		} else {
			stall++
		}
		t.log.Debug("round complete", "round", r, "score", score, "best", bestScore, "stall", stall)

		if r == t.cfg.Rounds || bestScore >= 100 || stall >= t.cfg.StallLimit {
			break
		}
		current = t.nextParams(current, best, score, bestScore, history)
	}

	return &Outcome{
		BestParams:    best,
		BestScore:     bestScore,
		BaselineScore: baselineScore,
		Rounds:        len(history),
		History:       history,
	}, nil
}

// evaluate runs one short confusion-axis session under the given parameters
// and returns its score.
func (t *Tuner) evaluate(round int, params filter.Parameters, responder Responder) (int, error) {
	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:          t.cfg.PlatesPerRound,
		CategoryRatio:  1.0,
		Seed:           rng.SubSeed(t.seed, round),
		TargetKind:     t.cfg.TargetKind,
		Filter:         &params,
		FilterStrength: t.cfg.Strength,
		GridSize:       t.cfg.GridSize,
	})
	if err != nil {
		return 0, err
	}

	seq := session.NewSequencer(session.ModeTuning, t.log)
	if err := seq.Start(plates); err != nil {
		return 0, err
	}
	for seq.State() == session.StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			return 0, err
		}
		if err := seq.Record(responder.Respond(p)); err != nil {
			return 0, err
		}
	}
	res, err := seq.Result()
	if err != nil {
		return 0, err
	}
	return res.Scores[plate.CategoryDeutan].Percentage, nil
}

// nextParams picks the parameter set for the next round. A round that scored
// below the best climbs locally around the best set; a round that matched or
// raised the best pushes outward from the current set, perturbing in a new
// direction when the neighbourhood is exhausted.
func (t *Tuner) nextParams(current, best filter.Parameters, score, bestScore int, history []Round) filter.Parameters {
	if score < bestScore {
		cands := t.unexplored(t.space.Neighbors(best, 1), history, exploitThreshold)
		if len(cands) == 0 {
			// Finer step around the best known set.
			cands = t.space.Neighbors(best, 0.5)
		}
		return t.pickNormalized(cands, best)
	}

	cands := t.unexplored(t.space.Neighbors(current, 1), history, exploreThreshold)
	if len(cands) == 0 {
		return t.space.Perturb(current, t.stream)
	}
	return t.pickNormalized(cands, current)
}

// unexplored filters out candidates too similar to any history entry.
func (t *Tuner) unexplored(cands []filter.Parameters, history []Round, threshold float64) []filter.Parameters {
	out := cands[:0]
	for _, c := range cands {
		tried := false
		for _, h := range history {
			if t.space.Similarity(c, h.Params) > threshold {
				tried = true
				break
			}
		}
		if !tried {
			out = append(out, c)
		}
	}
	return out
}

func (t *Tuner) pickNormalized(cands []filter.Parameters, fallback filter.Parameters) filter.Parameters {
	next, err := rng.Pick(t.stream, cands)
	if err != nil {
		next = fallback
	}
	return t.space.Normalize(next)
}

// Validate runs one non-adaptive validation session under the given
// parameters and returns its full result.
func (t *Tuner) Validate(params filter.Parameters, total int, ratio float64, responder Responder) (*session.Result, error) {
	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:                 total,
		CategoryRatio:         ratio,
		Seed:                  t.seed + ":validation",
		ProgressiveDifficulty: true,
		TargetKind:            t.cfg.TargetKind,
		Filter:                &params,
		FilterStrength:        t.cfg.Strength,
		GridSize:              t.cfg.GridSize,
	})
	if err != nil {
		return nil, err
	}

	seq := session.NewSequencer(session.ModeValidation, t.log)
	if err := seq.Start(plates); err != nil {
		return nil, err
	}
	for seq.State() == session.StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			return nil, err
		}
		if err := seq.Record(responder.Respond(p)); err != nil {
			return nil, err
		}
	}
	return seq.Result()
}
