// Package session orders generated plates into a scored test session. The
// sequencer is an explicit state machine: callers start it with a plate batch,
// feed one response per trial, and read the aggregate result when it
// completes. Each session owns its own response log; nothing is shared
// between sessions.
package session

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/stat"

	"github.com/chromacheck/chromacheck/internal/plate"
)

// Mode labels what a session's result is used for.
type Mode string

const (
	ModeBaseline   Mode = "baseline"
	ModeTuning     Mode = "tuning"
	ModeValidation Mode = "validation"
)

// State is the sequencer's lifecycle position.
type State string

const (
	// StateIdle means no session has been started (or the last one finished
	// and a new Start is allowed).
	StateIdle State = "idle"
	// StateAwaitingResponse means a trial is presented and the sequencer is
	// suspended until a response arrives. The suspension may last arbitrarily
	// long; a timeout is just another response variant.
	StateAwaitingResponse State = "awaiting_response"
	// StateCompleted means all trials are scored and the result is available.
	StateCompleted State = "completed"
)

var (
	// ErrInvalidState reports a sequencer method called outside the state
	// that permits it. This is a caller bug, never a user-input problem.
	ErrInvalidState = errors.New("session: invalid state")
	// ErrNoPlates reports Start called with an empty batch.
	ErrNoPlates = errors.New("session: no plates to run")
)

// Response carries one human answer. Symbolic answers use Value; spatial
// answers (animated outlier plates) use grid coordinates with Spatial set.
type Response struct {
	Value   string
	X, Y    int
	Spatial bool
	TimeMs  int
}

// Record is one scored trial outcome. Records are append-only.
type Record struct {
	TrialIndex     int            `json:"trialIndex"`
	Category       plate.Category `json:"category"`
	Correct        bool           `json:"correct"`
	ResponseTimeMs int            `json:"responseTimeMs"`
	Skipped        bool           `json:"skipped"`
	TimedOut       bool           `json:"timedOut"`
}

// Score aggregates one category's outcomes.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Result is the immutable aggregate of a session.
type Result struct {
	ID               string                   `json:"id"`
	Mode             Mode                     `json:"mode"`
	Scores           map[plate.Category]Score `json:"scores"`
	Records          []Record                 `json:"records"`
	MeanResponseMs   float64                  `json:"meanResponseMs"`
	StdDevResponseMs float64                  `json:"stdDevResponseMs"`
	TotalResponseMs  int                      `json:"totalResponseMs"`
	Severity         Assessment               `json:"severity"`
	Completed        bool                     `json:"completed"`
	StartedAt        time.Time                `json:"startedAt"`
	FinishedAt       time.Time                `json:"finishedAt"`
}

// Sequencer drives one session. Not safe for concurrent use; a session is a
// single logical thread of control.
type Sequencer struct {
	mode    Mode
	state   State
	plates  []*plate.Plate
	next    int
	records []Record
	started time.Time
	log     hclog.Logger
}

// NewSequencer creates an idle sequencer for the given mode.
func NewSequencer(mode Mode, log hclog.Logger) *Sequencer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Sequencer{
		mode:  mode,
		state: StateIdle,
		log:   log.Named("sequencer"),
	}
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State {
	return s.state
}

// Start begins a session over the given plates. Valid from Idle or Completed;
// the response log is reset and the first trial presented.
func (s *Sequencer) Start(plates []*plate.Plate) error {
	if s.state == StateAwaitingResponse {
		return fmt.Errorf("%w: Start called mid-session", ErrInvalidState)
	}
	if len(plates) == 0 {
		return ErrNoPlates
	}
	s.plates = plates
	s.next = 0
	s.records = s.records[:0]
	s.started = time.Now()
	s.state = StateAwaitingResponse
	s.log.Debug("session started", "mode", s.mode, "trials", len(plates))
	return nil
}

// Current returns the plate awaiting a response.
func (s *Sequencer) Current() (*plate.Plate, error) {
	if s.state != StateAwaitingResponse {
		return nil, fmt.Errorf("%w: no trial in progress", ErrInvalidState)
	}
	return s.plates[s.next], nil
}

// Record scores one response against the current trial and advances to the
// next trial, or to Completed when the batch is exhausted. Valid only while a
// response is awaited.
func (s *Sequencer) Record(resp Response) error {
	return s.record(resp, false, false)
}

// Skip records the current trial as skipped (scored incorrect).
func (s *Sequencer) Skip() error {
	return s.record(Response{}, true, false)
}

// Timeout records the current trial as timed out (scored incorrect).
func (s *Sequencer) Timeout() error {
	return s.record(Response{}, false, true)
}

func (s *Sequencer) record(resp Response, skipped, timedOut bool) error {
	if s.state != StateAwaitingResponse {
		return fmt.Errorf("%w: response recorded outside a trial", ErrInvalidState)
	}

	p := s.plates[s.next]
	correct := false
	if !skipped && !timedOut {
		correct = isCorrect(p, resp)
	}

	s.records = append(s.records, Record{
		TrialIndex:     s.next,
		Category:       p.Category,
		Correct:        correct,
		ResponseTimeMs: resp.TimeMs,
		Skipped:        skipped,
		TimedOut:       timedOut,
	})
	s.log.Debug("response recorded",
		"trial", s.next, "category", p.Category, "correct", correct,
		"skipped", skipped, "timed_out", timedOut)

	s.next++
	if s.next >= len(s.plates) {
		s.state = StateCompleted
	}
	return nil
}

// isCorrect matches a response against the trial's target: exact
// case/whitespace-normalized match for symbolic targets, or a hit test
// against the target mask bounds for spatial answers.
func isCorrect(p *plate.Plate, resp Response) bool {
	if resp.Spatial {
		return image.Pt(resp.X, resp.Y).In(p.TargetBounds)
	}
	return strings.EqualFold(strings.TrimSpace(resp.Value), p.Target.Value)
}

// Result computes the session aggregate. Valid only once all trials are scored.
func (s *Sequencer) Result() (*Result, error) {
	if s.state != StateCompleted {
		return nil, fmt.Errorf("%w: session not complete", ErrInvalidState)
	}
	res := s.aggregate(true)
	s.state = StateIdle
	return res, nil
}

// Abort ends the session at the current response boundary and returns the
// aggregate over whatever responses were recorded so far. Always succeeds.
func (s *Sequencer) Abort() *Result {
	completed := s.state == StateCompleted
	res := s.aggregate(completed)
	s.state = StateIdle
	s.log.Debug("session aborted", "recorded", len(res.Records), "completed", completed)
	return res
}

func (s *Sequencer) aggregate(completed bool) *Result {
	scores := make(map[plate.Category]Score, 2)
	counts := map[plate.Category]*Score{
		plate.CategoryDeutan:  {},
		plate.CategoryControl: {},
	}
	for _, r := range s.records {
		sc, ok := counts[r.Category]
		if !ok {
			sc = &Score{}
			counts[r.Category] = sc
		}
		sc.Total++
		if r.Correct {
			sc.Correct++
		}
	}
	for cat, sc := range counts {
		sc.Percentage = percentage(sc.Correct, sc.Total)
		scores[cat] = *sc
	}

	var times []float64
	total := 0
	for _, r := range s.records {
		if r.Skipped || r.TimedOut {
			continue
		}
		times = append(times, float64(r.ResponseTimeMs))
		total += r.ResponseTimeMs
	}
	var mean, stddev float64
	if len(times) > 0 {
		mean = stat.Mean(times, nil)
	}
	if len(times) > 1 {
		stddev = stat.StdDev(times, nil)
	}

	records := make([]Record, len(s.records))
	copy(records, s.records)

	return &Result{
		ID:               uuid.New().String(),
		Mode:             s.mode,
		Scores:           scores,
		Records:          records,
		MeanResponseMs:   mean,
		StdDevResponseMs: stddev,
		TotalResponseMs:  total,
		Severity:         Assess(scores),
		Completed:        completed,
		StartedAt:        s.started,
		FinishedAt:       time.Now(),
	}
}

// percentage is round(100*correct/total), defined as 0 for an empty category.
func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
