package session

import (
	"errors"
	"testing"

	"github.com/chromacheck/chromacheck/internal/plate"
)

func testPlates(t *testing.T, total int, ratio float64) []*plate.Plate {
	t.Helper()
	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:         total,
		CategoryRatio: ratio,
		Seed:          "session-test",
	})
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}
	return plates
}

// answerAll drives the session with correct control answers and a fixed
// number of correct confusion-axis answers.
func answerAll(t *testing.T, seq *Sequencer, correctConfusion int) *Result {
	t.Helper()
	confusionSeen := 0
	for seq.State() == StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		answer := p.Target.Value
		if p.Category == plate.CategoryDeutan {
			confusionSeen++
			if confusionSeen > correctConfusion {
				answer = "wrong"
			}
		}
		if err := seq.Record(Response{Value: answer, TimeMs: 900}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	res, err := seq.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	return res
}

func TestBaselineScenario(t *testing.T) {
	// 16 trials at ratio 0.625: 10 confusion-axis, 6 control. All control
	// correct, 3/10 confusion correct.
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 16, 0.625)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res := answerAll(t, seq, 3)

	control := res.Scores[plate.CategoryControl]
	confusion := res.Scores[plate.CategoryDeutan]
	if control.Percentage != 100 {
		t.Errorf("control percentage = %d, want 100", control.Percentage)
	}
	if confusion.Total != 10 || confusion.Correct != 3 {
		t.Errorf("confusion score = %d/%d, want 3/10", confusion.Correct, confusion.Total)
	}
	if confusion.Percentage != 30 {
		t.Errorf("confusion percentage = %d, want 30", confusion.Percentage)
	}
	if res.Severity.Bucket != BucketStrong {
		t.Errorf("bucket = %s, want strong", res.Severity.Bucket)
	}
	if !res.Completed {
		t.Error("completed session marked incomplete")
	}
}

func TestScoreBounds(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 8, 0.5)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res := answerAll(t, seq, 0)

	for cat, sc := range res.Scores {
		if sc.Percentage < 0 || sc.Percentage > 100 {
			t.Errorf("%s percentage = %d, want value in [0,100]", cat, sc.Percentage)
		}
	}
}

func TestMissingCategoryScoresZero(t *testing.T) {
	// All-control batch: the confusion category has zero trials and its
	// percentage is defined as 0, not an error.
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 4, 0)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res := answerAll(t, seq, 0)

	confusion := res.Scores[plate.CategoryDeutan]
	if confusion.Total != 0 || confusion.Percentage != 0 {
		t.Errorf("empty category score = %+v, want 0/0 at 0%%", confusion)
	}
}

func TestRecordOutsideTrialFails(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Record(Response{Value: "3"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Record() before Start error = %v, want ErrInvalidState", err)
	}

	if err := seq.Start(testPlates(t, 2, 0.5)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := seq.Start(testPlates(t, 2, 0.5)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start() mid-session error = %v, want ErrInvalidState", err)
	}
}

func TestStartEmptyFails(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(nil); !errors.Is(err, ErrNoPlates) {
		t.Errorf("Start(nil) error = %v, want ErrNoPlates", err)
	}
}

func TestSkipAndTimeout(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 3, 1.0)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := seq.Skip(); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if err := seq.Timeout(); err != nil {
		t.Fatalf("Timeout() error = %v", err)
	}
	p, _ := seq.Current()
	if err := seq.Record(Response{Value: p.Target.Value, TimeMs: 1200}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	res, err := seq.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}

	if !res.Records[0].Skipped || res.Records[0].Correct {
		t.Errorf("record 0 = %+v, want skipped and incorrect", res.Records[0])
	}
	if !res.Records[1].TimedOut || res.Records[1].Correct {
		t.Errorf("record 1 = %+v, want timed out and incorrect", res.Records[1])
	}
	// Timing stats cover only the one answered trial.
	if res.MeanResponseMs != 1200 {
		t.Errorf("mean response = %v, want 1200 (skips and timeouts excluded)", res.MeanResponseMs)
	}
	if res.TotalResponseMs != 1200 {
		t.Errorf("total response = %v, want 1200", res.TotalResponseMs)
	}
}

func TestNormalizedAnswerMatching(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 1, 1.0)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p, _ := seq.Current()
	if err := seq.Record(Response{Value: "  " + p.Target.Value + " \t"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	res, err := seq.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if !res.Records[0].Correct {
		t.Error("whitespace-padded answer scored incorrect")
	}
}

func TestSpatialHitTest(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	plates := testPlates(t, 2, 1.0)
	if err := seq.Start(plates); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Click the centre of the target bounds, then a corner outside them.
	p, _ := seq.Current()
	centre := p.TargetBounds.Min.Add(p.TargetBounds.Size().Div(2))
	if err := seq.Record(Response{Spatial: true, X: centre.X, Y: centre.Y, TimeMs: 500}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := seq.Record(Response{Spatial: true, X: 0, Y: 0, TimeMs: 500}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	res, err := seq.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if !res.Records[0].Correct {
		t.Error("hit inside target bounds scored incorrect")
	}
	if res.Records[1].Correct {
		t.Error("hit outside target bounds scored correct")
	}
}

func TestAbortPartial(t *testing.T) {
	seq := NewSequencer(ModeBaseline, nil)
	if err := seq.Start(testPlates(t, 6, 0.5)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		p, _ := seq.Current()
		if err := seq.Record(Response{Value: p.Target.Value, TimeMs: 800}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	res := seq.Abort()
	if res.Completed {
		t.Error("aborted session marked completed")
	}
	if len(res.Records) != 2 {
		t.Errorf("aborted session has %d records, want 2", len(res.Records))
	}
	if seq.State() != StateIdle {
		t.Errorf("state after abort = %s, want idle", seq.State())
	}

	// A fresh session can start on the same sequencer.
	if err := seq.Start(testPlates(t, 2, 0.5)); err != nil {
		t.Errorf("Start() after abort error = %v", err)
	}
}
