package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/plate"
	"github.com/chromacheck/chromacheck/internal/session"
	"github.com/chromacheck/chromacheck/internal/tuner"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(t *testing.T, seed string) *session.Result {
	t.Helper()
	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:         8,
		CategoryRatio: 0.5,
		Seed:          seed,
	})
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}

	seq := session.NewSequencer(session.ModeBaseline, nil)
	if err := seq.Start(plates); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for seq.State() == session.StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		answer := p.Target.Value
		if p.Category == plate.CategoryDeutan {
			answer = "wrong"
		}
		if err := seq.Record(session.Response{Value: answer, TimeMs: 850}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	res, err := seq.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	return res
}

func TestSessionRoundTrip(t *testing.T) {
	s := openStore(t)
	res := sampleResult(t, "store-session")

	if err := s.SaveSession(res); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := s.GetSession(res.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if !reflect.DeepEqual(got.Scores, res.Scores) {
		t.Errorf("scores changed across persistence:\ngot  %+v\nwant %+v", got.Scores, res.Scores)
	}
	if got.Severity != res.Severity {
		t.Errorf("severity changed across persistence:\ngot  %+v\nwant %+v", got.Severity, res.Severity)
	}
	if len(got.Records) != len(res.Records) {
		t.Errorf("record count = %d, want %d", len(got.Records), len(res.Records))
	}
	if got.Mode != res.Mode || got.Completed != res.Completed {
		t.Errorf("got mode=%s completed=%v, want mode=%s completed=%v",
			got.Mode, got.Completed, res.Mode, res.Completed)
	}
}

func TestListSessions(t *testing.T) {
	s := openStore(t)
	a := sampleResult(t, "list-a")
	b := sampleResult(t, "list-b")
	for _, res := range []*session.Result{a, b} {
		if err := s.SaveSession(res); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
	}

	rows, err := s.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListSessions() returned %d rows, want 2", len(rows))
	}
	seen := map[string]bool{}
	for _, r := range rows {
		seen[r.ID] = true
		if r.Mode != string(session.ModeBaseline) {
			t.Errorf("row mode = %s, want baseline", r.Mode)
		}
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Errorf("listing missing saved sessions: %v", seen)
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.GetSession("nope"); err == nil {
		t.Error("GetSession() on unknown id did not fail")
	}
}

func TestTuningRoundTrip(t *testing.T) {
	s := openStore(t)
	res := sampleResult(t, "store-tuning")
	if err := s.SaveSession(res); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	out := &tuner.Outcome{
		BestParams:    filter.Preset("moderate"),
		BestScore:     70,
		BaselineScore: 40,
		Rounds:        3,
		History: []tuner.Round{
			{Number: 1, Params: filter.Preset("moderate"), Score: 55},
			{Number: 2, Params: filter.Preset("strong"), Score: 70},
			{Number: 3, Params: filter.Preset("strong"), Score: 60},
		},
	}

	id, err := s.SaveTuning(res.ID, out)
	if err != nil {
		t.Fatalf("SaveTuning() error = %v", err)
	}

	got, err := s.GetTuning(id)
	if err != nil {
		t.Fatalf("GetTuning() error = %v", err)
	}
	if !reflect.DeepEqual(got, out) {
		t.Errorf("tuning outcome changed across persistence:\ngot  %+v\nwant %+v", got, out)
	}

	rows, err := s.ListTuning(10)
	if err != nil {
		t.Fatalf("ListTuning() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ListTuning() returned %d rows, want 1", len(rows))
	}
	if rows[0].SessionID != res.ID {
		t.Errorf("row session id = %s, want %s", rows[0].SessionID, res.ID)
	}
	if rows[0].BestScore != 70 || rows[0].BaselineScore != 40 || rows[0].Rounds != 3 {
		t.Errorf("summary columns = %+v, want best 70 baseline 40 rounds 3", rows[0])
	}
}

func TestSaveTuningWithoutSession(t *testing.T) {
	s := openStore(t)
	id, err := s.SaveTuning("", &tuner.Outcome{BestScore: 50, BaselineScore: 50, Rounds: 2})
	if err != nil {
		t.Fatalf("SaveTuning() error = %v", err)
	}
	rows, err := s.ListTuning(10)
	if err != nil {
		t.Fatalf("ListTuning() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ID != id || rows[0].SessionID != "" {
		t.Errorf("rows = %+v, want one unlinked run with id %s", rows, id)
	}
}
