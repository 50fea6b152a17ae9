package plate

import (
	"errors"
	"testing"
)

func TestGenerateSequenceReproducible(t *testing.T) {
	req := SequenceRequest{
		Total:                 16,
		CategoryRatio:         0.625,
		Seed:                  "abc",
		ProgressiveDifficulty: true,
	}

	a, err := GenerateSequence(req)
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}
	b, err := GenerateSequence(req)
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}

	if len(a) != 16 {
		t.Fatalf("sequence length = %d, want 16", len(a))
	}
	for i := range a {
		if a[i].Category != b[i].Category {
			t.Errorf("position %d category differs across runs: %s != %s", i, a[i].Category, b[i].Category)
		}
		if a[i].Difficulty != b[i].Difficulty {
			t.Errorf("position %d difficulty differs across runs: %s != %s", i, a[i].Difficulty, b[i].Difficulty)
		}
		if a[i].Target != b[i].Target {
			t.Errorf("position %d target differs across runs", i)
		}
	}
}

func TestGenerateSequenceCategorySplit(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		ratio         float64
		wantConfusion int
	}{
		{name: "16 at 0.625", total: 16, ratio: 0.625, wantConfusion: 10},
		{name: "all confusion", total: 5, ratio: 1.0, wantConfusion: 5},
		{name: "all control", total: 5, ratio: 0, wantConfusion: 0},
		{name: "rounding up", total: 10, ratio: 0.55, wantConfusion: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plates, err := GenerateSequence(SequenceRequest{
				Total:         tt.total,
				CategoryRatio: tt.ratio,
				Seed:          "split",
			})
			if err != nil {
				t.Fatalf("GenerateSequence() error = %v", err)
			}
			confusion := 0
			for _, p := range plates {
				if p.Category == CategoryDeutan {
					confusion++
				}
			}
			if confusion != tt.wantConfusion {
				t.Errorf("confusion count = %d, want %d", confusion, tt.wantConfusion)
			}
		})
	}
}

func TestGenerateSequenceDifficultyRamp(t *testing.T) {
	plates, err := GenerateSequence(SequenceRequest{
		Total:                 16,
		CategoryRatio:         0.5,
		Seed:                  "ramp",
		ProgressiveDifficulty: true,
	})
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}

	// 16 trials: positions 0-3 easy, 4-9 medium, 10-15 hard.
	for i, p := range plates {
		var want Difficulty
		switch {
		case i < 4:
			want = DifficultyEasy
		case i < 10:
			want = DifficultyMedium
		default:
			want = DifficultyHard
		}
		if p.Difficulty != want {
			t.Errorf("position %d difficulty = %s, want %s", i, p.Difficulty, want)
		}
	}
}

func TestGenerateSequenceFlatDifficulty(t *testing.T) {
	plates, err := GenerateSequence(SequenceRequest{
		Total:         6,
		CategoryRatio: 0.5,
		Seed:          "flat",
	})
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}
	for i, p := range plates {
		if p.Difficulty != DifficultyMedium {
			t.Errorf("position %d difficulty = %s, want medium without ramp", i, p.Difficulty)
		}
	}
}

func TestGenerateSequenceValidation(t *testing.T) {
	tests := []struct {
		name string
		req  SequenceRequest
	}{
		{name: "zero total", req: SequenceRequest{Total: 0, CategoryRatio: 0.5, Seed: "x"}},
		{name: "negative total", req: SequenceRequest{Total: -3, CategoryRatio: 0.5, Seed: "x"}},
		{name: "ratio above one", req: SequenceRequest{Total: 4, CategoryRatio: 1.2, Seed: "x"}},
		{name: "empty seed", req: SequenceRequest{Total: 4, CategoryRatio: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateSequence(tt.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("GenerateSequence() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestGenerateSequenceUniqueSubSeeds(t *testing.T) {
	plates, err := GenerateSequence(SequenceRequest{
		Total:         8,
		CategoryRatio: 0.5,
		Seed:          "subseeds",
	})
	if err != nil {
		t.Fatalf("GenerateSequence() error = %v", err)
	}
	seen := make(map[string]bool)
	for _, p := range plates {
		if seen[p.Seed] {
			t.Errorf("sub-seed %q reused", p.Seed)
		}
		seen[p.Seed] = true
	}
}
