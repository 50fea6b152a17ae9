package rng

import (
	"errors"
	"testing"
)

func TestStreamDeterminism(t *testing.T) {
	a := FromString("abc")
	b := FromString("abc")

	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("streams diverged at step %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("Float64() = %v, want value in [0,1)", va)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := FromString("abc")
	b := FromString("abd")

	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Error("streams from different seeds produced identical output")
	}
}

func TestIntNBounds(t *testing.T) {
	s := FromString("bounds")
	for i := 0; i < 1000; i++ {
		v := s.IntN(7)
		if v < 0 || v >= 7 {
			t.Fatalf("IntN(7) = %d, want value in [0,7)", v)
		}
	}
}

func TestPick(t *testing.T) {
	s := FromString("pick")
	items := []string{"a", "b", "c"}

	v, err := Pick(s, items)
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	found := false
	for _, it := range items {
		if it == v {
			found = true
		}
	}
	if !found {
		t.Errorf("Pick() = %q, not in input", v)
	}
}

func TestPickEmpty(t *testing.T) {
	s := FromString("empty")
	if _, err := Pick(s, []int{}); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Pick(empty) error = %v, want ErrEmptyPool", err)
	}
}

func TestShuffle(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}

	a, err := Shuffle(FromString("shuf"), input)
	if err != nil {
		t.Fatalf("Shuffle() error = %v", err)
	}
	b, err := Shuffle(FromString("shuf"), input)
	if err != nil {
		t.Fatalf("Shuffle() error = %v", err)
	}

	if len(a) != len(input) {
		t.Fatalf("Shuffle() length = %d, want %d", len(a), len(input))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("shuffles with equal seeds differ at %d: %d != %d", i, a[i], b[i])
		}
	}

	// Input must not be modified.
	for i, v := range input {
		if v != i+1 {
			t.Errorf("input modified at %d: got %d", i, v)
		}
	}

	// Element multiset preserved.
	seen := make(map[int]int)
	for _, v := range a {
		seen[v]++
	}
	for _, v := range input {
		if seen[v] != 1 {
			t.Errorf("element %d appears %d times after shuffle", v, seen[v])
		}
	}
}

func TestShuffleEmpty(t *testing.T) {
	if _, err := Shuffle(FromString("x"), []int{}); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Shuffle(empty) error = %v, want ErrEmptyPool", err)
	}
}

func TestSubSeed(t *testing.T) {
	if SubSeed("abc", 3) != SubSeed("abc", 3) {
		t.Error("SubSeed not stable for equal inputs")
	}
	if SubSeed("abc", 3) == SubSeed("abc", 4) {
		t.Error("SubSeed identical for different indices")
	}
	if SubSeed("abc", 3) == SubSeed("abd", 3) {
		t.Error("SubSeed identical for different seeds")
	}
}
