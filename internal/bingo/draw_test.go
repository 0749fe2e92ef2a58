package bingo

import (
	"math/rand/v2"
	"testing"
)

func TestDrawNeverRepeats(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	drawn := make([]int, 0, MaxNumber)
	seen := make(map[int]bool)
	for i := 0; i < MaxNumber; i++ {
		n, ok := Draw(drawn, r)
		if !ok {
			t.Fatalf("draw %d: pool exhausted early", i+1)
		}
		if n < 1 || n > MaxNumber {
			t.Fatalf("draw %d: %d out of range", i+1, n)
		}
		if seen[n] {
			t.Fatalf("draw %d: %d drawn twice", i+1, n)
		}
		seen[n] = true
		drawn = append(drawn, n)
	}
	if _, ok := Draw(drawn, r); ok {
		t.Fatal("expected the 76th draw to report exhaustion")
	}
}

func TestRemaining(t *testing.T) {
	left := Remaining([]int{1, 75, 40})
	if len(left) != MaxNumber-3 {
		t.Fatalf("expected %d remaining, got %d", MaxNumber-3, len(left))
	}
	for _, n := range left {
		if n == 1 || n == 75 || n == 40 {
			t.Fatalf("drawn number %d still remaining", n)
		}
	}
}

func TestNewCodeAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewCode()
		if !ValidCode(code) {
			t.Fatalf("generated invalid code %q", code)
		}
	}
}

func TestValidCode(t *testing.T) {
	cases := map[string]bool{
		"ABCD":   true,
		" abcd ": true,
		"AB2Z":   true,
		"ABC":    false,
		"ABCDE":  false,
		"ABC0":   false,
		"ABCI":   false,
		"AB1D":   false,
		"":       false,
	}
	for code, want := range cases {
		if got := ValidCode(code); got != want {
			t.Fatalf("ValidCode(%q) = %v, want %v", code, got, want)
		}
	}
}
