package random

import "testing"

func TestNewRandIsReproducibleForFixedSeed(t *testing.T) {
	first, err := NewRand(42)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	second, err := NewRand(42)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	for i := 0; i < 10; i++ {
		if a, b := first.Intn(1000), second.Intn(1000); a != b {
			t.Fatalf("draw %d = %d and %d, want equal", i, a, b)
		}
	}
}

func TestNewRandZeroSeedUsesCrypto(t *testing.T) {
	rng, err := NewRand(0)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if rng == nil {
		t.Fatal("expected rand source")
	}
}
