// Package random seeds the pseudo-random sources used to draw opening letters
// and starting players.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a math/rand source. A zero seed draws a fresh one from
// crypto/rand; any other value gives a reproducible sequence.
func NewRand(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = fresh
	}
	return rand.New(rand.NewSource(seed)), nil
}
