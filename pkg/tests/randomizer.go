package tests

import (
	"encoding/hex"
	"math/rand"
	"time"
)

type Randomizer struct {
	Float64 func() float64
	Bool    func() bool
	Address func() string
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().Unix())) //nolint:gosec // for tests

	return Randomizer{
		Float64: random.Float64,
		Bool:    func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
		// Address сырой адрес воркчейна 0.
		Address: func() string {
			b := make([]byte, 32) //nolint:mnd // skip
			_, _ = random.Read(b)

			return "0:" + hex.EncodeToString(b)
		},
	}
}
