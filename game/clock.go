package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

//Roller is the source of the role assignment rolls. *rand.Rand satisfies it.
type Roller interface {
	Intn(n int) int
	Float64() float64
}

//newRoller seeds a match local PRNG from crypto/rand, math/rand seed is the fallback
func newRoller() Roller {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}
