package noise

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed returns a non-zero seed from crypto/rand. Callers should log
// or record it so the resulting map can be reproduced.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// ResolveSeed returns seed, or a random one when seed is 0.
func ResolveSeed(seed int64) int64 {
	if seed == 0 {
		return RandomSeed()
	}
	return seed
}
