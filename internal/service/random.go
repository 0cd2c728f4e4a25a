package service

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func randomDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		out[i] = byte('0' + v.Int64())
	}
	return string(out)
}

// randomCode returns a fixed-width 6-digit verification code.
func randomCode() string {
	return randomDigits(codeLength)
}

// randomAccount returns a numeric account candidate with length uniform
// in [6,10]. Uniqueness is the allocator's problem, not this function's.
func randomAccount() string {
	span, err := rand.Int(rand.Reader, big.NewInt(5))
	if err != nil {
		panic(err)
	}
	return randomDigits(6 + int(span.Int64()))
}
