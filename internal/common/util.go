package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from crypto/rand. It is used
// for password salts, so a failing entropy source is fatal.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Password buffers read from the terminal
// are wiped once the credential store has seen them.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NonEmpty reports whether every value is non-empty. Whitespace counts as
// content; callers trim first when it should not.
func NonEmpty(values ...string) bool {
	for _, v := range values {
		if len(v) == 0 {
			return false
		}
	}
	return true
}
