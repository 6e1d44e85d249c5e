package credentials

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/flowcross/internal/cryptox"
)

// Hasher encodes passwords before they are persisted and checks candidates
// against the stored form.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, candidate string) (bool, error)
}

// PlainHasher stores passwords as given. It matches the layout the web
// dashboard writes, so records stay exchangeable with it.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Verify(stored, candidate string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, nil
}

// Argon2Hasher stores "argon2id$<salt>$<key>".
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	return cryptox.HashPassword([]byte(password)), nil
}

func (Argon2Hasher) Verify(stored, candidate string) (bool, error) {
	return cryptox.VerifyPassword(stored, []byte(candidate))
}
