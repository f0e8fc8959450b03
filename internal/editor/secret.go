package editor

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/rileyhilliard/procdash/internal/errors"
)

// Verifier checks a submitted secret.
type Verifier interface {
	Verify(secret string) bool
}

type plainSecret []byte

func (p plainSecret) Verify(secret string) bool {
	return subtle.ConstantTimeCompare(p, []byte(secret)) == 1
}

type hashedSecret []byte

func (h hashedSecret) Verify(secret string) bool {
	return bcrypt.CompareHashAndPassword(h, []byte(secret)) == nil
}

// NewVerifier builds a verifier from the configured secret: a plain value
// compared in constant time, or a bcrypt hash. Exactly one must be set.
func NewVerifier(plain, hash string) (Verifier, error) {
	switch {
	case plain != "" && hash != "":
		return nil, errors.New(errors.ErrConfig,
			"Both editor.secret and editor.secret_hash are set",
			"Keep only one of them in procdash.yaml.")
	case hash != "":
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"editor.secret_hash is not a valid bcrypt hash",
				"Generate one with: procdash config hash-secret")
		}
		return hashedSecret(hash), nil
	case plain != "":
		return plainSecret(plain), nil
	}
	return nil, errors.New(errors.ErrAuth,
		"The config editor has no secret configured",
		"Set editor.secret or editor.secret_hash in procdash.yaml.")
}

// HashSecret returns a bcrypt hash of secret for editor.secret_hash.
// A cost of 0 uses bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", errors.New(errors.ErrAuth, "Secret must not be empty", "")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAuth, "Couldn't hash the secret", "")
	}
	return string(out), nil
}
