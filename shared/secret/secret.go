// Package secret hashes short-lived credentials such as one-time login codes
// so that only a bcrypt digest is ever written to the cache.
package secret

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const Cost = bcrypt.DefaultCost

var (
	ErrEmpty    = errors.New("secret cannot be empty")
	ErrMismatch = errors.New("secret does not match")
)

func Hash(value string) (string, error) {
	if value == "" {
		return "", ErrEmpty
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(value), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return string(digest), nil
}

// Compare returns ErrMismatch for a wrong value or an empty input on either side.
// Any other error means the digest itself is unusable.
func Compare(digest, value string) error {
	if value == "" || digest == "" {
		return ErrMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(value))
	if err == nil {
		return nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}

	return fmt.Errorf("failed to compare secret: %w", err)
}
