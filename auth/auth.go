// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// sessionAlphabet avoids look-alike characters so ids can be read aloud.
const sessionAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// SessionIDLength gives ~49 bits of entropy with sessionAlphabet.
const SessionIDLength = 10

// GenerateSessionID creates a short, shareable session id
func GenerateSessionID() (string, error) {
	id, err := gonanoid.Generate(sessionAlphabet, SessionIDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return id, nil
}

// ValidateAdminKey checks the key sent with a catalog write against the
// configured one. An empty configured key leaves the catalog open.
// Digests are compared so timing does not leak the key length.
func ValidateAdminKey(provided, configured string) error {
	if configured == "" {
		return nil
	}
	got := sha256.Sum256([]byte(provided))
	want := sha256.Sum256([]byte(configured))
	if !hmac.Equal(got[:], want[:]) {
		return ErrInvalidAdminKey
	}
	return nil
}
