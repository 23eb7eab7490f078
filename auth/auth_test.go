// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID() error = %v", err)
	}
	if len(id) != SessionIDLength {
		t.Errorf("GenerateSessionID() length = %d, want %d", len(id), SessionIDLength)
	}
	for _, c := range id {
		if !strings.ContainsRune(sessionAlphabet, c) {
			t.Errorf("GenerateSessionID() contains char outside alphabet: %c", c)
		}
	}

	// Test randomness - two IDs should be different
	id2, _ := GenerateSessionID()
	if id == id2 {
		t.Error("GenerateSessionID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestValidateAdminKey(t *testing.T) {
	tests := []struct {
		name       string
		provided   string
		configured string
		wantErr    bool
	}{
		{"open catalog", "", "", false},
		{"open catalog ignores header", "anything", "", false},
		{"matching key", "s3cret", "s3cret", false},
		{"wrong key", "guess", "s3cret", true},
		{"missing key", "", "s3cret", true},
		{"prefix of key", "s3c", "s3cret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.provided, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidAdminKey {
				t.Errorf("ValidateAdminKey() error = %v, want ErrInvalidAdminKey", err)
			}
		})
	}
}
