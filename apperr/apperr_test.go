// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindUnauthorized: http.StatusUnauthorized,
		KindStore:        http.StatusInternalServerError,
		Kind("bogus"):    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), "kind %s", kind)
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("join session: %w", NotFound("session not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStoreKeepsCause(t *testing.T) {
	err := Store("failed to load results", sql.ErrConnDone)

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.ErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "failed to load results")
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindStore, KindOf(errors.New("boom")))
}
