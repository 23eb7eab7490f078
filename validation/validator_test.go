// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/know-you/apperr"
	"github.com/danielhkuo/know-you/models"
)

func TestValidate_SubmitAnswer(t *testing.T) {
	v := New()
	three := 3

	tests := []struct {
		name      string
		req       models.SubmitAnswerRequest
		wantField string
	}{
		{"valid", models.SubmitAnswerRequest{SessionID: "s1", UserID: "u1", QuestionID: 1, Answer: &three}, ""},
		{"missing session", models.SubmitAnswerRequest{UserID: "u1", QuestionID: 1, Answer: &three}, "sessionId"},
		{"missing answer", models.SubmitAnswerRequest{SessionID: "s1", UserID: "u1", QuestionID: 1}, "answer"},
		{"zero question", models.SubmitAnswerRequest{SessionID: "s1", UserID: "u1", Answer: &three}, "questionId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.wantField)
			assert.True(t, strings.HasPrefix(appErr.Message, tt.wantField), appErr.Message)
		})
	}
}

func TestValidate_ZeroAnswerIsPresent(t *testing.T) {
	zero := 0
	err := New().Validate(models.SubmitAnswerRequest{SessionID: "s1", UserID: "u1", QuestionID: 1, Answer: &zero})
	assert.NoError(t, err)
}

func TestValidate_MaxLength(t *testing.T) {
	err := New().Validate(models.CategoryRequest{Name: strings.Repeat("x", 101)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "must not exceed 100 characters")
}

func TestValidate_CategoryIDs(t *testing.T) {
	err := New().Validate(models.QuestionRequest{Text: "Q", CategoryIDs: models.CategoryIDList{1, 0}})
	require.ErrorIs(t, err, apperr.ErrValidation)
}
