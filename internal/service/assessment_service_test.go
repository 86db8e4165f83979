package service

import (
	"encoding/json"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssessmentService(t *testing.T) (*AssessmentService, *repository.AssessmentRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewAssessmentRepository(db, nil)
	attempts := repository.NewAttemptRepository(db)
	return NewAssessmentService(repo, attempts), repo
}

func mcQuestion(marks int) QuestionRequest {
	return QuestionRequest{
		QuestionType: model.QuestionMultipleChoice,
		Prompt:       "Pick one",
		Options:      json.RawMessage(`["a","b","c"]`),
		Answer:       "1",
		Marks:        marks,
	}
}

func TestActivate_Validations(t *testing.T) {
	svc, _ := newAssessmentService(t)

	a, err := svc.CreateAssessment(AssessmentRequest{Title: "Algebra", TotalMarks: 10, PassingMarks: 60})
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentInactive, a.Status)
	assert.Equal(t, 1, a.MaxAttempts)

	t.Run("no questions", func(t *testing.T) {
		_, err := svc.Activate(a.ID)
		assert.ErrorIs(t, err, util.ErrNoQuestions)
	})

	_, err = svc.CreateQuestion(a.ID, mcQuestion(4))
	require.NoError(t, err)

	t.Run("marks sum mismatch", func(t *testing.T) {
		_, err := svc.Activate(a.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match")
	})

	_, err = svc.CreateQuestion(a.ID, mcQuestion(6))
	require.NoError(t, err)

	t.Run("passing marks out of range", func(t *testing.T) {
		_, err := svc.UpdateAssessment(a.ID, AssessmentRequest{Title: "Algebra", TotalMarks: 10, PassingMarks: 150})
		require.NoError(t, err)
		_, err = svc.Activate(a.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "passing marks")
	})

	t.Run("activates when consistent", func(t *testing.T) {
		_, err := svc.UpdateAssessment(a.ID, AssessmentRequest{Title: "Algebra", TotalMarks: 10, PassingMarks: 60})
		require.NoError(t, err)
		activated, err := svc.Activate(a.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AssessmentActive, activated.Status)
	})
}

func TestActiveAssessmentIsFrozen(t *testing.T) {
	svc, _ := newAssessmentService(t)

	a, err := svc.CreateAssessment(AssessmentRequest{Title: "Geometry", TotalMarks: 4, PassingMarks: 50})
	require.NoError(t, err)
	q1, err := svc.CreateQuestion(a.ID, mcQuestion(4))
	require.NoError(t, err)
	_, err = svc.Activate(a.ID)
	require.NoError(t, err)

	_, err = svc.UpdateAssessment(a.ID, AssessmentRequest{Title: "Geometry II", TotalMarks: 4, PassingMarks: 50})
	assert.ErrorIs(t, err, util.ErrAssessmentActive)

	_, err = svc.CreateQuestion(a.ID, mcQuestion(2))
	assert.ErrorIs(t, err, util.ErrAssessmentActive)

	_, err = svc.UpdateQuestion(q1.ID, mcQuestion(1))
	assert.ErrorIs(t, err, util.ErrAssessmentActive)

	err = svc.DeleteQuestion(q1.ID)
	assert.ErrorIs(t, err, util.ErrAssessmentActive)

	err = svc.DeleteAssessment(a.ID)
	assert.ErrorIs(t, err, util.ErrAssessmentActive)

	// Deactivation reopens authoring.
	_, err = svc.Deactivate(a.ID)
	require.NoError(t, err)
	_, err = svc.UpdateQuestion(q1.ID, mcQuestion(4))
	assert.NoError(t, err)
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{"valid multiple choice", mcQuestion(2), false},
		{"mc too few options", QuestionRequest{QuestionType: model.QuestionMultipleChoice, Prompt: "p", Options: json.RawMessage(`["only"]`), Answer: "0", Marks: 1}, true},
		{"mc options not json", QuestionRequest{QuestionType: model.QuestionMultipleChoice, Prompt: "p", Options: json.RawMessage(`oops`), Answer: "0", Marks: 1}, true},
		{"valid true_false", QuestionRequest{QuestionType: model.QuestionTrueFalse, Prompt: "p", Answer: "false", Marks: 1}, false},
		{"tf bad literal", QuestionRequest{QuestionType: model.QuestionTrueFalse, Prompt: "p", Answer: "yes", Marks: 1}, true},
		{"valid text", QuestionRequest{QuestionType: model.QuestionText, Prompt: "p", Answer: "Paris", Marks: 1}, false},
		{"unknown type", QuestionRequest{QuestionType: "essay", Prompt: "p", Answer: "x", Marks: 1}, true},
		{"non-positive marks", QuestionRequest{QuestionType: model.QuestionText, Prompt: "p", Answer: "x", Marks: 0}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateQuestion(&tc.req)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
