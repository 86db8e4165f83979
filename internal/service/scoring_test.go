package service

import (
	"encoding/json"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(id uint, qtype, answer string, marks int) model.Question {
	return model.Question{
		BaseModel:    model.BaseModel{ID: id},
		QuestionType: qtype,
		Prompt:       "prompt",
		Answer:       answer,
		Marks:        marks,
	}
}

func weightedFixture() (*model.Assessment, []model.Question) {
	a := &model.Assessment{
		Title:        "Networking basics",
		TotalMarks:   10,
		PassingMarks: 60,
	}
	questions := []model.Question{
		q(1, model.QuestionMultipleChoice, "2", 2),
		q(2, model.QuestionTrueFalse, "true", 3),
		q(3, model.QuestionText, "gateway", 5),
	}
	questions[0].Options = json.RawMessage(`["hub","switch","router","modem"]`)
	return a, questions
}

func TestScoreAttempt_WeightedPass(t *testing.T) {
	a, questions := weightedFixture()

	// 2 + 5 out of 10 clears the 60% threshold.
	outcome, err := ScoreAttempt(a, questions, map[uint]string{
		1: "2",
		2: "false",
		3: "gateway",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, outcome.TotalScore)
	assert.InDelta(t, 70.0, outcome.Percentage, 0.0001)
	assert.Equal(t, model.ResultPassed, outcome.Result)
	require.Len(t, outcome.Details, 3)
	assert.True(t, outcome.Details[0].IsCorrect)
	assert.False(t, outcome.Details[1].IsCorrect)
	assert.True(t, outcome.Details[2].IsCorrect)
	assert.Equal(t, 0, outcome.Details[1].MarksObtained)
	assert.Equal(t, 3, outcome.Details[1].Marks)
}

func TestScoreAttempt_AllCorrect(t *testing.T) {
	a, questions := weightedFixture()

	outcome, err := ScoreAttempt(a, questions, map[uint]string{
		1: "2",
		2: "true",
		3: "gateway",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, outcome.TotalScore)
	assert.InDelta(t, 100.0, outcome.Percentage, 0.0001)
	assert.Equal(t, model.ResultPassed, outcome.Result)
}

func TestScoreAttempt_AllWrongFails(t *testing.T) {
	a, questions := weightedFixture()

	outcome, err := ScoreAttempt(a, questions, map[uint]string{
		1: "0",
		2: "false",
		3: "router",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.TotalScore)
	assert.InDelta(t, 0.0, outcome.Percentage, 0.0001)
	assert.Equal(t, model.ResultFailed, outcome.Result)
}

func TestScoreAttempt_MissingAnswersCountIncorrect(t *testing.T) {
	a, questions := weightedFixture()

	// Only the text question answered; partial submissions never error.
	outcome, err := ScoreAttempt(a, questions, map[uint]string{3: "Gateway"})
	require.NoError(t, err)

	assert.Equal(t, 5, outcome.TotalScore)
	assert.Equal(t, model.ResultFailed, outcome.Result)
	require.Len(t, outcome.Details, 3)
	assert.Equal(t, "", outcome.Details[0].UserAnswer)
	assert.False(t, outcome.Details[0].IsCorrect)
}

func TestScoreAttempt_ExactThresholdPasses(t *testing.T) {
	a, questions := weightedFixture()

	// Percentage equal to the threshold is a pass, not a fail.
	a.PassingMarks = 50
	outcome, err := ScoreAttempt(a, questions, map[uint]string{3: "gateway"})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, outcome.Percentage, 0.0001)
	assert.Equal(t, model.ResultPassed, outcome.Result)
}

func TestScoreAttempt_InvalidTotalMarks(t *testing.T) {
	a, questions := weightedFixture()
	a.TotalMarks = 0

	_, err := ScoreAttempt(a, questions, map[uint]string{})
	assert.ErrorIs(t, err, util.ErrInvalidAssessmentConfig)
}

func TestGradeAnswer(t *testing.T) {
	tests := []struct {
		name      string
		qtype     string
		answer    string
		submitted string
		want      bool
	}{
		{"mc exact match", model.QuestionMultipleChoice, "2", "2", true},
		{"mc wrong index", model.QuestionMultipleChoice, "2", "1", false},
		{"mc empty", model.QuestionMultipleChoice, "2", "", false},
		{"tf match", model.QuestionTrueFalse, "true", "true", true},
		{"tf mismatch", model.QuestionTrueFalse, "true", "false", false},
		{"tf not case-insensitive", model.QuestionTrueFalse, "true", "True", false},
		{"text exact", model.QuestionText, "Paris", "Paris", true},
		{"text case-insensitive", model.QuestionText, "Paris", "paris", true},
		{"text trimmed", model.QuestionText, "Paris", "  paris  ", true},
		{"text whitespace only", model.QuestionText, "Paris", "   ", false},
		{"text wrong", model.QuestionText, "Paris", "London", false},
		{"unknown type", "essay", "x", "x", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			question := q(1, tc.qtype, tc.answer, 1)
			assert.Equal(t, tc.want, gradeAnswer(&question, tc.submitted))
		})
	}
}
