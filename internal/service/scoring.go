package service

import (
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/util"
	"strings"
)

// ScoreOutcome is the full grading of one submission: totals plus one
// detail row per question, in canonical question order. Details carry
// the question snapshot so finalization can persist them as the audit
// trail.
type ScoreOutcome struct {
	TotalScore int
	Percentage float64
	Result     string
	Details    []model.ResultDetail
}

// ScoreAttempt grades a submitted answer set against the canonical
// question list. Pure: no I/O, no clock. Answers are keyed by question
// id; a missing answer counts as empty and incorrect. The only failure
// mode is a non-positive total_marks, which callers are expected to
// have rejected at token-resolution time already.
func ScoreAttempt(assessment *model.Assessment, questions []model.Question, answers map[uint]string) (*ScoreOutcome, error) {
	if assessment.TotalMarks <= 0 {
		return nil, util.ErrInvalidAssessmentConfig
	}

	outcome := &ScoreOutcome{
		Details: make([]model.ResultDetail, 0, len(questions)),
	}

	for _, q := range questions {
		submitted := answers[q.ID]
		correct := gradeAnswer(&q, submitted)

		marks := 0
		if correct {
			marks = q.Marks
			outcome.TotalScore += marks
		}

		outcome.Details = append(outcome.Details, model.ResultDetail{
			QuestionID:    q.ID,
			QuestionType:  q.QuestionType,
			Prompt:        q.Prompt,
			Options:       q.Options,
			UserAnswer:    submitted,
			CorrectAnswer: q.Answer,
			IsCorrect:     correct,
			Marks:         q.Marks,
			MarksObtained: marks,
		})
	}

	outcome.Percentage = float64(outcome.TotalScore) / float64(assessment.TotalMarks) * 100

	if outcome.Percentage >= assessment.PassingMarks {
		outcome.Result = model.ResultPassed
	} else {
		outcome.Result = model.ResultFailed
	}

	return outcome, nil
}

// gradeAnswer applies the per-type correctness rule: exact match for
// option indexes and true/false literals, trimmed case-insensitive
// match for text. No partial credit.
func gradeAnswer(q *model.Question, submitted string) bool {
	switch q.QuestionType {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse:
		return submitted != "" && submitted == q.Answer
	case model.QuestionText:
		s := strings.TrimSpace(submitted)
		if s == "" {
			return false
		}
		return strings.EqualFold(s, strings.TrimSpace(q.Answer))
	default:
		return false
	}
}
