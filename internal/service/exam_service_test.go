package service

import (
	"encoding/json"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/util"
	"institute_admin_backend/pkg/logger"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Assessment{},
		&model.Question{},
		&model.StudentAssessment{},
		&model.ResultDetail{},
	))
	return db
}

type examFixture struct {
	db         *gorm.DB
	exam       *ExamService
	attempts   *repository.AttemptRepository
	assessment *model.Assessment
	student    *model.Student
	token      string
}

func newExamFixture(t *testing.T) *examFixture {
	t.Helper()
	db := newTestDB(t)

	attempts := repository.NewAttemptRepository(db)
	assessments := repository.NewAssessmentRepository(db, nil)
	exam := NewExamService(attempts, assessments)

	student := &model.Student{Name: "Asha Verma", Email: "asha@example.com", BatchName: "2026-spring"}
	require.NoError(t, db.Create(student).Error)

	assessment := &model.Assessment{
		Title:        "Networking basics",
		Description:  "Unit 1 closing assessment",
		TimeLimit:    30,
		TotalMarks:   10,
		PassingMarks: 60,
		MaxAttempts:  1,
		Status:       model.AssessmentActive,
	}
	require.NoError(t, db.Create(assessment).Error)

	questions := []model.Question{
		{AssessmentID: assessment.ID, QuestionType: model.QuestionMultipleChoice, Prompt: "Which device routes between networks?", Options: json.RawMessage(`["hub","switch","router","modem"]`), Answer: "2", Marks: 2, Order: 1},
		{AssessmentID: assessment.ID, QuestionType: model.QuestionTrueFalse, Prompt: "TCP is connection oriented.", Answer: "true", Marks: 3, Order: 2},
		{AssessmentID: assessment.ID, QuestionType: model.QuestionText, Prompt: "Name the default route target.", Answer: "gateway", Marks: 5, Order: 3},
	}
	require.NoError(t, db.Create(&questions).Error)

	sa, err := attempts.Assign(student.ID, assessment.ID)
	require.NoError(t, err)

	return &examFixture{
		db:         db,
		exam:       exam,
		attempts:   attempts,
		assessment: assessment,
		student:    student,
		token:      sa.Token,
	}
}

func (f *examFixture) answers(t *testing.T) map[uint]string {
	t.Helper()
	var questions []model.Question
	require.NoError(t, f.db.Where("assessment_id = ?", f.assessment.ID).Order("`order` asc").Find(&questions).Error)
	require.Len(t, questions, 3)
	return map[uint]string{
		questions[0].ID: "2",
		questions[1].ID: "false",
		questions[2].ID: " Gateway ",
	}
}

func TestResolveToken(t *testing.T) {
	f := newExamFixture(t)

	t.Run("empty token", func(t *testing.T) {
		_, err := f.exam.ResolveToken("")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.exam.ResolveToken("no-such-token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("valid token", func(t *testing.T) {
		ctx, err := f.exam.ResolveToken(f.token)
		require.NoError(t, err)
		assert.Equal(t, f.student.ID, ctx.StudentID)
		assert.Equal(t, "Asha Verma", ctx.StudentName)
		assert.Equal(t, f.assessment.ID, ctx.Assessment.ID)
	})

	t.Run("inactive assessment", func(t *testing.T) {
		require.NoError(t, f.db.Model(&model.Assessment{}).Where("id = ?", f.assessment.ID).
			Update("status", model.AssessmentInactive).Error)
		_, err := f.exam.ResolveToken(f.token)
		assert.ErrorIs(t, err, util.ErrInvalidToken)
		require.NoError(t, f.db.Model(&model.Assessment{}).Where("id = ?", f.assessment.ID).
			Update("status", model.AssessmentActive).Error)
	})

	t.Run("misconfigured total marks", func(t *testing.T) {
		require.NoError(t, f.db.Model(&model.Assessment{}).Where("id = ?", f.assessment.ID).
			Update("total_marks", 0).Error)
		_, err := f.exam.ResolveToken(f.token)
		assert.ErrorIs(t, err, util.ErrInvalidAssessmentConfig)
		require.NoError(t, f.db.Model(&model.Assessment{}).Where("id = ?", f.assessment.ID).
			Update("total_marks", 10).Error)
	})

	t.Run("exhausted attempts", func(t *testing.T) {
		require.NoError(t, f.db.Model(&model.StudentAssessment{}).Where("token = ?", f.token).
			Update("attempts_used", 1).Error)
		_, err := f.exam.ResolveToken(f.token)
		assert.ErrorIs(t, err, util.ErrAttemptsExhausted)
		require.NoError(t, f.db.Model(&model.StudentAssessment{}).Where("token = ?", f.token).
			Update("attempts_used", 0).Error)
	})
}

func TestPresentQuestions_WithholdsAnswers(t *testing.T) {
	f := newExamFixture(t)

	view, err := f.exam.PresentQuestions(f.token)
	require.NoError(t, err)

	assert.Equal(t, "Networking basics", view.Title)
	assert.Equal(t, "Asha Verma", view.StudentName)
	assert.Equal(t, 30*60, view.TimeLimitSeconds)
	assert.Equal(t, 10, view.TotalMarks)
	assert.Equal(t, 3, view.QuestionCount)
	require.Len(t, view.Questions, 3)

	// The wire shape must not expose the correct answer anywhere.
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"answer"`)
	assert.NotContains(t, string(raw), "gateway")

	seen := map[uint]bool{}
	for _, qv := range view.Questions {
		seen[qv.ID] = true
		assert.NotEmpty(t, qv.Prompt)
		assert.Positive(t, qv.Marks)
	}
	assert.Len(t, seen, 3)
}

func TestPresentQuestions_NoQuestions(t *testing.T) {
	f := newExamFixture(t)
	require.NoError(t, f.db.Where("assessment_id = ?", f.assessment.ID).Delete(&model.Question{}).Error)

	_, err := f.exam.PresentQuestions(f.token)
	assert.ErrorIs(t, err, util.ErrNoQuestions)
}

func TestSubmit_FinalizesAndPersists(t *testing.T) {
	f := newExamFixture(t)

	res, err := f.exam.Submit(f.token, SubmissionRequest{Answers: f.answers(t), TimeSpent: 640})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Score)
	assert.InDelta(t, 70.0, res.Percentage, 0.0001)
	assert.Equal(t, model.ResultPassed, res.Result)
	require.NotNil(t, res.CompletedAt)

	var sa model.StudentAssessment
	require.NoError(t, f.db.Where("token = ?", f.token).First(&sa).Error)
	assert.Equal(t, model.AttemptCompleted, sa.Status)
	assert.Equal(t, 7, sa.Score)
	assert.InDelta(t, 70.0, sa.Percentage, 0.0001)
	assert.Equal(t, model.ResultPassed, sa.Result)
	assert.Equal(t, 1, sa.AttemptsUsed)
	assert.Equal(t, 640, sa.TimeSpent)
	require.NotNil(t, sa.CompletedAt)

	var count int64
	require.NoError(t, f.db.Model(&model.ResultDetail{}).
		Where("student_assessment_id = ?", sa.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSubmit_SecondSubmissionConflicts(t *testing.T) {
	f := newExamFixture(t)
	answers := f.answers(t)

	_, err := f.exam.Submit(f.token, SubmissionRequest{Answers: answers, TimeSpent: 100})
	require.NoError(t, err)

	_, err = f.exam.Submit(f.token, SubmissionRequest{Answers: answers, TimeSpent: 120})
	assert.ErrorIs(t, err, util.ErrAttemptAlreadyCompleted)

	// The duplicate must not add detail rows or bump the counters.
	var sa model.StudentAssessment
	require.NoError(t, f.db.Where("token = ?", f.token).First(&sa).Error)
	assert.Equal(t, 1, sa.AttemptsUsed)
	assert.Equal(t, 100, sa.TimeSpent)

	var count int64
	require.NoError(t, f.db.Model(&model.ResultDetail{}).
		Where("student_assessment_id = ?", sa.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestGetResult(t *testing.T) {
	f := newExamFixture(t)

	t.Run("before submission", func(t *testing.T) {
		_, err := f.exam.GetResult(f.token)
		assert.ErrorIs(t, err, util.ErrResultNotReady)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.exam.GetResult("no-such-token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	_, err := f.exam.Submit(f.token, SubmissionRequest{Answers: f.answers(t), TimeSpent: 300})
	require.NoError(t, err)

	t.Run("after submission", func(t *testing.T) {
		view, err := f.exam.GetResult(f.token)
		require.NoError(t, err)

		assert.Equal(t, "Networking basics", view.AssessmentTitle)
		assert.Equal(t, "Asha Verma", view.StudentName)
		assert.Equal(t, 7, view.Score)
		assert.Equal(t, 10, view.TotalMarks)
		assert.InDelta(t, 70.0, view.Percentage, 0.0001)
		assert.Equal(t, model.ResultPassed, view.Result)
		assert.Equal(t, 300, view.TimeSpent)
		require.NotNil(t, view.CompletedAt)
		require.Len(t, view.Questions, 3)

		correct := 0
		for _, qr := range view.Questions {
			assert.NotEmpty(t, qr.Prompt)
			assert.NotEmpty(t, qr.CorrectAnswer)
			assert.Positive(t, qr.Marks)
			if qr.IsCorrect {
				correct++
				assert.Equal(t, qr.Marks, qr.MarksObtained)
			} else {
				assert.Zero(t, qr.MarksObtained)
			}
		}
		assert.Equal(t, 2, correct)
	})
}

func TestGetResult_SurvivesQuestionEdits(t *testing.T) {
	f := newExamFixture(t)

	_, err := f.exam.Submit(f.token, SubmissionRequest{Answers: f.answers(t)})
	require.NoError(t, err)

	// Rewriting the question bank must not rewrite history: the review
	// is built from the snapshot taken at scoring time.
	require.NoError(t, f.db.Model(&model.Question{}).
		Where("assessment_id = ?", f.assessment.ID).
		Updates(map[string]interface{}{"prompt": "REWRITTEN", "answer": "changed", "marks": 99}).Error)

	view, err := f.exam.GetResult(f.token)
	require.NoError(t, err)

	assert.Equal(t, 7, view.Score)
	for _, qr := range view.Questions {
		assert.NotEqual(t, "REWRITTEN", qr.Prompt)
		assert.NotEqual(t, "changed", qr.CorrectAnswer)
		assert.NotEqual(t, 99, qr.Marks)
	}
}
