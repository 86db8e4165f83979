package service

import (
	"encoding/json"
	"errors"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/util"
	"institute_admin_backend/pkg/logger"
	"institute_admin_backend/pkg/monitoring"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExamService owns the student-facing attempt lifecycle: token
// resolution, question presentation, submission scoring/finalization
// and result review. All durable state lives in the repositories; every
// request is an independent unit of work.
type ExamService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
}

func NewExamService(attemptRepo *repository.AttemptRepository, assessmentRepo *repository.AssessmentRepository) *ExamService {
	return &ExamService{AttemptRepo: attemptRepo, AssessmentRepo: assessmentRepo}
}

// AttemptContext is the resolved identity of a live attempt, carried
// from token resolution into presentation and submission.
type AttemptContext struct {
	AttemptID   uint
	Token       string
	StudentID   uint
	StudentName string
	Assessment  model.Assessment
}

// ResolveToken validates a token against the attempt record and its
// assessment definition. Read-only and idempotent. The distinct
// sentinel errors are routing signals as much as failures:
// ErrAttemptAlreadyCompleted means "show the result page".
func (s *ExamService) ResolveToken(token string) (*AttemptContext, error) {
	if token == "" {
		return nil, util.ErrInvalidToken
	}

	sa, err := s.AttemptRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}

	if sa.Assessment == nil || sa.Assessment.Status != model.AssessmentActive {
		return nil, util.ErrInvalidToken
	}

	if sa.Status == model.AttemptCompleted {
		return nil, util.ErrAttemptAlreadyCompleted
	}

	if sa.Assessment.MaxAttempts > 0 && sa.AttemptsUsed >= sa.Assessment.MaxAttempts {
		return nil, util.ErrAttemptsExhausted
	}

	// Catch misconfigured assessments here, once, rather than
	// mid-scoring.
	if sa.Assessment.TotalMarks <= 0 {
		return nil, util.ErrInvalidAssessmentConfig
	}

	ctx := &AttemptContext{
		AttemptID:  sa.ID,
		Token:      sa.Token,
		StudentID:  sa.StudentID,
		Assessment: *sa.Assessment,
	}
	if sa.Student != nil {
		ctx.StudentName = sa.Student.Name
	}
	return ctx, nil
}

type ExamQuestionView struct {
	ID           uint            `json:"id"`
	QuestionType string          `json:"questionType"`
	Prompt       string          `json:"prompt"`
	Options      json.RawMessage `json:"options,omitempty"`
	Marks        int             `json:"marks"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

type ExamView struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	StudentName      string             `json:"studentName"`
	TimeLimitSeconds int                `json:"timeLimitSeconds"`
	QuestionCount    int                `json:"questionCount"`
	TotalMarks       int                `json:"totalMarks"`
	Questions        []ExamQuestionView `json:"questions"`
}

// PresentQuestions builds the client-facing view: questions in a fresh
// random order with correct answers withheld, plus the countdown budget.
// Each call may produce a different order; scoring never depends on it
// because submissions are keyed by question id.
func (s *ExamService) PresentQuestions(token string) (*ExamView, error) {
	ctx, err := s.ResolveToken(token)
	if err != nil {
		return nil, err
	}

	questions, err := s.AssessmentRepo.ListAllQuestions(ctx.Assessment.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	views := make([]ExamQuestionView, len(shuffled))
	for i, q := range shuffled {
		views[i] = ExamQuestionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Prompt:       q.Prompt,
			Options:      q.Options,
			Marks:        q.Marks,
			ImageURL:     q.ImageURL,
		}
	}

	return &ExamView{
		Title:            ctx.Assessment.Title,
		Description:      ctx.Assessment.Description,
		StudentName:      ctx.StudentName,
		TimeLimitSeconds: ctx.Assessment.TimeLimit * 60,
		QuestionCount:    len(views),
		TotalMarks:       ctx.Assessment.TotalMarks,
		Questions:        views,
	}, nil
}

type SubmissionRequest struct {
	Answers   map[uint]string `json:"answers" binding:"required"`
	TimeSpent int             `json:"timeSpent"`
}

type SubmissionResult struct {
	Score       int        `json:"score"`
	Percentage  float64    `json:"percentage"`
	Result      string     `json:"result"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Submit scores the answer set and finalizes the attempt exactly once.
// A duplicate submission, whether a double click or a retry racing the
// original, surfaces as ErrSubmissionConflict from the finalizer; the
// caller should route the student to the stored result. Overtime
// submissions are still scored: the countdown is client-side and the
// reported elapsed time is persisted as-is.
func (s *ExamService) Submit(token string, req SubmissionRequest) (*SubmissionResult, error) {
	ctx, err := s.ResolveToken(token)
	if err != nil {
		return nil, err
	}

	// Canonical (unshuffled) order, same load the presenter used.
	questions, err := s.AssessmentRepo.ListAllQuestions(ctx.Assessment.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	outcome, err := ScoreAttempt(&ctx.Assessment, questions, req.Answers)
	if err != nil {
		return nil, err
	}

	timeSpent := req.TimeSpent
	if timeSpent < 0 {
		timeSpent = 0
	}

	completedAt := time.Now()
	err = s.AttemptRepo.Finalize(ctx.AttemptID, outcome.TotalScore, outcome.Percentage, outcome.Result, timeSpent, completedAt, outcome.Details)
	if err != nil {
		if errors.Is(err, util.ErrSubmissionConflict) {
			monitoring.SubmissionConflicts.Inc()
			logger.Log.Warn("duplicate submission lost finalize race",
				zap.Uint("attemptId", ctx.AttemptID))
			return nil, err
		}
		return nil, err
	}

	monitoring.SubmissionsFinalized.WithLabelValues(outcome.Result).Inc()
	logger.Log.Info("attempt finalized",
		zap.Uint("attemptId", ctx.AttemptID),
		zap.Uint("assessmentId", ctx.Assessment.ID),
		zap.Int("score", outcome.TotalScore),
		zap.Float64("percentage", outcome.Percentage),
		zap.String("result", outcome.Result))

	return &SubmissionResult{
		Score:       outcome.TotalScore,
		Percentage:  outcome.Percentage,
		Result:      outcome.Result,
		CompletedAt: &completedAt,
	}, nil
}

type QuestionReview struct {
	QuestionID    uint            `json:"questionId"`
	QuestionType  string          `json:"questionType"`
	Prompt        string          `json:"prompt"`
	Options       json.RawMessage `json:"options,omitempty"`
	UserAnswer    string          `json:"userAnswer"`
	CorrectAnswer string          `json:"correctAnswer"`
	IsCorrect     bool            `json:"isCorrect"`
	MarksObtained int             `json:"marksObtained"`
	Marks         int             `json:"marks"`
}

type ResultView struct {
	AssessmentTitle string           `json:"assessmentTitle"`
	StudentName     string           `json:"studentName"`
	Score           int              `json:"score"`
	TotalMarks      int              `json:"totalMarks"`
	Percentage      float64          `json:"percentage"`
	Result          string           `json:"result"`
	TimeSpent       int              `json:"timeSpent"`
	CompletedAt     *time.Time       `json:"completedAt"`
	Questions       []QuestionReview `json:"questions"`
}

// GetResult reconstructs the review for a completed attempt from the
// persisted ResultDetail snapshots. Nothing is recomputed; the summary
// comes straight from the attempt row the finalizer wrote.
func (s *ExamService) GetResult(token string) (*ResultView, error) {
	sa, err := s.AttemptRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}

	if sa.Status != model.AttemptCompleted {
		return nil, util.ErrResultNotReady
	}

	details, err := s.AttemptRepo.GetResultDetails(sa.ID)
	if err != nil {
		return nil, err
	}

	reviews := make([]QuestionReview, len(details))
	for i, d := range details {
		reviews[i] = QuestionReview{
			QuestionID:    d.QuestionID,
			QuestionType:  d.QuestionType,
			Prompt:        d.Prompt,
			Options:       d.Options,
			UserAnswer:    d.UserAnswer,
			CorrectAnswer: d.CorrectAnswer,
			IsCorrect:     d.IsCorrect,
			MarksObtained: d.MarksObtained,
			Marks:         d.Marks,
		}
	}

	view := &ResultView{
		Score:       sa.Score,
		Percentage:  sa.Percentage,
		Result:      sa.Result,
		TimeSpent:   sa.TimeSpent,
		CompletedAt: sa.CompletedAt,
		Questions:   reviews,
	}
	if sa.Assessment != nil {
		view.AssessmentTitle = sa.Assessment.Title
		view.TotalMarks = sa.Assessment.TotalMarks
	}
	if sa.Student != nil {
		view.StudentName = sa.Student.Name
	}
	return view, nil
}
