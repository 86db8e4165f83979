package service

import (
	"encoding/json"
	"fmt"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/util"

	"gorm.io/gorm"
)

// AssessmentService is the staff-side authoring surface. Definitions
// and questions are editable only while the assessment is inactive;
// activation freezes the set and is where the marks invariant is
// enforced, so scoring never has to re-check it.
type AssessmentService struct {
	Repo        *repository.AssessmentRepository
	AttemptRepo *repository.AttemptRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository, attemptRepo *repository.AttemptRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, AttemptRepo: attemptRepo}
}

type AssessmentRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	TimeLimit    int     `json:"timeLimit"`
	TotalMarks   int     `json:"totalMarks"`
	PassingMarks float64 `json:"passingMarks"`
	MaxAttempts  int     `json:"maxAttempts"`
}

func (s *AssessmentService) CreateAssessment(req AssessmentRequest) (*model.Assessment, error) {
	a := &model.Assessment{
		Title:        req.Title,
		Description:  req.Description,
		TimeLimit:    req.TimeLimit,
		TotalMarks:   req.TotalMarks,
		PassingMarks: req.PassingMarks,
		MaxAttempts:  req.MaxAttempts,
		Status:       model.AssessmentInactive,
	}
	if a.MaxAttempts <= 0 {
		a.MaxAttempts = 1
	}
	if err := s.Repo.CreateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AssessmentActive {
		return nil, util.ErrAssessmentActive
	}

	a.Title = req.Title
	a.Description = req.Description
	a.TimeLimit = req.TimeLimit
	a.TotalMarks = req.TotalMarks
	a.PassingMarks = req.PassingMarks
	if req.MaxAttempts > 0 {
		a.MaxAttempts = req.MaxAttempts
	}
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	return s.Repo.FindAssessmentByID(id)
}

func (s *AssessmentService) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListAssessments(page, limit)
}

func (s *AssessmentService) DeleteAssessment(id uint) error {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return err
	}
	if a.Status == model.AssessmentActive {
		return util.ErrAssessmentActive
	}
	return s.Repo.DeleteAssessment(id)
}

// Activate opens an assessment for attempts after validating its
// configuration: at least one question, a sane passing threshold, and
// total_marks equal to the sum of question weights. Keeping those two
// in sync here is what lets the percentage computation downstream
// trust total_marks.
func (s *AssessmentService) Activate(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, err
	}

	questions, err := s.Repo.ListAllQuestions(id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	if a.TotalMarks <= 0 {
		return nil, util.ErrInvalidAssessmentConfig
	}
	if a.PassingMarks <= 0 || a.PassingMarks > 100 {
		return nil, fmt.Errorf("passing marks must be a percentage in (0, 100], got %v", a.PassingMarks)
	}

	sum, err := s.Repo.SumQuestionMarks(id)
	if err != nil {
		return nil, err
	}
	if sum != a.TotalMarks {
		return nil, fmt.Errorf("total marks (%d) does not match sum of question marks (%d)", a.TotalMarks, sum)
	}

	a.Status = model.AssessmentActive
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Deactivate(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, err
	}
	a.Status = model.AssessmentInactive
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

type QuestionRequest struct {
	QuestionType string          `json:"questionType" binding:"required"`
	Prompt       string          `json:"prompt" binding:"required"`
	Options      json.RawMessage `json:"options"`
	Answer       string          `json:"answer" binding:"required"`
	Marks        int             `json:"marks"`
	Order        int             `json:"order"`
}

func validateQuestion(req *QuestionRequest) error {
	switch req.QuestionType {
	case model.QuestionMultipleChoice:
		var opts []string
		if err := json.Unmarshal(req.Options, &opts); err != nil || len(opts) < 2 {
			return fmt.Errorf("multiple_choice requires at least two options")
		}
	case model.QuestionTrueFalse:
		if req.Answer != "true" && req.Answer != "false" {
			return fmt.Errorf("true_false answer must be \"true\" or \"false\"")
		}
	case model.QuestionText:
		// canonical string, no structural constraints
	default:
		return fmt.Errorf("unsupported question type %q", req.QuestionType)
	}
	if req.Marks <= 0 {
		return fmt.Errorf("marks must be positive")
	}
	return nil
}

func (s *AssessmentService) CreateQuestion(assessmentID uint, req QuestionRequest) (*model.Question, error) {
	a, err := s.Repo.FindAssessmentByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AssessmentActive {
		return nil, util.ErrAssessmentActive
	}
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}

	q := &model.Question{
		AssessmentID: assessmentID,
		QuestionType: req.QuestionType,
		Prompt:       req.Prompt,
		Options:      req.Options,
		Answer:       req.Answer,
		Marks:        req.Marks,
		Order:        req.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	a, err := s.Repo.FindAssessmentByID(q.AssessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AssessmentActive {
		return nil, util.ErrAssessmentActive
	}
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}

	q.QuestionType = req.QuestionType
	q.Prompt = req.Prompt
	q.Options = req.Options
	q.Answer = req.Answer
	q.Marks = req.Marks
	q.Order = req.Order
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) DeleteQuestion(id uint) error {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return err
	}
	a, err := s.Repo.FindAssessmentByID(q.AssessmentID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil && a.Status == model.AssessmentActive {
		return util.ErrAssessmentActive
	}
	return s.Repo.DeleteQuestion(id)
}

func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.Question, error) {
	return s.Repo.ListAllQuestions(assessmentID)
}

func (s *AssessmentService) SetQuestionImage(id uint, url string) (*model.Question, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	q.ImageURL = url
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) ListAttempts(assessmentID uint, page, limit int, status string) ([]repository.AttemptListRow, int64, error) {
	return s.AttemptRepo.ListByAssessment(assessmentID, page, limit, status)
}
