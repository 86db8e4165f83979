package service

import (
	"errors"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/util"
	"institute_admin_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService covers the administrative side of attempt taking:
// registering students and handing them single-use assessment tokens.
type EnrollmentService struct {
	StudentRepo    *repository.StudentRepository
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
}

func NewEnrollmentService(studentRepo *repository.StudentRepository, attemptRepo *repository.AttemptRepository, assessmentRepo *repository.AssessmentRepository) *EnrollmentService {
	return &EnrollmentService{
		StudentRepo:    studentRepo,
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
	}
}

type StudentRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	BatchName string `json:"batchName"`
}

func (s *EnrollmentService) CreateStudent(req StudentRequest) (*model.Student, error) {
	_, err := s.StudentRepo.FindByEmail(req.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &model.Student{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BatchName: req.BatchName,
	}
	if err := s.StudentRepo.Create(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *EnrollmentService) ListStudents(batchName string) ([]model.Student, error) {
	return s.StudentRepo.ListByBatch(batchName)
}

// AssignStudent issues the attempt token for a (student, assessment)
// pair. The assessment must exist; it does not have to be active yet,
// tokens only become usable once it is.
func (s *EnrollmentService) AssignStudent(assessmentID, studentID uint) (*model.StudentAssessment, error) {
	if _, err := s.AssessmentRepo.FindAssessmentByID(assessmentID); err != nil {
		return nil, err
	}
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		return nil, err
	}

	sa, err := s.AttemptRepo.Assign(studentID, assessmentID)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("assessment assigned",
		zap.Uint("assessmentId", assessmentID),
		zap.Uint("studentId", studentID))
	return sa, nil
}

// AssignBatch issues tokens for every student of a batch, skipping
// students already assigned. Used by the bulk-issuance script.
func (s *EnrollmentService) AssignBatch(assessmentID uint, batchName string) (int, error) {
	if _, err := s.AssessmentRepo.FindAssessmentByID(assessmentID); err != nil {
		return 0, err
	}

	students, err := s.StudentRepo.ListByBatch(batchName)
	if err != nil {
		return 0, err
	}

	issued := 0
	for _, st := range students {
		_, err := s.AttemptRepo.Assign(st.ID, assessmentID)
		if err != nil {
			if errors.Is(err, util.ErrAlreadyAssigned) {
				continue
			}
			return issued, err
		}
		issued++
	}
	return issued, nil
}
