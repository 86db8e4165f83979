package repository

import (
	"errors"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/util"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Assign creates the attempt record that authorizes one student to take
// one assessment, keyed by a fresh unguessable token. The (student,
// assessment) pair is unique; re-assigning returns the existing record's
// error rather than a second token.
func (r *AttemptRepository) Assign(studentID, assessmentID uint) (*model.StudentAssessment, error) {
	var existing model.StudentAssessment
	err := r.DB.Where("student_id = ? AND assessment_id = ?", studentID, assessmentID).
		First(&existing).Error
	if err == nil {
		return nil, util.ErrAlreadyAssigned
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sa := &model.StudentAssessment{
		Token:        uuid.New().String(),
		StudentID:    studentID,
		AssessmentID: assessmentID,
		Status:       model.AttemptPending,
	}
	if err := r.DB.Create(sa).Error; err != nil {
		return nil, err
	}
	return sa, nil
}

// FindByToken loads the attempt record together with its assessment
// definition. Read-only; safe to call any number of times.
func (r *AttemptRepository) FindByToken(token string) (*model.StudentAssessment, error) {
	var sa model.StudentAssessment
	err := r.DB.Preload("Assessment").Preload("Student").
		Where("token = ?", token).First(&sa).Error
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

// Finalize transitions a pending attempt to completed and writes its
// result rows as one transaction. The status-guarded UPDATE is the
// serialization point: of two concurrent submissions exactly one
// matches `status = 'pending'`; the other gets zero affected rows and
// ErrSubmissionConflict, with nothing persisted.
func (r *AttemptRepository) Finalize(attemptID uint, score int, percentage float64, result string, timeSpent int, completedAt time.Time, details []model.ResultDetail) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.StudentAssessment{}).
			Where("id = ? AND status = ?", attemptID, model.AttemptPending).
			Updates(map[string]interface{}{
				"status":        model.AttemptCompleted,
				"score":         score,
				"percentage":    percentage,
				"result":        result,
				"time_spent":    timeSpent,
				"completed_at":  completedAt,
				"attempts_used": gorm.Expr("attempts_used + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrSubmissionConflict
		}

		for i := range details {
			details[i].StudentAssessmentID = attemptID
		}
		if len(details) > 0 {
			if err := tx.Create(&details).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) GetResultDetails(attemptID uint) ([]model.ResultDetail, error) {
	var details []model.ResultDetail
	err := r.DB.Where("student_assessment_id = ?", attemptID).
		Order("question_id asc").Find(&details).Error
	return details, err
}

type AttemptListRow struct {
	model.StudentAssessment
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// ListByAssessment is the staff-side attempt overview with the student
// join, paginated.
func (r *AttemptRepository) ListByAssessment(assessmentID uint, page, limit int, status string) ([]AttemptListRow, int64, error) {
	query := r.DB.Table("student_assessments sa").
		Select("sa.*, s.name as student_name, s.email as student_email").
		Joins("JOIN students s ON sa.student_id = s.id").
		Where("sa.assessment_id = ? AND sa.deleted_at IS NULL", assessmentID)

	if status != "" {
		query = query.Where("sa.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []AttemptListRow
	offset := (page - 1) * limit
	err := query.Order("sa.created_at desc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}
