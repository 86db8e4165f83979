package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"institute_admin_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Question sets are immutable while an assessment is active, so reads
// during attempts are served from Redis and invalidated on any
// authoring write.
const questionCacheTTL = 10 * time.Minute

type AssessmentRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewAssessmentRepository(db *gorm.DB, rdb *redis.Client) *AssessmentRepository {
	return &AssessmentRepository{DB: db, Redis: rdb}
}

func (r *AssessmentRepository) CreateAssessment(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindAssessmentByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64
	query := r.DB.Model(&model.Assessment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) UpdateAssessment(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) DeleteAssessment(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Assessment{}, id).Error
	})
	if err == nil {
		r.invalidateQuestionCache(id)
	}
	return err
}

func (r *AssessmentRepository) CreateQuestion(q *model.Question) error {
	if err := r.DB.Create(q).Error; err != nil {
		return err
	}
	r.invalidateQuestionCache(q.AssessmentID)
	return nil
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.Question) error {
	if err := r.DB.Save(q).Error; err != nil {
		return err
	}
	r.invalidateQuestionCache(q.AssessmentID)
	return nil
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	q, err := r.FindQuestionByID(id)
	if err != nil {
		return err
	}
	if err := r.DB.Delete(&model.Question{}, id).Error; err != nil {
		return err
	}
	r.invalidateQuestionCache(q.AssessmentID)
	return nil
}

// ListAllQuestions returns the full question set in canonical authoring
// order. Presentation shuffling happens above this layer so the same
// load can be reused for scoring.
func (r *AssessmentRepository) ListAllQuestions(assessmentID uint) ([]model.Question, error) {
	if qs, ok := r.cachedQuestions(assessmentID); ok {
		return qs, nil
	}

	var qs []model.Question
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("`order` asc, created_at asc").Find(&qs).Error
	if err != nil {
		return nil, err
	}

	r.cacheQuestions(assessmentID, qs)
	return qs, nil
}

// SumQuestionMarks backs the activation-time check that total_marks
// matches the question weights.
func (r *AssessmentRepository) SumQuestionMarks(assessmentID uint) (int, error) {
	var sum int64
	err := r.DB.Model(&model.Question{}).
		Where("assessment_id = ?", assessmentID).
		Select("COALESCE(SUM(marks), 0)").Scan(&sum).Error
	return int(sum), err
}

func (r *AssessmentRepository) questionCacheKey(assessmentID uint) string {
	return fmt.Sprintf("assessment:%d:questions", assessmentID)
}

func (r *AssessmentRepository) cachedQuestions(assessmentID uint) ([]model.Question, bool) {
	if r.Redis == nil {
		return nil, false
	}
	val, err := r.Redis.Get(context.Background(), r.questionCacheKey(assessmentID)).Result()
	if err != nil {
		return nil, false
	}
	var qs []model.Question
	if err := json.Unmarshal([]byte(val), &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (r *AssessmentRepository) cacheQuestions(assessmentID uint, qs []model.Question) {
	if r.Redis == nil {
		return
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return
	}
	r.Redis.Set(context.Background(), r.questionCacheKey(assessmentID), data, questionCacheTTL)
}

func (r *AssessmentRepository) invalidateQuestionCache(assessmentID uint) {
	if r.Redis == nil {
		return
	}
	r.Redis.Del(context.Background(), r.questionCacheKey(assessmentID))
}
