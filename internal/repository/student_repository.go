package repository

import (
	"institute_admin_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var s model.Student
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *StudentRepository) FindByEmail(email string) (*model.Student, error) {
	var s model.Student
	err := r.DB.Where("email = ?", email).First(&s).Error
	return &s, err
}

func (r *StudentRepository) ListByBatch(batchName string) ([]model.Student, error) {
	var students []model.Student
	query := r.DB.Model(&model.Student{})
	if batchName != "" {
		query = query.Where("batch_name = ?", batchName)
	}
	err := query.Order("name asc").Find(&students).Error
	return students, err
}
