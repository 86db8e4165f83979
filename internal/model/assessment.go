package model

type AssessmentStatus string

const (
	AssessmentActive   AssessmentStatus = "active"
	AssessmentInactive AssessmentStatus = "inactive"
)

// Assessment is the immutable definition a student takes an attempt
// against. PassingMarks is a percentage threshold, not an absolute
// marks value.
// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  string           `gorm:"type:text" json:"description"`
	TimeLimit    int              `gorm:"default:0" json:"timeLimit"` // Minutes
	TotalMarks   int              `gorm:"default:0" json:"totalMarks"`
	PassingMarks float64          `gorm:"default:0" json:"passingMarks"` // Percent
	MaxAttempts  int              `gorm:"default:1" json:"maxAttempts"`
	Status       AssessmentStatus `gorm:"size:20;default:'inactive'" json:"status"`
}

func (Assessment) TableName() string {
	return "assessments"
}
