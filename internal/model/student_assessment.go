package model

import "time"

type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"
	AttemptCompleted AttemptStatus = "completed"
)

const (
	ResultPassed = "passed"
	ResultFailed = "failed"
)

// StudentAssessment pairs a student with an assessment they are
// authorized to take. The token is the sole lookup key handed to the
// student; rows are created by the assignment workflow and only ever
// mutated by attempt finalization. Rows are never deleted - they are
// the audit trail.
// swagger:model StudentAssessment
type StudentAssessment struct {
	BaseModel
	Token        string        `gorm:"size:64;uniqueIndex;not null" json:"token"`
	StudentID    uint          `gorm:"index;type:bigint unsigned" json:"studentId"`
	Student      *Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	AssessmentID uint          `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Assessment   *Assessment   `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
	Status       AttemptStatus `gorm:"size:20;default:'pending'" json:"status"`
	AttemptsUsed int           `gorm:"default:0" json:"attemptsUsed"`
	Score        int           `gorm:"default:0" json:"score"`
	Percentage   float64       `gorm:"default:0" json:"percentage"`
	Result       string        `gorm:"size:20" json:"result"` // passed, failed
	TimeSpent    int           `gorm:"default:0" json:"timeSpent"` // Seconds, as reported by the client
	CompletedAt  *time.Time    `json:"completedAt"`
}

func (StudentAssessment) TableName() string {
	return "student_assessments"
}
