package model

import "encoding/json"

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionText           = "text"
)

// Question belongs to one assessment. Answer holds the canonical correct
// answer: an option index for multiple_choice, "true"/"false" for
// true_false, the expected string for text.
// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID uint            `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	QuestionType string          `gorm:"size:50;not null" json:"questionType"`
	Prompt       string          `gorm:"type:text;not null" json:"prompt"`
	Options      json.RawMessage `gorm:"type:json" json:"options"` // JSON: []string, multiple_choice only
	Answer       string          `gorm:"type:text" json:"answer"`
	Marks        int             `gorm:"default:0" json:"marks"`
	Order        int             `gorm:"default:0" json:"order"`
	ImageURL     string          `gorm:"size:255" json:"imageUrl"`
}

func (Question) TableName() string {
	return "questions"
}
