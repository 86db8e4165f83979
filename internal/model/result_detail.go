package model

import "encoding/json"

// ResultDetail is one graded answer of a finalized attempt. Question
// fields are copied at scoring time so later edits to the question bank
// cannot rewrite history.
// swagger:model ResultDetail
type ResultDetail struct {
	BaseModel
	StudentAssessmentID uint            `gorm:"index;type:bigint unsigned" json:"studentAssessmentId"`
	QuestionID          uint            `gorm:"index;type:bigint unsigned" json:"questionId"`
	QuestionType        string          `gorm:"size:50" json:"questionType"`
	Prompt              string          `gorm:"type:text" json:"prompt"`
	Options             json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	UserAnswer          string          `gorm:"type:text" json:"userAnswer"`
	CorrectAnswer       string          `gorm:"type:text" json:"correctAnswer"`
	IsCorrect           bool            `gorm:"default:false" json:"isCorrect"`
	Marks               int             `gorm:"default:0" json:"marks"`
	MarksObtained       int             `gorm:"default:0" json:"marksObtained"`
}

func (ResultDetail) TableName() string {
	return "result_details"
}
