package model

// Student is an enrolled trainee. Rows are created by the enrollment
// workflow; the assessment core only ever reads them.
// swagger:model Student
type Student struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	Email     string `gorm:"size:100;unique;not null" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	BatchName string `gorm:"size:100;index" json:"batchName"`
}

func (Student) TableName() string {
	return "students"
}
