package model

// swagger:model Student
type Student struct {
	BaseModel
	// StudentNo 校方学号，登录凭证，如 "12-3456-789"
	StudentNo string `gorm:"size:20;uniqueIndex;not null" json:"studentNo"`
	FirstName string `gorm:"size:150;not null" json:"firstName"`
	LastName  string `gorm:"size:150;index:idx_student_name" json:"lastName"`
	Password  string `gorm:"size:100;not null" json:"-"`

	DepartmentID uint `gorm:"index;type:bigint unsigned" json:"departmentId"`
	YearLevelID  uint `gorm:"type:bigint unsigned" json:"yearLevelId"`
	SectionID    uint `gorm:"index;type:bigint unsigned" json:"sectionId"`

	Department Department `json:"department"`
	YearLevel  YearLevel  `json:"yearLevel"`
	Section    Section    `json:"section"`
}

func (Student) TableName() string {
	return "students"
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// FullSection 完整段名，如 "CS3A"
func (s Student) FullSection() string {
	if s.Section.ID == 0 {
		return "N/A"
	}
	return s.Section.Label()
}
