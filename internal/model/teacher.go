package model

// swagger:model Teacher
type Teacher struct {
	BaseModel
	TeacherID string `gorm:"size:50;uniqueIndex;not null" json:"teacherId"`
	FirstName string `gorm:"size:150;not null" json:"firstName"`
	LastName  string `gorm:"size:150;not null" json:"lastName"`
	Password  string `gorm:"size:100;not null" json:"-"`

	HandledSections []HandledSection `json:"handledSections,omitempty"`
}

func (Teacher) TableName() string {
	return "teachers"
}

func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// HandledSection 教师与所带段位的关联
// swagger:model HandledSection
type HandledSection struct {
	BaseModel
	TeacherID uint `gorm:"uniqueIndex:idx_teacher_section;type:bigint unsigned;not null" json:"teacherId"`
	SectionID uint `gorm:"uniqueIndex:idx_teacher_section;index;type:bigint unsigned;not null" json:"sectionId"`

	Section Section `json:"section"`
}

func (HandledSection) TableName() string {
	return "handled_sections"
}

// swagger:model SimpleAdmin
type SimpleAdmin struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:100;not null" json:"-"`
}

func (SimpleAdmin) TableName() string {
	return "simple_admins"
}
