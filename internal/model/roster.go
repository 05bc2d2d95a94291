package model

import "fmt"

// swagger:model Department
type Department struct {
	BaseModel
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"` // e.g. "CS", "IT"
}

func (Department) TableName() string {
	return "departments"
}

// swagger:model YearLevel
type YearLevel struct {
	BaseModel
	Year int `gorm:"uniqueIndex;not null" json:"year"` // e.g. 1, 2, 3, 4
}

func (YearLevel) TableName() string {
	return "year_levels"
}

// swagger:model Section
type Section struct {
	BaseModel
	DepartmentID uint   `gorm:"index;uniqueIndex:idx_dept_year_letter;type:bigint unsigned;not null" json:"departmentId"`
	YearLevelID  uint   `gorm:"uniqueIndex:idx_dept_year_letter;type:bigint unsigned;not null" json:"yearLevelId"`
	Letter       string `gorm:"size:1;uniqueIndex:idx_dept_year_letter;not null" json:"letter"` // e.g. "A", "B"

	Department Department `json:"department"`
	YearLevel  YearLevel  `json:"yearLevel"`
}

func (Section) TableName() string {
	return "sections"
}

// Label 组合段名，如 "CS3A"
func (s Section) Label() string {
	return fmt.Sprintf("%s%d%s", s.Department.Name, s.YearLevel.Year, s.Letter)
}

// SectionJoinCode 学生注册时输入的段位加入码
// swagger:model SectionJoinCode
type SectionJoinCode struct {
	BaseModel
	SectionID uint   `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"sectionId"`
	Code      string `gorm:"size:10;uniqueIndex;not null" json:"code"`
}

func (SectionJoinCode) TableName() string {
	return "section_join_codes"
}
