package model

import "time"

// SectionLevelSchedule 每个 (section, level) 的自动解锁窗口。
// 行存在即表示该组合仍由调度器接管；过期或教师手动覆盖时整行删除
// swagger:model SectionLevelSchedule
type SectionLevelSchedule struct {
	HardModel
	SectionID uint `gorm:"uniqueIndex:idx_section_level;index;type:bigint unsigned;not null" json:"sectionId"`
	LevelID   uint `gorm:"uniqueIndex:idx_section_level;type:bigint unsigned;not null" json:"levelId"`

	StartDate *time.Time `json:"startDate,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	Level LevelDefinition `json:"level,omitempty"`
}

func (SectionLevelSchedule) TableName() string {
	return "section_level_schedules"
}
