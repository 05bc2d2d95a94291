package model

// LevelProgress 每个 (student, level) 一行；BestTime 只增不减
// swagger:model LevelProgress
type LevelProgress struct {
	HardModel
	StudentID uint `gorm:"uniqueIndex:idx_student_level;index;type:bigint unsigned;not null" json:"studentId"`
	LevelID   uint `gorm:"uniqueIndex:idx_student_level;type:bigint unsigned;not null" json:"levelId"`

	BestTime    int  `gorm:"default:0;index" json:"bestTime"`
	CurrentTime int  `gorm:"default:0" json:"currentTime"`
	Unlocked    bool `gorm:"default:false" json:"unlocked"`

	Level LevelDefinition `json:"level,omitempty"`
}

func (LevelProgress) TableName() string {
	return "level_progress"
}
