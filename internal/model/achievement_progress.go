package model

// AchievementProgress 每个 (student, achievement) 一行；
// Unlocked = 学生已获得，IsActive = 教师允许该学生解锁（独立于全局开关）
// swagger:model AchievementProgress
type AchievementProgress struct {
	HardModel
	StudentID     uint `gorm:"uniqueIndex:idx_student_achievement;index;type:bigint unsigned;not null" json:"studentId"`
	AchievementID uint `gorm:"uniqueIndex:idx_student_achievement;type:bigint unsigned;not null" json:"achievementId"`

	Unlocked bool `gorm:"default:false;index" json:"unlocked"`
	IsActive bool `gorm:"default:true" json:"isActive"`

	Achievement AchievementDefinition `json:"achievement,omitempty"`
}

func (AchievementProgress) TableName() string {
	return "achievement_progress"
}
