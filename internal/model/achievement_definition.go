package model

// AchievementDefinition 全局成就目录；IsActive 是全局开关，
// 关掉后无论学生是否已解锁，导出接口一律隐藏该成就
// swagger:model AchievementDefinition
type AchievementDefinition struct {
	HardModel
	Code        string `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

func (AchievementDefinition) TableName() string {
	return "achievement_definitions"
}
