package model

import (
	"strconv"
	"strings"
)

// LevelDefinition 全局关卡目录，Unlocked 只是无进度行时的兜底默认值，
// 学生实际可见性以 LevelProgress.Unlocked 为准
// swagger:model LevelDefinition
type LevelDefinition struct {
	HardModel
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Unlocked  bool   `gorm:"default:false" json:"unlocked"`
	SortOrder int    `gorm:"default:999;index" json:"sortOrder"`
}

func (LevelDefinition) TableName() string {
	return "level_definitions"
}

// DeriveSortOrder 按命名规则推排序：Tutorial→0、LevelN→N、其余 999
func DeriveSortOrder(name string) int {
	if name == "Tutorial" {
		return 0
	}
	if n, ok := strings.CutPrefix(name, "Level"); ok {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			return v
		}
	}
	return 999
}
