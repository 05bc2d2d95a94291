package repository

import (
	"errors"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/util"

	"gorm.io/gorm"
)

type LevelDefinitionRepository struct {
	DB *gorm.DB
}

func NewLevelDefinitionRepository(db *gorm.DB) *LevelDefinitionRepository {
	return &LevelDefinitionRepository{DB: db}
}

func (r *LevelDefinitionRepository) List() ([]model.LevelDefinition, error) {
	var levels []model.LevelDefinition
	err := r.DB.Order("sort_order, name").Find(&levels).Error
	return levels, err
}

func (r *LevelDefinitionRepository) IDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LevelDefinition{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *LevelDefinitionRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.LevelDefinition{}).Count(&count).Error
	return count, err
}

func (r *LevelDefinitionRepository) FindByName(name string) (*model.LevelDefinition, error) {
	var level model.LevelDefinition
	err := r.DB.Where("name = ?", name).First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// GetOrCreate 按名字取或建，返回是否新建
func (r *LevelDefinitionRepository) GetOrCreate(name string, unlocked bool) (*model.LevelDefinition, bool, error) {
	level, err := r.FindByName(name)
	if err == nil {
		return level, false, nil
	}
	if !errors.Is(err, util.ErrLevelNotFound) {
		return nil, false, err
	}
	created := &model.LevelDefinition{
		Name:      name,
		Unlocked:  unlocked,
		SortOrder: model.DeriveSortOrder(name),
	}
	if err := r.DB.Create(created).Error; err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *LevelDefinitionRepository) Save(level *model.LevelDefinition) error {
	return r.DB.Save(level).Error
}

func (r *LevelDefinitionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.LevelDefinition{}, id).Error
}

// SetUnlockedAll 目录级全局默认开关
func (r *LevelDefinitionRepository) SetUnlockedAll(unlocked bool) error {
	return r.DB.Model(&model.LevelDefinition{}).
		Where("1 = 1").
		Update("unlocked", unlocked).Error
}

type AchievementDefinitionRepository struct {
	DB *gorm.DB
}

func NewAchievementDefinitionRepository(db *gorm.DB) *AchievementDefinitionRepository {
	return &AchievementDefinitionRepository{DB: db}
}

func (r *AchievementDefinitionRepository) List() ([]model.AchievementDefinition, error) {
	var achievements []model.AchievementDefinition
	err := r.DB.Order("code").Find(&achievements).Error
	return achievements, err
}

// ListActive 只返回全局开启的成就（学生导出接口用）
func (r *AchievementDefinitionRepository) ListActive() ([]model.AchievementDefinition, error) {
	var achievements []model.AchievementDefinition
	err := r.DB.Where("is_active = ?", true).Order("code").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementDefinitionRepository) IDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.AchievementDefinition{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *AchievementDefinitionRepository) FindByCode(code string) (*model.AchievementDefinition, error) {
	var achievement model.AchievementDefinition
	err := r.DB.Where("code = ?", code).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementDefinitionRepository) GetOrCreate(code, title, description string) (*model.AchievementDefinition, bool, error) {
	achievement, err := r.FindByCode(code)
	if err == nil {
		return achievement, false, nil
	}
	if !errors.Is(err, util.ErrAchievementNotFound) {
		return nil, false, err
	}
	created := &model.AchievementDefinition{
		Code:        code,
		Title:       title,
		Description: description,
		IsActive:    true,
	}
	if err := r.DB.Create(created).Error; err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *AchievementDefinitionRepository) Save(achievement *model.AchievementDefinition) error {
	return r.DB.Save(achievement).Error
}

func (r *AchievementDefinitionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.AchievementDefinition{}, id).Error
}

// SetActiveAll 全局成就开关
func (r *AchievementDefinitionRepository) SetActiveAll(active bool) error {
	return r.DB.Model(&model.AchievementDefinition{}).
		Where("1 = 1").
		Update("is_active", active).Error
}
