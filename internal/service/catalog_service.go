package service

import (
	"context"
	"strings"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService 关卡/成就定义目录的管理操作（管理员侧）。
// 新建定义后必须触发一次异步补行同步，否则已有学生看不到新条目
type CatalogService struct {
	LevelRepo       *repository.LevelDefinitionRepository
	AchievementRepo *repository.AchievementDefinitionRepository
	ProgressRepo    *repository.ProgressRepository
	Sync            *SyncService
	Ranking         *RankingService
	DB              *gorm.DB
}

func NewCatalogService(
	levelRepo *repository.LevelDefinitionRepository,
	achievementRepo *repository.AchievementDefinitionRepository,
	progressRepo *repository.ProgressRepository,
	sync *SyncService,
	ranking *RankingService,
	db *gorm.DB,
) *CatalogService {
	return &CatalogService{
		LevelRepo:       levelRepo,
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		Sync:            sync,
		Ranking:         ranking,
		DB:              db,
	}
}

// invalidateRankings 批量改动进度后让段位均分缓存过期
func (s *CatalogService) invalidateRankings() {
	if s.Ranking != nil {
		s.Ranking.InvalidateSectionCache(context.Background())
	}
}

func (s *CatalogService) ListLevels() ([]model.LevelDefinition, error) {
	return s.LevelRepo.List()
}

func (s *CatalogService) ListAchievements() ([]model.AchievementDefinition, error) {
	return s.AchievementRepo.List()
}

// CreateLevel 按名字 get-or-create；sort_order 由名字推导。
// 新建成功才触发同步，重复创建是无操作
func (s *CatalogService) CreateLevel(name string, unlocked bool) (*model.LevelDefinition, bool, error) {
	level, created, err := s.LevelRepo.GetOrCreate(strings.TrimSpace(name), unlocked)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Log.Info("level definition created", zap.String("name", level.Name))
		s.Sync.SyncAllAsync()
	}
	return level, created, nil
}

func (s *CatalogService) CreateAchievement(code, title, description string) (*model.AchievementDefinition, bool, error) {
	achievement, created, err := s.AchievementRepo.GetOrCreate(strings.TrimSpace(code), title, description)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Log.Info("achievement definition created", zap.String("code", achievement.Code))
		s.Sync.SyncAllAsync()
	}
	return achievement, created, nil
}

// DeleteLevel 定义和进度行一个事务里一起删，不留孤儿行
func (s *CatalogService) DeleteLevel(name string) error {
	level, err := s.LevelRepo.FindByName(name)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.DeleteLevelRows(tx, level.ID); err != nil {
			return err
		}
		return tx.Delete(&model.LevelDefinition{}, level.ID).Error
	})
}

func (s *CatalogService) DeleteAchievement(code string) error {
	achievement, err := s.AchievementRepo.FindByCode(code)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.DeleteAchievementRows(tx, achievement.ID); err != nil {
			return err
		}
		return tx.Delete(&model.AchievementDefinition{}, achievement.ID).Error
	})
}

// SetLevelUnlockedGlobal 全局开/关某个关卡：改定义默认值，
// 同时把所有学生的进度行一起改掉
func (s *CatalogService) SetLevelUnlockedGlobal(name string, unlocked bool) error {
	level, err := s.LevelRepo.FindByName(name)
	if err != nil {
		return err
	}
	level.Unlocked = unlocked
	if err := s.LevelRepo.Save(level); err != nil {
		return err
	}
	if err := s.ProgressRepo.SetLevelUnlockedAll(level.ID, unlocked); err != nil {
		return err
	}
	s.invalidateRankings()
	return nil
}

// SetAllLevelsUnlocked 全部关卡一键开/关
func (s *CatalogService) SetAllLevelsUnlocked(unlocked bool) error {
	if err := s.LevelRepo.SetUnlockedAll(unlocked); err != nil {
		return err
	}
	if err := s.ProgressRepo.SetLevelUnlockedAll(0, unlocked); err != nil {
		return err
	}
	s.invalidateRankings()
	return nil
}

// SetAchievementActiveGlobal 全局 kill-switch：停用后所有学生的
// 导出里该成就整条消失，与每学生 is_active 无关
func (s *CatalogService) SetAchievementActiveGlobal(code string, active bool) error {
	achievement, err := s.AchievementRepo.FindByCode(code)
	if err != nil {
		return err
	}
	achievement.IsActive = active
	return s.AchievementRepo.Save(achievement)
}

func (s *CatalogService) SetAllAchievementsActive(active bool) error {
	return s.AchievementRepo.SetActiveAll(active)
}

// ResetAllProgress 管理员全量重置
func (s *CatalogService) ResetAllProgress() error {
	if err := s.ProgressRepo.ResetAll(); err != nil {
		return err
	}
	s.invalidateRankings()
	return nil
}

// ForceSync 管理端手动补行（CLI 和 force-sync 接口共用）
func (s *CatalogService) ForceSync() error {
	return s.Sync.SyncAll()
}
