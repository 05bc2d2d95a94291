package service

import (
	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncService 保证每个 (student, level) 和 (student, achievement)
// 组合都恰好有一行进度。先做差集再批量补行，重复执行无副作用
type SyncService struct {
	StudentRepo     *repository.StudentRepository
	LevelRepo       *repository.LevelDefinitionRepository
	AchievementRepo *repository.AchievementDefinitionRepository
	ProgressRepo    *repository.ProgressRepository
	DB              *gorm.DB
}

func NewSyncService(
	studentRepo *repository.StudentRepository,
	levelRepo *repository.LevelDefinitionRepository,
	achievementRepo *repository.AchievementDefinitionRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *SyncService {
	return &SyncService{
		StudentRepo:     studentRepo,
		LevelRepo:       levelRepo,
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		DB:              db,
	}
}

// SyncAll 全量同步：所有学生 × 所有定义
func (s *SyncService) SyncAll() error {
	studentIDs, err := s.StudentRepo.ListIDs()
	if err != nil {
		return err
	}
	return s.SyncStudents(studentIDs)
}

// SyncStudents 只同步给定学生（教师注册新生时走这条路）。
// 不碰已有行的 best_time / unlocked
func (s *SyncService) SyncStudents(studentIDs []uint) error {
	if len(studentIDs) == 0 {
		return nil
	}

	levelIDs, err := s.LevelRepo.IDs()
	if err != nil {
		return err
	}
	achievementIDs, err := s.AchievementRepo.IDs()
	if err != nil {
		return err
	}

	existingLevels, err := s.ProgressRepo.ExistingLevelPairs()
	if err != nil {
		return err
	}
	existingAchievements, err := s.ProgressRepo.ExistingAchievementPairs()
	if err != nil {
		return err
	}

	var newLevelRows []model.LevelProgress
	var newAchievementRows []model.AchievementProgress

	for _, studentID := range studentIDs {
		for _, levelID := range levelIDs {
			key := repository.ProgressPair{StudentID: studentID, TargetID: levelID}
			if _, ok := existingLevels[key]; !ok {
				newLevelRows = append(newLevelRows, model.LevelProgress{
					StudentID: studentID,
					LevelID:   levelID,
				})
			}
		}
		for _, achievementID := range achievementIDs {
			key := repository.ProgressPair{StudentID: studentID, TargetID: achievementID}
			if _, ok := existingAchievements[key]; !ok {
				newAchievementRows = append(newAchievementRows, model.AchievementProgress{
					StudentID:     studentID,
					AchievementID: achievementID,
					IsActive:      true,
				})
			}
		}
	}

	if len(newLevelRows) == 0 && len(newAchievementRows) == 0 {
		return nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.InsertLevelProgress(tx, newLevelRows); err != nil {
			return err
		}
		return s.ProgressRepo.InsertAchievementProgress(tx, newAchievementRows)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("progress sync completed",
		zap.Int("students", len(studentIDs)),
		zap.Int("new_level_rows", len(newLevelRows)),
		zap.Int("new_achievement_rows", len(newAchievementRows)))
	return nil
}

// SyncAllAsync 后台触发全量同步，不阻塞请求。
// 大名册 × 多定义的笛卡尔积插入可能很慢
func (s *SyncService) SyncAllAsync() {
	go func() {
		if err := s.SyncAll(); err != nil {
			logger.Log.Error("background progress sync failed", zap.Error(err))
		}
	}()
}

// SyncStudentsAsync 后台同步指定学生
func (s *SyncService) SyncStudentsAsync(studentIDs []uint) {
	go func() {
		if err := s.SyncStudents(studentIDs); err != nil {
			logger.Log.Error("background progress sync failed",
				zap.Int("students", len(studentIDs)), zap.Error(err))
		}
	}()
}
