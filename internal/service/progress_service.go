package service

import (
	"errors"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Unity 端 JsonUtility 反序列化需要的 __type 包装串，不能改动
const (
	levelDictType = "System.Collections.Generic.Dictionary`2[[System.String, mscorlib, " +
		"Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089]," +
		"[LevelData, Assembly-CSharp, Version=0.0.0.0, Culture=neutral, " +
		"PublicKeyToken=null]],mscorlib"
	achievementDictType = "System.Collections.Generic.Dictionary`2[[System.String, mscorlib, " +
		"Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089]," +
		"[AchievementSaveData, Assembly-CSharp, Version=0.0.0.0, Culture=neutral, " +
		"PublicKeyToken=null]],mscorlib"
)

// LevelEntry / AchievementEntry 游戏端存档里的单条记录
type LevelEntry struct {
	BestTime    int  `json:"bestTime"`
	CurrentTime int  `json:"currentTime"`
	Unlocked    bool `json:"unlocked"`
}

type AchievementEntry struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Unlocked    bool   `json:"unlocked"`
}

// TypedDict Unity Dictionary 的 JSON 包装
type TypedDict[T any] struct {
	Type  string       `json:"__type"`
	Value map[string]T `json:"value"`
}

// GameProgress 游戏端完整存档
type GameProgress struct {
	Levels       TypedDict[LevelEntry]       `json:"levels"`
	Achievements TypedDict[AchievementEntry] `json:"achievements"`
}

type ProgressService struct {
	StudentRepo     *repository.StudentRepository
	LevelRepo       *repository.LevelDefinitionRepository
	AchievementRepo *repository.AchievementDefinitionRepository
	ProgressRepo    *repository.ProgressRepository
}

func NewProgressService(
	studentRepo *repository.StudentRepository,
	levelRepo *repository.LevelDefinitionRepository,
	achievementRepo *repository.AchievementDefinitionRepository,
	progressRepo *repository.ProgressRepository,
) *ProgressService {
	return &ProgressService{
		StudentRepo:     studentRepo,
		LevelRepo:       levelRepo,
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
	}
}

// ExportGameProgress 按关卡名/成就码导出存档。
// 没有进度行的关卡回落到定义上的默认 unlocked；
// 全局停用的成就整条省略，学生侧解锁状态也不带出去
func (s *ProgressService) ExportGameProgress(studentID uint) (*GameProgress, error) {
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}

	levelRows, err := s.ProgressRepo.ListLevelsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	byLevel := make(map[uint]*model.LevelProgress, len(levelRows))
	for i := range levelRows {
		byLevel[levelRows[i].LevelID] = &levelRows[i]
	}

	achievementRows, err := s.ProgressRepo.ListAchievementsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[uint]*model.AchievementProgress, len(achievementRows))
	for i := range achievementRows {
		byAchievement[achievementRows[i].AchievementID] = &achievementRows[i]
	}

	levels, err := s.LevelRepo.List()
	if err != nil {
		return nil, err
	}
	activeAchievements, err := s.AchievementRepo.ListActive()
	if err != nil {
		return nil, err
	}

	out := &GameProgress{
		Levels:       TypedDict[LevelEntry]{Type: levelDictType, Value: make(map[string]LevelEntry, len(levels))},
		Achievements: TypedDict[AchievementEntry]{Type: achievementDictType, Value: make(map[string]AchievementEntry, len(activeAchievements))},
	}

	for _, lvl := range levels {
		entry := LevelEntry{Unlocked: lvl.Unlocked}
		if p := byLevel[lvl.ID]; p != nil {
			entry = LevelEntry{BestTime: p.BestTime, CurrentTime: p.CurrentTime, Unlocked: p.Unlocked}
		}
		out.Levels.Value[lvl.Name] = entry
	}

	for _, ach := range activeAchievements {
		entry := AchievementEntry{Title: ach.Title, Description: ach.Description}
		if p := byAchievement[ach.ID]; p != nil {
			entry.Unlocked = p.Unlocked
		}
		out.Achievements.Value[ach.Code] = entry
	}
	return out, nil
}

// UpdateGameProgress 游戏端提交存档。
// best_time 只增不减，成就只允许 false→true；
// 未知的关卡名/成就码和负数时间跳过，不让单条坏数据拒掉整包
func (s *ProgressService) UpdateGameProgress(studentID uint, payload *GameProgress) error {
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStudentNotFound
		}
		return err
	}

	for name, entry := range payload.Levels.Value {
		if entry.CurrentTime < 0 || entry.BestTime < 0 {
			continue
		}
		level, err := s.LevelRepo.FindByName(name)
		if err != nil {
			logger.Log.Warn("progress update for unknown level",
				zap.Uint("student_id", studentID), zap.String("level", name))
			continue
		}
		if _, err := s.ProgressRepo.GetOrCreateLevel(studentID, level.ID); err != nil {
			return err
		}
		if err := s.ProgressRepo.ApplyTimes(studentID, level.ID, entry.CurrentTime, entry.BestTime); err != nil {
			return err
		}
	}

	for code, entry := range payload.Achievements.Value {
		if !entry.Unlocked {
			continue
		}
		achievement, err := s.AchievementRepo.FindByCode(code)
		if err != nil {
			logger.Log.Warn("progress update for unknown achievement",
				zap.Uint("student_id", studentID), zap.String("code", code))
			continue
		}
		if _, err := s.ProgressRepo.GetOrCreateAchievement(studentID, achievement.ID); err != nil {
			return err
		}
		if err := s.ProgressRepo.UnlockAchievement(studentID, achievement.ID); err != nil {
			return err
		}
	}
	return nil
}
