package service

import (
	"context"
	"time"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeacherProgressService 教师作用域内的批量锁/解锁操作。
// 关键约定：任何手动锁/解锁都先删掉同 (section, level) 的排期行，
// 否则调度器下一轮会把教师的手动状态盖回去
type TeacherProgressService struct {
	TeacherRepo     *repository.TeacherRepository
	StudentRepo     *repository.StudentRepository
	LevelRepo       *repository.LevelDefinitionRepository
	AchievementRepo *repository.AchievementDefinitionRepository
	ProgressRepo    *repository.ProgressRepository
	ScheduleRepo    *repository.ScheduleRepository
	Notifications   *NotificationService
	Ranking         *RankingService
	DB              *gorm.DB
}

func NewTeacherProgressService(
	teacherRepo *repository.TeacherRepository,
	studentRepo *repository.StudentRepository,
	levelRepo *repository.LevelDefinitionRepository,
	achievementRepo *repository.AchievementDefinitionRepository,
	progressRepo *repository.ProgressRepository,
	scheduleRepo *repository.ScheduleRepository,
	notifications *NotificationService,
	ranking *RankingService,
	db *gorm.DB,
) *TeacherProgressService {
	return &TeacherProgressService{
		TeacherRepo:     teacherRepo,
		StudentRepo:     studentRepo,
		LevelRepo:       levelRepo,
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		ScheduleRepo:    scheduleRepo,
		Notifications:   notifications,
		Ranking:         ranking,
		DB:              db,
	}
}

func (s *TeacherProgressService) invalidateRankings() {
	if s.Ranking != nil {
		s.Ranking.InvalidateSectionCache(context.Background())
	}
}

// ActionScope 一次操作的学生范围：教师全部所带段位，或其中一个段位
type ActionScope struct {
	TeacherID  uint
	SectionID  *uint // nil = 全部所带段位
	sectionIDs []uint
	studentIDs []uint
}

// ResolveScope 校验段位归属并解析出学生集合。
// 指定了不属于该教师的段位直接拒绝，不做任何写入
func (s *TeacherProgressService) ResolveScope(teacherID uint, sectionID *uint) (*ActionScope, error) {
	handledIDs, err := s.TeacherRepo.HandledSectionIDs(teacherID)
	if err != nil {
		return nil, err
	}

	sectionIDs := handledIDs
	if sectionID != nil {
		found := false
		for _, id := range handledIDs {
			if id == *sectionID {
				found = true
				break
			}
		}
		if !found {
			return nil, util.ErrSectionNotHandled
		}
		sectionIDs = []uint{*sectionID}
	}

	studentIDs, err := s.StudentRepo.ListIDsBySections(sectionIDs)
	if err != nil {
		return nil, err
	}

	return &ActionScope{
		TeacherID:  teacherID,
		SectionID:  sectionID,
		sectionIDs: sectionIDs,
		studentIDs: studentIDs,
	}, nil
}

// UnlockLevels 解锁范围内学生的关卡；levelName 为空时解锁全部关卡
func (s *TeacherProgressService) UnlockLevels(scope *ActionScope, levelName string) error {
	return s.setLevels(scope, levelName, true)
}

func (s *TeacherProgressService) LockLevels(scope *ActionScope, levelName string) error {
	return s.setLevels(scope, levelName, false)
}

func (s *TeacherProgressService) setLevels(scope *ActionScope, levelName string, unlocked bool) error {
	var levelID *uint
	if levelName != "" {
		level, err := s.LevelRepo.FindByName(levelName)
		if err != nil {
			return err
		}
		levelID = &level.ID
	}

	// 手动覆盖优先于自动排期
	cleared, err := s.ScheduleRepo.DeleteConflicting(scope.sectionIDs, levelID)
	if err != nil {
		return err
	}
	if cleared > 0 {
		logger.Log.Info("manual override cleared schedules",
			zap.Uint("teacher_id", scope.TeacherID),
			zap.Int64("schedules", cleared))
	}

	if err := s.ProgressRepo.SetLevelUnlocked(scope.studentIDs, levelID, unlocked); err != nil {
		return err
	}
	s.invalidateRankings()

	if unlocked {
		name := levelName
		if name == "" {
			name = "All Levels"
		}
		s.Notifications.NotifyLevelUnlocked(scope.TeacherID, scope.studentIDs, name, nil)
	}
	return nil
}

// EnableAchievements / DisableAchievements 成就的段位级开关
func (s *TeacherProgressService) EnableAchievements(scope *ActionScope) error {
	return s.ProgressRepo.SetAchievementActive(scope.studentIDs, nil, true)
}

func (s *TeacherProgressService) DisableAchievements(scope *ActionScope) error {
	return s.ProgressRepo.SetAchievementActive(scope.studentIDs, nil, false)
}

// SetAchievementActive 单个成就的段位级开关
func (s *TeacherProgressService) SetAchievementActive(scope *ActionScope, code string, active bool) error {
	achievement, err := s.AchievementRepo.FindByCode(code)
	if err != nil {
		return err
	}
	return s.ProgressRepo.SetAchievementActive(scope.studentIDs, &achievement.ID, active)
}

// ValidateScheduleDates 排期窗口校验：due 不能早于 start；
// 同一天时 due 不能早于等于 start（避免零长度窗口）
func ValidateScheduleDates(startDate, dueDate *time.Time) error {
	if startDate == nil || dueDate == nil {
		return nil
	}
	if dueDate.Before(*startDate) {
		return util.ErrScheduleDueBeforeStart
	}
	sameDay := startDate.Year() == dueDate.Year() && startDate.YearDay() == dueDate.YearDay()
	if sameDay && !dueDate.After(*startDate) {
		return util.ErrScheduleSameDayOrder
	}
	return nil
}

// UnlockLevelWithSchedule 立即解锁 + 建/更新排期窗口。
// 校验失败整个操作不落任何写入
func (s *TeacherProgressService) UnlockLevelWithSchedule(scope *ActionScope, levelName string, sectionID uint, startDate, dueDate *time.Time) error {
	ok, err := s.TeacherRepo.HandlesSection(scope.TeacherID, sectionID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrSectionNotHandled
	}

	level, err := s.LevelRepo.FindByName(levelName)
	if err != nil {
		return err
	}

	if err := ValidateScheduleDates(startDate, dueDate); err != nil {
		return err
	}

	if startDate == nil {
		now := time.Now()
		startDate = &now
	}

	sectionStudents, err := s.StudentRepo.ListIDsBySections([]uint{sectionID})
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ProgressRepo.SetLevelUnlockedBySection(tx, sectionID, level.ID, true); err != nil {
			return err
		}
		_, err := s.ScheduleRepo.Upsert(tx, sectionID, level.ID, startDate, dueDate)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidateRankings()
	s.Notifications.NotifyLevelUnlocked(scope.TeacherID, sectionStudents, levelName, dueDate)
	return nil
}

// SectionProgressOverview 段位的关卡/成就当前状态（进度控制页用）
type SectionProgressOverview struct {
	Levels       []SectionLevelState          `json:"levels"`
	Achievements []SectionAchievementState    `json:"achievements"`
	Schedules    []model.SectionLevelSchedule `json:"schedules"`
}

type SectionLevelState struct {
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

type SectionAchievementState struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	IsActive bool   `json:"isActive"`
}

func (s *TeacherProgressService) SectionOverview(teacherID, sectionID uint) (*SectionProgressOverview, error) {
	ok, err := s.TeacherRepo.HandlesSection(teacherID, sectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrSectionNotHandled
	}

	studentIDs, err := s.StudentRepo.ListIDsBySections([]uint{sectionID})
	if err != nil {
		return nil, err
	}

	levels, err := s.LevelRepo.List()
	if err != nil {
		return nil, err
	}
	achievements, err := s.AchievementRepo.List()
	if err != nil {
		return nil, err
	}
	schedules, err := s.ScheduleRepo.ListBySection(sectionID)
	if err != nil {
		return nil, err
	}

	overview := &SectionProgressOverview{Schedules: schedules}

	levelRows := map[uint]bool{}
	achievementRows := map[uint]bool{}
	if len(studentIDs) > 0 {
		var lps []model.LevelProgress
		if err := s.DB.Where("student_id IN ? AND unlocked = ?", studentIDs, true).
			Select("level_id").Find(&lps).Error; err != nil {
			return nil, err
		}
		for _, lp := range lps {
			levelRows[lp.LevelID] = true
		}
		var aps []model.AchievementProgress
		if err := s.DB.Where("student_id IN ? AND is_active = ?", studentIDs, true).
			Select("achievement_id").Find(&aps).Error; err != nil {
			return nil, err
		}
		for _, ap := range aps {
			achievementRows[ap.AchievementID] = true
		}
	}

	for _, lvl := range levels {
		overview.Levels = append(overview.Levels, SectionLevelState{
			Name:     lvl.Name,
			Unlocked: levelRows[lvl.ID],
		})
	}
	for _, ach := range achievements {
		overview.Achievements = append(overview.Achievements, SectionAchievementState{
			Code:     ach.Code,
			Title:    ach.Title,
			IsActive: achievementRows[ach.ID],
		})
	}
	return overview, nil
}

// ResetProgress 清零范围内学生的全部进度
func (s *TeacherProgressService) ResetProgress(scope *ActionScope) error {
	if err := s.ProgressRepo.ResetForStudents(scope.studentIDs); err != nil {
		return err
	}
	s.invalidateRankings()
	return nil
}

// StudentIDs 范围内学生ID（排行榜 limit_to_students 用）
func (scope *ActionScope) StudentIDs() []uint {
	return scope.studentIDs
}

// SectionIDs 范围内段位ID
func (scope *ActionScope) SectionIDs() []uint {
	return scope.sectionIDs
}
