package repository

import (
	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize 进度批量插入的分块大小
const insertBatchSize = 1000

type ProgressPair struct {
	StudentID uint
	TargetID  uint
}

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// ExistingLevelPairs 现有 (student, level) 对集合，同步引擎做差集用
func (r *ProgressRepository) ExistingLevelPairs() (map[ProgressPair]struct{}, error) {
	var rows []model.LevelProgress
	if err := r.DB.Select("student_id", "level_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	pairs := make(map[ProgressPair]struct{}, len(rows))
	for _, row := range rows {
		pairs[ProgressPair{StudentID: row.StudentID, TargetID: row.LevelID}] = struct{}{}
	}
	return pairs, nil
}

func (r *ProgressRepository) ExistingAchievementPairs() (map[ProgressPair]struct{}, error) {
	var rows []model.AchievementProgress
	if err := r.DB.Select("student_id", "achievement_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	pairs := make(map[ProgressPair]struct{}, len(rows))
	for _, row := range rows {
		pairs[ProgressPair{StudentID: row.StudentID, TargetID: row.AchievementID}] = struct{}{}
	}
	return pairs, nil
}

// InsertLevelProgress 幂等批量补行；并发触发下的重复插入靠 DO NOTHING 吞掉
func (r *ProgressRepository) InsertLevelProgress(tx *gorm.DB, rows []model.LevelProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, insertBatchSize).Error
}

func (r *ProgressRepository) InsertAchievementProgress(tx *gorm.DB, rows []model.AchievementProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, insertBatchSize).Error
}

// SetLevelUnlocked 按学生集合（可选单关卡）批量改 unlocked。
// 绝对赋值而不是读改写，多个写方并发时收敛到同一状态
func (r *ProgressRepository) SetLevelUnlocked(studentIDs []uint, levelID *uint, unlocked bool) error {
	if len(studentIDs) == 0 {
		return nil
	}
	q := r.DB.Model(&model.LevelProgress{}).Where("student_id IN ?", studentIDs)
	if levelID != nil {
		q = q.Where("level_id = ?", *levelID)
	}
	return q.Update("unlocked", unlocked).Error
}

// SetLevelUnlockedBySection 调度器路径：按 (section, level) 批量改
func (r *ProgressRepository) SetLevelUnlockedBySection(tx *gorm.DB, sectionID, levelID uint, unlocked bool) (int64, error) {
	result := tx.Model(&model.LevelProgress{}).
		Where("level_id = ?", levelID).
		Where("student_id IN (?)", tx.Model(&model.Student{}).Select("id").Where("section_id = ?", sectionID)).
		Update("unlocked", unlocked)
	return result.RowsAffected, result.Error
}

// SetLevelUnlockedAll 全局路径：levelID 为 0 时作用于全部关卡
func (r *ProgressRepository) SetLevelUnlockedAll(levelID uint, unlocked bool) error {
	q := r.DB.Model(&model.LevelProgress{}).Where("1 = 1")
	if levelID != 0 {
		q = q.Where("level_id = ?", levelID)
	}
	return q.Update("unlocked", unlocked).Error
}

// DeleteLevelRows / DeleteAchievementRows 定义被删时清掉孤儿进度行
func (r *ProgressRepository) DeleteLevelRows(tx *gorm.DB, levelID uint) error {
	return tx.Where("level_id = ?", levelID).Delete(&model.LevelProgress{}).Error
}

func (r *ProgressRepository) DeleteAchievementRows(tx *gorm.DB, achievementID uint) error {
	return tx.Where("achievement_id = ?", achievementID).Delete(&model.AchievementProgress{}).Error
}

func (r *ProgressRepository) SetAchievementActive(studentIDs []uint, achievementID *uint, active bool) error {
	if len(studentIDs) == 0 {
		return nil
	}
	q := r.DB.Model(&model.AchievementProgress{}).Where("student_id IN ?", studentIDs)
	if achievementID != nil {
		q = q.Where("achievement_id = ?", *achievementID)
	}
	return q.Update("is_active", active).Error
}

func (r *ProgressRepository) ListLevelsByStudent(studentID uint) ([]model.LevelProgress, error) {
	var rows []model.LevelProgress
	err := r.DB.Where("student_id = ?", studentID).Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListAchievementsByStudent(studentID uint) ([]model.AchievementProgress, error) {
	var rows []model.AchievementProgress
	err := r.DB.Where("student_id = ?", studentID).Find(&rows).Error
	return rows, err
}

// ListAllLevelProgress 排行榜的单次批量读（代替逐学生 N+1 查询）
func (r *ProgressRepository) ListAllLevelProgress() ([]model.LevelProgress, error) {
	var rows []model.LevelProgress
	err := r.DB.Select("student_id", "level_id", "best_time", "unlocked").Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListAllAchievementProgress() ([]model.AchievementProgress, error) {
	var rows []model.AchievementProgress
	err := r.DB.Select("student_id", "achievement_id", "unlocked").Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) GetOrCreateLevel(studentID, levelID uint) (*model.LevelProgress, error) {
	var row model.LevelProgress
	err := r.DB.Where(model.LevelProgress{StudentID: studentID, LevelID: levelID}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) GetOrCreateAchievement(studentID, achievementID uint) (*model.AchievementProgress, error) {
	var row model.AchievementProgress
	err := r.DB.Where(model.AchievementProgress{StudentID: studentID, AchievementID: achievementID}).
		Attrs(model.AchievementProgress{IsActive: true}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ApplyTimes 提交路径：current_time 直接覆盖，best_time 只增不减。
// 单条 UPDATE 里做条件比较，避免读改写竞态
func (r *ProgressRepository) ApplyTimes(studentID, levelID uint, currentTime, bestTime int) error {
	return r.DB.Model(&model.LevelProgress{}).
		Where("student_id = ? AND level_id = ?", studentID, levelID).
		Updates(map[string]interface{}{
			"current_time": currentTime,
			"best_time":    gorm.Expr("CASE WHEN best_time < ? THEN ? ELSE best_time END", bestTime, bestTime),
		}).Error
}

// UnlockAchievement 学生提交路径只允许 false→true
func (r *ProgressRepository) UnlockAchievement(studentID, achievementID uint) error {
	return r.DB.Model(&model.AchievementProgress{}).
		Where("student_id = ? AND achievement_id = ?", studentID, achievementID).
		Update("unlocked", true).Error
}

// ResetForStudents 清零指定学生的全部进度
func (r *ProgressRepository) ResetForStudents(studentIDs []uint) error {
	if len(studentIDs) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LevelProgress{}).
			Where("student_id IN ?", studentIDs).
			Updates(map[string]interface{}{"best_time": 0, "current_time": 0, "unlocked": false}).Error; err != nil {
			return err
		}
		return tx.Model(&model.AchievementProgress{}).
			Where("student_id IN ?", studentIDs).
			Updates(map[string]interface{}{"unlocked": false, "is_active": true}).Error
	})
}

// ResetAll 管理员重置全部进度
func (r *ProgressRepository) ResetAll() error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LevelProgress{}).
			Where("1 = 1").
			Updates(map[string]interface{}{"best_time": 0, "current_time": 0, "unlocked": false}).Error; err != nil {
			return err
		}
		return tx.Model(&model.AchievementProgress{}).
			Where("1 = 1").
			Updates(map[string]interface{}{"unlocked": false, "is_active": true}).Error
	})
}
