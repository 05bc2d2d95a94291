package repository

import (
	"time"

	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
)

type ScheduleRepository struct {
	DB *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// ListBySections 调度器一轮评估要处理的全部排期
func (r *ScheduleRepository) ListBySections(sectionIDs []uint) ([]model.SectionLevelSchedule, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	var schedules []model.SectionLevelSchedule
	err := r.DB.Where("section_id IN ?", sectionIDs).Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) ListBySection(sectionID uint) ([]model.SectionLevelSchedule, error) {
	var schedules []model.SectionLevelSchedule
	err := r.DB.Preload("Level").Where("section_id = ?", sectionID).Find(&schedules).Error
	return schedules, err
}

// Upsert 按 (section, level) 取或建；已存在时仅更新给到的日期
func (r *ScheduleRepository) Upsert(tx *gorm.DB, sectionID, levelID uint, startDate, dueDate *time.Time) (*model.SectionLevelSchedule, error) {
	var sched model.SectionLevelSchedule
	err := tx.Where(model.SectionLevelSchedule{SectionID: sectionID, LevelID: levelID}).
		Attrs(model.SectionLevelSchedule{StartDate: startDate, DueDate: dueDate}).
		FirstOrCreate(&sched).Error
	if err != nil {
		return nil, err
	}

	changed := false
	if startDate != nil && (sched.StartDate == nil || !sched.StartDate.Equal(*startDate)) {
		sched.StartDate = startDate
		changed = true
	}
	if dueDate != nil && (sched.DueDate == nil || !sched.DueDate.Equal(*dueDate)) {
		sched.DueDate = dueDate
		changed = true
	}
	if changed {
		if err := tx.Save(&sched).Error; err != nil {
			return nil, err
		}
	}
	return &sched, nil
}

func (r *ScheduleRepository) Delete(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.SectionLevelSchedule{}, id).Error
}

// DeleteConflicting 教师手动锁/解锁前清掉同 (section, level) 的排期，
// 防止调度器之后把手动状态覆盖回去
func (r *ScheduleRepository) DeleteConflicting(sectionIDs []uint, levelID *uint) (int64, error) {
	if len(sectionIDs) == 0 {
		return 0, nil
	}
	q := r.DB.Where("section_id IN ?", sectionIDs)
	if levelID != nil {
		q = q.Where("level_id = ?", *levelID)
	}
	result := q.Delete(&model.SectionLevelSchedule{})
	return result.RowsAffected, result.Error
}

func (r *ScheduleRepository) CountBySection(sectionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SectionLevelSchedule{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	return count, err
}
