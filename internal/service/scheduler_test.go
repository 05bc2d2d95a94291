package service

import (
	"context"
	"testing"
	"time"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func newTestScheduler(f *fixture) *Scheduler {
	return NewScheduler(
		repository.NewStudentRepository(f.DB),
		f.scheduleRepo(),
		f.progressRepo(),
		f.DB,
		time.Minute,
	)
}

func sectionUnlockCount(t *testing.T, f *fixture, sectionID, levelID uint, unlocked bool) int64 {
	t.Helper()
	var count int64
	err := f.DB.Model(&model.LevelProgress{}).
		Where("level_id = ? AND unlocked = ?", levelID, unlocked).
		Where("student_id IN (?)", f.DB.Model(&model.Student{}).Select("id").Where("section_id = ?", sectionID)).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestSchedulerUnlocksWhenStartElapsed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.DB.Create(&model.SectionLevelSchedule{
		SectionID: f.CS3A.ID,
		LevelID:   f.Level1.ID,
		StartDate: &past,
	}).Error)

	newTestScheduler(f).RunPass(time.Now())

	// CS3A 两个学生解锁，排期行保留（窗口还没到期）
	require.EqualValues(t, 2, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, true))
	require.EqualValues(t, 2, sectionUnlockCount(t, f, f.IT1B.ID, f.Level1.ID, false))
	require.EqualValues(t, 1, countRows(t, f, &model.SectionLevelSchedule{}))
}

func TestSchedulerPendingDoesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	future := time.Now().Add(time.Hour)
	require.NoError(t, f.DB.Create(&model.SectionLevelSchedule{
		SectionID: f.CS3A.ID,
		LevelID:   f.Level1.ID,
		StartDate: &future,
	}).Error)

	newTestScheduler(f).RunPass(time.Now())

	require.EqualValues(t, 0, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, true))
	require.EqualValues(t, 1, countRows(t, f, &model.SectionLevelSchedule{}))
}

func TestSchedulerExpiresAndDeletesSchedule(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	// 先有一个已生效的窗口
	start := time.Now().Add(-2 * time.Hour)
	due := time.Now().Add(-time.Minute)
	require.NoError(t, f.DB.Create(&model.SectionLevelSchedule{
		SectionID: f.CS3A.ID,
		LevelID:   f.Level1.ID,
		StartDate: &start,
		DueDate:   &due,
	}).Error)
	require.NoError(t, f.progressRepo().SetLevelUnlocked([]uint{f.Alice.ID, f.Bob.ID}, &f.Level1.ID, true))

	newTestScheduler(f).RunPass(time.Now())

	// 到期：全部锁回，排期行删除
	require.EqualValues(t, 2, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, false))
	require.EqualValues(t, 0, countRows(t, f, &model.SectionLevelSchedule{}))
}

func TestSchedulerPassIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.DB.Create(&model.SectionLevelSchedule{
		SectionID: f.CS3A.ID,
		LevelID:   f.Level1.ID,
		StartDate: &past,
	}).Error)

	sched := newTestScheduler(f)
	sched.RunPass(time.Now())
	sched.RunPass(time.Now())

	require.EqualValues(t, 2, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, true))
	require.EqualValues(t, 1, countRows(t, f, &model.SectionLevelSchedule{}))
}

func TestSchedulerStartStop(t *testing.T) {
	f := newFixture(t)
	sched := newTestScheduler(f)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.False(t, sched.Running())
	sched.Start(ctx)
	require.True(t, sched.Running())

	// 重复启动是空操作
	sched.Start(ctx)

	sched.Stop()
	require.False(t, sched.Running())

	// 重复停止也不会卡死
	sched.Stop()
}
