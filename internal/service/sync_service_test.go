package service

import (
	"testing"

	"thinkjava_backend/internal/model"

	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, f *fixture, dst interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.DB.Model(dst).Count(&count).Error)
	return count
}

func TestSyncAllFillsCrossProduct(t *testing.T) {
	f := newFixture(t)
	svc := f.syncService()

	require.NoError(t, svc.SyncAll())

	// 4 学生 × 3 关卡 / 2 成就
	require.EqualValues(t, 12, countRows(t, f, &model.LevelProgress{}))
	require.EqualValues(t, 8, countRows(t, f, &model.AchievementProgress{}))
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.syncService()

	require.NoError(t, svc.SyncAll())
	levelCount := countRows(t, f, &model.LevelProgress{})
	achievementCount := countRows(t, f, &model.AchievementProgress{})

	// 第二次不新增也不报错
	require.NoError(t, svc.SyncAll())
	require.Equal(t, levelCount, countRows(t, f, &model.LevelProgress{}))
	require.Equal(t, achievementCount, countRows(t, f, &model.AchievementProgress{}))
}

func TestSyncDoesNotTouchExistingRows(t *testing.T) {
	f := newFixture(t)
	svc := f.syncService()
	require.NoError(t, svc.SyncAll())

	require.NoError(t, f.progressRepo().ApplyTimes(f.Alice.ID, f.Level1.ID, 40, 60))
	require.NoError(t, svc.SyncAll())

	var row model.LevelProgress
	require.NoError(t, f.DB.Where("student_id = ? AND level_id = ?", f.Alice.ID, f.Level1.ID).First(&row).Error)
	require.Equal(t, 60, row.BestTime)
	require.Equal(t, 40, row.CurrentTime)
}

func TestSyncSubsetOnlyFillsGivenStudents(t *testing.T) {
	f := newFixture(t)
	svc := f.syncService()

	require.NoError(t, svc.SyncStudents([]uint{f.Alice.ID}))

	require.EqualValues(t, 3, countRows(t, f, &model.LevelProgress{}))
	require.EqualValues(t, 2, countRows(t, f, &model.AchievementProgress{}))

	// 后补全量，幂等地填满剩下的组合
	require.NoError(t, svc.SyncAll())
	require.EqualValues(t, 12, countRows(t, f, &model.LevelProgress{}))
}
