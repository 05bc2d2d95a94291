package service

import (
	"testing"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func newGameProgressService(f *fixture) *ProgressService {
	return NewProgressService(
		repository.NewStudentRepository(f.DB),
		repository.NewLevelDefinitionRepository(f.DB),
		repository.NewAchievementDefinitionRepository(f.DB),
		f.progressRepo(),
	)
}

func TestExportFallsBackToDefinitionDefault(t *testing.T) {
	f := newFixture(t)
	svc := newGameProgressService(f)

	// 没跑同步：导出仍列出全部关卡，unlocked 取定义默认值
	out, err := svc.ExportGameProgress(f.Alice.ID)
	require.NoError(t, err)
	require.Len(t, out.Levels.Value, 3)
	require.True(t, out.Levels.Value["Tutorial"].Unlocked)
	require.False(t, out.Levels.Value["Level1"].Unlocked)
	require.NotEmpty(t, out.Levels.Type)
}

func TestExportOmitsInactiveAchievement(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newGameProgressService(f)

	// 学生已解锁 ach_001，然后全局停用
	require.NoError(t, f.progressRepo().UnlockAchievement(f.Alice.ID, f.FirstSteps.ID))
	require.NoError(t, f.DB.Model(&model.AchievementDefinition{}).
		Where("id = ?", f.FirstSteps.ID).
		Update("is_active", false).Error)

	out, err := svc.ExportGameProgress(f.Alice.ID)
	require.NoError(t, err)
	_, present := out.Achievements.Value["ach_001"]
	require.False(t, present, "globally inactive achievement must be omitted entirely")
	require.Contains(t, out.Achievements.Value, "ach_002")
}

func TestUpdateKeepsBestTimeMonotonic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newGameProgressService(f)

	payload := &GameProgress{}
	payload.Levels.Value = map[string]LevelEntry{
		"Level1": {BestTime: 50, CurrentTime: 50},
	}
	require.NoError(t, svc.UpdateGameProgress(f.Alice.ID, payload))

	// 更差的成绩不回退 best_time，current_time 照常覆盖
	payload.Levels.Value = map[string]LevelEntry{
		"Level1": {BestTime: 30, CurrentTime: 30},
	}
	require.NoError(t, svc.UpdateGameProgress(f.Alice.ID, payload))

	var row model.LevelProgress
	require.NoError(t, f.DB.Where("student_id = ? AND level_id = ?", f.Alice.ID, f.Level1.ID).First(&row).Error)
	require.Equal(t, 50, row.BestTime)
	require.Equal(t, 30, row.CurrentTime)
}

func TestUpdateAchievementUnlockIsOneWay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newGameProgressService(f)

	payload := &GameProgress{}
	payload.Achievements.Value = map[string]AchievementEntry{
		"ach_001": {Unlocked: true},
	}
	require.NoError(t, svc.UpdateGameProgress(f.Alice.ID, payload))

	// 提交 unlocked=false 不会锁回去
	payload.Achievements.Value = map[string]AchievementEntry{
		"ach_001": {Unlocked: false},
	}
	require.NoError(t, svc.UpdateGameProgress(f.Alice.ID, payload))

	var row model.AchievementProgress
	require.NoError(t, f.DB.Where("student_id = ? AND achievement_id = ?", f.Alice.ID, f.FirstSteps.ID).First(&row).Error)
	require.True(t, row.Unlocked)
}

func TestUpdateSkipsUnknownAndNegativeEntries(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newGameProgressService(f)

	payload := &GameProgress{}
	payload.Levels.Value = map[string]LevelEntry{
		"NoSuchLevel": {BestTime: 99, CurrentTime: 99},
		"Level1":      {BestTime: -5, CurrentTime: 10},
		"Level2":      {BestTime: 42, CurrentTime: 42},
	}
	require.NoError(t, svc.UpdateGameProgress(f.Alice.ID, payload))

	var level1 model.LevelProgress
	require.NoError(t, f.DB.Where("student_id = ? AND level_id = ?", f.Alice.ID, f.Level1.ID).First(&level1).Error)
	require.Zero(t, level1.BestTime, "negative submission must be skipped")

	var level2 model.LevelProgress
	require.NoError(t, f.DB.Where("student_id = ? AND level_id = ?", f.Alice.ID, f.Level2.ID).First(&level2).Error)
	require.Equal(t, 42, level2.BestTime)
}
