package service

import (
	"testing"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func newCatalogService(f *fixture) *CatalogService {
	return NewCatalogService(
		repository.NewLevelDefinitionRepository(f.DB),
		repository.NewAchievementDefinitionRepository(f.DB),
		f.progressRepo(),
		f.syncService(),
		nil, // 无 redis，缓存失效是空操作
		f.DB,
	)
}

func TestCreateLevelDerivesSortOrder(t *testing.T) {
	f := newFixture(t)
	svc := newCatalogService(f)

	level, created, err := svc.CreateLevel("Level7", false)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 7, level.SortOrder)

	// 同名重复创建是无操作
	again, created, err := svc.CreateLevel("Level7", true)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, level.ID, again.ID)

	odd, created, err := svc.CreateLevel("BossRush", false)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 999, odd.SortOrder)
}

func TestDeleteLevelCascadesProgressRows(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newCatalogService(f)

	require.NoError(t, svc.DeleteLevel("Level1"))

	var defCount, rowCount int64
	require.NoError(t, f.DB.Model(&model.LevelDefinition{}).Where("name = ?", "Level1").Count(&defCount).Error)
	require.NoError(t, f.DB.Model(&model.LevelProgress{}).Where("level_id = ?", f.Level1.ID).Count(&rowCount).Error)
	require.Zero(t, defCount)
	require.Zero(t, rowCount, "progress rows must go with the definition")
}

func TestGlobalLevelUnlockUpdatesDefinitionAndRows(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newCatalogService(f)

	require.NoError(t, svc.SetLevelUnlockedGlobal("Level2", true))

	var def model.LevelDefinition
	require.NoError(t, f.DB.Where("name = ?", "Level2").First(&def).Error)
	require.True(t, def.Unlocked)

	var unlocked int64
	require.NoError(t, f.DB.Model(&model.LevelProgress{}).
		Where("level_id = ? AND unlocked = ?", f.Level2.ID, true).
		Count(&unlocked).Error)
	require.EqualValues(t, 4, unlocked, "all four students get the row flipped")
}

func TestResetAllProgress(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newCatalogService(f)

	require.NoError(t, f.progressRepo().ApplyTimes(f.Alice.ID, f.Level1.ID, 40, 60))
	require.NoError(t, f.progressRepo().UnlockAchievement(f.Alice.ID, f.FirstSteps.ID))

	require.NoError(t, svc.ResetAllProgress())

	var row model.LevelProgress
	require.NoError(t, f.DB.Where("student_id = ? AND level_id = ?", f.Alice.ID, f.Level1.ID).First(&row).Error)
	require.Zero(t, row.BestTime)
	require.Zero(t, row.CurrentTime)

	var ach model.AchievementProgress
	require.NoError(t, f.DB.Where("student_id = ? AND achievement_id = ?", f.Alice.ID, f.FirstSteps.ID).First(&ach).Error)
	require.False(t, ach.Unlocked)
}
