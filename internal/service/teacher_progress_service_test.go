package service

import (
	"testing"
	"time"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func newOverrideService(f *fixture) *TeacherProgressService {
	return NewTeacherProgressService(
		repository.NewTeacherRepository(f.DB),
		repository.NewStudentRepository(f.DB),
		repository.NewLevelDefinitionRepository(f.DB),
		repository.NewAchievementDefinitionRepository(f.DB),
		f.progressRepo(),
		f.scheduleRepo(),
		NewNotificationService(repository.NewNotificationRepository(f.DB)),
		nil, // 无 redis，缓存失效是空操作
		f.DB,
	)
}

func TestResolveScopeRejectsForeignSection(t *testing.T) {
	f := newFixture(t)
	svc := newOverrideService(f)

	// IT1B 不归这位教师带
	_, err := svc.ResolveScope(f.Teacher.ID, &f.IT1B.ID)
	require.ErrorIs(t, err, util.ErrSectionNotHandled)

	scope, err := svc.ResolveScope(f.Teacher.ID, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{f.Alice.ID, f.Bob.ID}, scope.StudentIDs())
}

func TestManualLockClearsSchedule(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newOverrideService(f)

	start := time.Now().Add(-time.Hour)
	require.NoError(t, f.DB.Create(&model.SectionLevelSchedule{
		SectionID: f.CS3A.ID,
		LevelID:   f.Level2.ID,
		StartDate: &start,
	}).Error)

	scope, err := svc.ResolveScope(f.Teacher.ID, &f.CS3A.ID)
	require.NoError(t, err)
	require.NoError(t, svc.LockLevels(scope, "Level2"))

	// 排期行必须被清掉，否则下一轮调度会把锁盖回去
	var count int64
	require.NoError(t, f.DB.Model(&model.SectionLevelSchedule{}).
		Where("section_id = ? AND level_id = ?", f.CS3A.ID, f.Level2.ID).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestUnlockNotifiesStudents(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newOverrideService(f)

	scope, err := svc.ResolveScope(f.Teacher.ID, nil)
	require.NoError(t, err)
	require.NoError(t, svc.UnlockLevels(scope, "Level1"))

	var notifications []model.Notification
	require.NoError(t, f.DB.Find(&notifications).Error)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		require.Equal(t, model.RoleStudent, n.RecipientRole)
		require.Equal(t, f.Teacher.ID, n.SenderID)
	}
}

func TestValidateScheduleDates(t *testing.T) {
	day := func(y int, m time.Month, d, hour int) *time.Time {
		ts := time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
		return &ts
	}

	tests := []struct {
		name    string
		start   *time.Time
		due     *time.Time
		wantErr error
	}{
		{"nil dates ok", nil, nil, nil},
		{"due after start ok", day(2026, 3, 1, 8), day(2026, 3, 8, 8), nil},
		{"due before start", day(2026, 3, 8, 8), day(2026, 3, 1, 8), util.ErrScheduleDueBeforeStart},
		{"same day due after ok", day(2026, 3, 1, 8), day(2026, 3, 1, 17), nil},
		{"same day due equal", day(2026, 3, 1, 8), day(2026, 3, 1, 8), util.ErrScheduleSameDayOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScheduleDates(tt.start, tt.due)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUnlockWithScheduleValidationAbortsCleanly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newOverrideService(f)

	scope, err := svc.ResolveScope(f.Teacher.ID, nil)
	require.NoError(t, err)

	start := time.Now().Add(48 * time.Hour)
	due := time.Now().Add(24 * time.Hour)
	err = svc.UnlockLevelWithSchedule(scope, "Level1", f.CS3A.ID, &start, &due)
	require.ErrorIs(t, err, util.ErrScheduleDueBeforeStart)

	// 校验失败不留任何写入
	require.EqualValues(t, 0, countRows(t, f, &model.SectionLevelSchedule{}))
	require.EqualValues(t, 0, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, true))
}

func TestUnlockWithScheduleCreatesWindow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newOverrideService(f)

	scope, err := svc.ResolveScope(f.Teacher.ID, nil)
	require.NoError(t, err)

	due := time.Now().Add(7 * 24 * time.Hour)
	require.NoError(t, svc.UnlockLevelWithSchedule(scope, "Level1", f.CS3A.ID, nil, &due))

	require.EqualValues(t, 2, sectionUnlockCount(t, f, f.CS3A.ID, f.Level1.ID, true))

	var sched model.SectionLevelSchedule
	require.NoError(t, f.DB.Where("section_id = ? AND level_id = ?", f.CS3A.ID, f.Level1.ID).First(&sched).Error)
	require.NotNil(t, sched.StartDate)
	require.NotNil(t, sched.DueDate)
}

func TestSectionAchievementToggle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())
	svc := newOverrideService(f)

	scope, err := svc.ResolveScope(f.Teacher.ID, &f.CS3A.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SetAchievementActive(scope, "ach_001", false))

	var aliceRow model.AchievementProgress
	require.NoError(t, f.DB.Where("student_id = ? AND achievement_id = ?", f.Alice.ID, f.FirstSteps.ID).First(&aliceRow).Error)
	require.False(t, aliceRow.IsActive)

	// 其他段位不受影响
	var carolRow model.AchievementProgress
	require.NoError(t, f.DB.Where("student_id = ? AND achievement_id = ?", f.Carol.ID, f.FirstSteps.ID).First(&carolRow).Error)
	require.True(t, carolRow.IsActive)
}
