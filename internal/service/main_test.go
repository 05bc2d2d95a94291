package service

import (
	"os"
	"testing"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/pkg/database"
	"thinkjava_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB 内存 sqlite；单连接避免 :memory: 按连接隔离
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// fixture 常用的最小名册：两个系、两个段位、每段两个学生，
// 外加 Tutorial/Level1/Level2 和两个成就
type fixture struct {
	DB *gorm.DB

	CS, IT       model.Department
	Year1, Year3 model.YearLevel
	CS3A, IT1B   model.Section
	Alice, Bob   model.Student // CS3A
	Carol, Dave  model.Student // IT1B
	Tutorial     model.LevelDefinition
	Level1       model.LevelDefinition
	Level2       model.LevelDefinition
	FirstSteps   model.AchievementDefinition
	SpeedRunner  model.AchievementDefinition
	Teacher      model.Teacher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{DB: db}

	f.CS = model.Department{Name: "CS"}
	f.IT = model.Department{Name: "IT"}
	require.NoError(t, db.Create(&f.CS).Error)
	require.NoError(t, db.Create(&f.IT).Error)

	f.Year1 = model.YearLevel{Year: 1}
	f.Year3 = model.YearLevel{Year: 3}
	require.NoError(t, db.Create(&f.Year1).Error)
	require.NoError(t, db.Create(&f.Year3).Error)

	f.CS3A = model.Section{DepartmentID: f.CS.ID, YearLevelID: f.Year3.ID, Letter: "A"}
	f.IT1B = model.Section{DepartmentID: f.IT.ID, YearLevelID: f.Year1.ID, Letter: "B"}
	require.NoError(t, db.Create(&f.CS3A).Error)
	require.NoError(t, db.Create(&f.IT1B).Error)

	mkStudent := func(no, first, last string, section model.Section) model.Student {
		s := model.Student{
			StudentNo:    no,
			FirstName:    first,
			LastName:     last,
			Password:     "x",
			DepartmentID: section.DepartmentID,
			YearLevelID:  section.YearLevelID,
			SectionID:    section.ID,
		}
		require.NoError(t, db.Create(&s).Error)
		return s
	}
	f.Alice = mkStudent("21-0001", "Alice", "Abad", f.CS3A)
	f.Bob = mkStudent("21-0002", "Bob", "Basa", f.CS3A)
	f.Carol = mkStudent("21-0003", "Carol", "Cruz", f.IT1B)
	f.Dave = mkStudent("21-0004", "Dave", "Diaz", f.IT1B)

	f.Tutorial = model.LevelDefinition{Name: "Tutorial", Unlocked: true, SortOrder: model.DeriveSortOrder("Tutorial")}
	f.Level1 = model.LevelDefinition{Name: "Level1", SortOrder: model.DeriveSortOrder("Level1")}
	f.Level2 = model.LevelDefinition{Name: "Level2", SortOrder: model.DeriveSortOrder("Level2")}
	require.NoError(t, db.Create(&f.Tutorial).Error)
	require.NoError(t, db.Create(&f.Level1).Error)
	require.NoError(t, db.Create(&f.Level2).Error)

	f.FirstSteps = model.AchievementDefinition{Code: "ach_001", Title: "First Steps", Description: "Finish the tutorial", IsActive: true}
	f.SpeedRunner = model.AchievementDefinition{Code: "ach_002", Title: "Speed Runner", Description: "Clear a level with time to spare", IsActive: true}
	require.NoError(t, db.Create(&f.FirstSteps).Error)
	require.NoError(t, db.Create(&f.SpeedRunner).Error)

	f.Teacher = model.Teacher{TeacherID: "T-100", FirstName: "Tina", LastName: "Torres", Password: "x"}
	require.NoError(t, db.Create(&f.Teacher).Error)
	require.NoError(t, db.Create(&model.HandledSection{TeacherID: f.Teacher.ID, SectionID: f.CS3A.ID}).Error)

	return f
}

func (f *fixture) syncService() *SyncService {
	return NewSyncService(
		repository.NewStudentRepository(f.DB),
		repository.NewLevelDefinitionRepository(f.DB),
		repository.NewAchievementDefinitionRepository(f.DB),
		repository.NewProgressRepository(f.DB),
		f.DB,
	)
}

func (f *fixture) progressRepo() *repository.ProgressRepository {
	return repository.NewProgressRepository(f.DB)
}

func (f *fixture) scheduleRepo() *repository.ScheduleRepository {
	return repository.NewScheduleRepository(f.DB)
}
