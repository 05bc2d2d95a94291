package service

import (
	"testing"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestScoreForTime(t *testing.T) {
	tests := []struct {
		bestTime int
		want     int
	}{
		{120, 100},
		{90, 100},
		{89, 70},
		{60, 70},
		{59, 40},
		{30, 40},
		{29, 10},
		{2, 10},
		{1, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := ScoreForTime(tt.bestTime); got != tt.want {
			t.Errorf("ScoreForTime(%d) = %d, want %d", tt.bestTime, got, tt.want)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortByScore, false},
		{"score", SortByScore, false},
		{"SCORE", SortByScore, false},
		{"time_remaining", SortByTimeRemaining, false},
		{"achievements", SortByAchievements, false},
		{"name", SortByName, false},
		{"section", SortBySection, false},
		{"bogus", SortByScore, true},
		{"time-remaining", SortByScore, true},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSortKey(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSortKey(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSectionFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    *SectionFilter
		wantErr bool
	}{
		{"", nil, false},
		{"3A", &SectionFilter{Year: 3, Letter: "A"}, false},
		{"cs3a", &SectionFilter{Department: "CS", Year: 3, Letter: "A"}, false},
		{"IT1B", &SectionFilter{Department: "IT", Year: 1, Letter: "B"}, false},
		{"3", nil, true},
		{"A3", nil, true},
		{"CS3", nil, true},
		{"CS3AB", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseSectionFilter(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSectionFilter(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSectionFilter(%q): unexpected error %v", tt.in, err)
			continue
		}
		if tt.want == nil {
			if got != nil {
				t.Errorf("ParseSectionFilter(%q) = %+v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || *got != *tt.want {
			t.Errorf("ParseSectionFilter(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSortPerformancesTieBreaks(t *testing.T) {
	base := []StudentPerformance{
		{StudentID: 1, FirstName: "A", Score: 100, TotalTimeRemaining: 50, AchievementsUnlocked: 2},
		{StudentID: 2, FirstName: "B", Score: 100, TotalTimeRemaining: 80, AchievementsUnlocked: 1},
		{StudentID: 3, FirstName: "C", Score: 70, TotalTimeRemaining: 80, AchievementsUnlocked: 3},
	}

	// score 并列时 time_remaining 高者在前（降序）
	rows := append([]StudentPerformance(nil), base...)
	sortPerformances(rows, SortByScore, true)
	require.Equal(t, []uint{2, 1, 3}, ids(rows))

	// time_remaining 并列时 achievements 多者在前
	rows = append([]StudentPerformance(nil), base...)
	sortPerformances(rows, SortByTimeRemaining, true)
	require.Equal(t, []uint{3, 2, 1}, ids(rows))

	// achievements 排序，time_remaining 作次级键
	rows = append([]StudentPerformance(nil), base...)
	sortPerformances(rows, SortByAchievements, true)
	require.Equal(t, []uint{3, 1, 2}, ids(rows))
}

func TestSortPerformancesDeterministic(t *testing.T) {
	// 完全同分的学生必须按 ID 稳定排序，重复调用结果一致
	rows := []StudentPerformance{
		{StudentID: 3, Score: 100, TotalTimeRemaining: 50},
		{StudentID: 1, Score: 100, TotalTimeRemaining: 50},
		{StudentID: 2, Score: 100, TotalTimeRemaining: 50},
	}

	for i := 0; i < 5; i++ {
		sortPerformances(rows, SortByScore, true)
		require.Equal(t, []uint{3, 2, 1}, ids(rows))
	}

	sortPerformances(rows, SortByScore, false)
	require.Equal(t, []uint{1, 2, 3}, ids(rows))
}

func ids(rows []StudentPerformance) []uint {
	out := make([]uint, len(rows))
	for i, r := range rows {
		out[i] = r.StudentID
	}
	return out
}

func TestCrossSectionIsolation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	// IT1B 的 Carol 拿高分，确认不会混进 CS3A 的榜单
	require.NoError(t, f.progressRepo().ApplyTimes(f.Carol.ID, f.Level1.ID, 95, 95))

	svc := NewRankingService(repository.NewStudentRepository(f.DB), f.progressRepo(), nil, config.RankingConfig{})

	rankings, err := svc.GetAllStudentRankings(RankingOptions{
		SortBy:          SortByScore,
		Descending:      true,
		LimitToStudents: []uint{f.Alice.ID, f.Bob.ID},
	})
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	for _, row := range rankings {
		require.NotEqual(t, f.Carol.ID, row.StudentID)
		require.NotEqual(t, f.Dave.ID, row.StudentID)
		require.Equal(t, "CS3A", row.Section)
	}
}

func TestSectionFilterQuery(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	svc := NewRankingService(repository.NewStudentRepository(f.DB), f.progressRepo(), nil, config.RankingConfig{})

	rankings, err := svc.GetAllStudentRankings(RankingOptions{SortBy: SortByName, FilterBy: "CS3A"})
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	require.Equal(t, "Alice", rankings[0].FirstName)
	require.Equal(t, "Bob", rankings[1].FirstName)

	rankings, err = svc.GetAllStudentRankings(RankingOptions{SortBy: SortByName, FilterBy: "1B"})
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	rankings, err = svc.GetAllStudentRankings(RankingOptions{SortBy: SortByName, DepartmentFilter: "IT"})
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	require.Equal(t, "Carol", rankings[0].FirstName)
}

func TestAchievementBonusConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.syncService().SyncAll())

	require.NoError(t, f.progressRepo().ApplyTimes(f.Alice.ID, f.Level1.ID, 90, 90))
	require.NoError(t, f.progressRepo().UnlockAchievement(f.Alice.ID, f.FirstSteps.ID))

	repo := repository.NewStudentRepository(f.DB)

	// 默认不计成就加成
	svc := NewRankingService(repo, f.progressRepo(), nil, config.RankingConfig{})
	p, err := svc.GetStudentPerformance(f.Alice.ID)
	require.NoError(t, err)
	require.Equal(t, 100, p.Score)
	require.Equal(t, 1, p.AchievementsUnlocked)

	// 开关打开后每个成就 +25
	svc = NewRankingService(repo, f.progressRepo(), nil, config.RankingConfig{AchievementBonus: true})
	p, err = svc.GetStudentPerformance(f.Alice.ID)
	require.NoError(t, err)
	require.Equal(t, 125, p.Score)
}
