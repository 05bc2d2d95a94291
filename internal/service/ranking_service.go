package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 关卡分数档位：按 best_time 从高到低取第一个命中的档
const (
	scoreTierFull   = 100
	scoreTierHigh   = 70
	scoreTierMedium = 40
	scoreTierLow    = 10
)

// ScoreForTime 单关得分
func ScoreForTime(bestTime int) int {
	switch {
	case bestTime >= 90:
		return scoreTierFull
	case bestTime >= 60:
		return scoreTierHigh
	case bestTime >= 30:
		return scoreTierMedium
	case bestTime > 1:
		return scoreTierLow
	default:
		return 0
	}
}

// SortKey 排行榜排序键（封闭枚举，未知值在解析期拒绝）
type SortKey int

const (
	SortByScore SortKey = iota
	SortByTimeRemaining
	SortByAchievements
	SortByName
	SortBySection
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return SortByScore, nil
	case "time_remaining":
		return SortByTimeRemaining, nil
	case "achievements":
		return SortByAchievements, nil
	case "name":
		return SortByName, nil
	case "section":
		return SortBySection, nil
	default:
		return SortByScore, fmt.Errorf("invalid sort_by value: %q", s)
	}
}

// SectionFilter filter_by 的解析结果："3A" → 年级3 + 字母A，
// "CS3A" → 系别CS + 年级3 + 字母A
type SectionFilter struct {
	Department string
	Year       int
	Letter     string
}

// ParseSectionFilter 从紧凑段位码解析过滤条件；空串表示不过滤
func ParseSectionFilter(code string) (*SectionFilter, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	runes := []rune(strings.ToUpper(code))
	digit := -1
	for i, r := range runes {
		if unicode.IsDigit(r) {
			digit = i
			break
		}
	}
	if digit < 0 || digit == len(runes)-1 {
		return nil, fmt.Errorf("invalid section filter: %q", code)
	}

	f := &SectionFilter{
		Department: string(runes[:digit]),
		Year:       int(runes[digit] - '0'),
		Letter:     string(runes[digit+1:]),
	}
	if len(f.Letter) != 1 || !unicode.IsLetter(rune(f.Letter[0])) {
		return nil, fmt.Errorf("invalid section filter: %q", code)
	}
	return f, nil
}

// StudentPerformance 排行榜里一个学生的聚合行
type StudentPerformance struct {
	StudentID            uint   `json:"studentId"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Section              string `json:"section"`
	TotalTimeRemaining   int    `json:"totalTimeRemaining"`
	AchievementsUnlocked int    `json:"achievementsUnlocked"`
	Score                int    `json:"score"`
}

func (p *StudentPerformance) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SectionPerformance 段位均分榜的一行
type SectionPerformance struct {
	Section      string  `json:"section"`
	StudentCount int     `json:"studentCount"`
	AverageScore float64 `json:"averageScore"`
}

// RankingOptions GetAllStudentRankings 的全部查询维度
type RankingOptions struct {
	SortBy           SortKey
	Descending       bool
	FilterBy         string // 紧凑段位码，如 "3A" / "CS3A"
	DepartmentFilter string
	Search           string // 姓名模糊匹配
	LimitToStudents  []uint // 排序分页之前先收窄候选集
}

type RankingService struct {
	StudentRepo  *repository.StudentRepository
	ProgressRepo *repository.ProgressRepository
	Redis        *redis.Client
	Config       config.RankingConfig
}

func NewRankingService(studentRepo *repository.StudentRepository, progressRepo *repository.ProgressRepository, rdb *redis.Client, cfg config.RankingConfig) *RankingService {
	return &RankingService{
		StudentRepo:  studentRepo,
		ProgressRepo: progressRepo,
		Redis:        rdb,
		Config:       cfg,
	}
}

// buildPerformances 一次批量读进度表，内存里按学生折叠。
// levelScores 单独返回，供段位均分榜用（不含成就加成）
func (s *RankingService) buildPerformances(students []model.Student) ([]StudentPerformance, map[uint]int, error) {
	levelRows, err := s.ProgressRepo.ListAllLevelProgress()
	if err != nil {
		return nil, nil, err
	}
	achievementRows, err := s.ProgressRepo.ListAllAchievementProgress()
	if err != nil {
		return nil, nil, err
	}

	timeTotals := make(map[uint]int, len(students))
	levelScores := make(map[uint]int, len(students))
	achievementCounts := make(map[uint]int, len(students))
	for _, row := range levelRows {
		timeTotals[row.StudentID] += row.BestTime
		levelScores[row.StudentID] += ScoreForTime(row.BestTime)
	}
	for _, row := range achievementRows {
		if row.Unlocked {
			achievementCounts[row.StudentID]++
		}
	}

	bonus := s.Config.BonusPoints()
	performances := make([]StudentPerformance, 0, len(students))
	for _, st := range students {
		p := StudentPerformance{
			StudentID:            st.ID,
			FirstName:            st.FirstName,
			LastName:             st.LastName,
			TotalTimeRemaining:   timeTotals[st.ID],
			AchievementsUnlocked: achievementCounts[st.ID],
			Score:                levelScores[st.ID] + bonus*achievementCounts[st.ID],
		}
		if st.Section.ID != 0 {
			p.Section = st.Section.Label()
		}
		performances = append(performances, p)
	}
	return performances, levelScores, nil
}

// GetStudentPerformance 单个学生的聚合记录
func (s *RankingService) GetStudentPerformance(studentID uint) (*StudentPerformance, error) {
	student, err := s.StudentRepo.FindByID(studentID)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}

	levelRows, err := s.ProgressRepo.ListLevelsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	achievementRows, err := s.ProgressRepo.ListAchievementsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	p := &StudentPerformance{
		StudentID: student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
	}
	if student.Section.ID != 0 {
		p.Section = student.Section.Label()
	}
	for _, row := range levelRows {
		p.TotalTimeRemaining += row.BestTime
		p.Score += ScoreForTime(row.BestTime)
	}
	for _, row := range achievementRows {
		if row.Unlocked {
			p.AchievementsUnlocked++
		}
	}
	p.Score += s.Config.BonusPoints() * p.AchievementsUnlocked
	return p, nil
}

// GetAllStudentRankings 全量排行榜：过滤 → 折叠 → 排序，分页留给调用方
func (s *RankingService) GetAllStudentRankings(opts RankingOptions) ([]StudentPerformance, error) {
	sectionFilter, err := ParseSectionFilter(opts.FilterBy)
	if err != nil {
		return nil, err
	}

	students, err := s.StudentRepo.ListWithSections()
	if err != nil {
		return nil, err
	}

	students = filterStudents(students, sectionFilter, opts.DepartmentFilter, opts.Search, opts.LimitToStudents)

	performances, _, err := s.buildPerformances(students)
	if err != nil {
		return nil, err
	}

	sortPerformances(performances, opts.SortBy, opts.Descending)
	return performances, nil
}

func filterStudents(students []model.Student, sectionFilter *SectionFilter, department, search string, limitTo []uint) []model.Student {
	var allowed map[uint]bool
	if limitTo != nil {
		allowed = make(map[uint]bool, len(limitTo))
		for _, id := range limitTo {
			allowed[id] = true
		}
	}

	search = strings.ToLower(strings.TrimSpace(search))
	out := students[:0]
	for _, st := range students {
		if allowed != nil && !allowed[st.ID] {
			continue
		}
		if sectionFilter != nil {
			if st.Section.ID == 0 {
				continue
			}
			if st.Section.YearLevel.Year != sectionFilter.Year {
				continue
			}
			if !strings.EqualFold(st.Section.Letter, sectionFilter.Letter) {
				continue
			}
			if sectionFilter.Department != "" && !strings.EqualFold(st.Section.Department.Name, sectionFilter.Department) {
				continue
			}
		}
		if department != "" && !strings.EqualFold(st.Section.Department.Name, department) {
			continue
		}
		if search != "" {
			full := strings.ToLower(st.FirstName + " " + st.LastName)
			if !strings.Contains(full, search) {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

// sortPerformances 排序必须确定：每个主键都有固定的次级键，
// 最终兜底用学生 ID，保证重复调用产出同一顺序
func sortPerformances(ps []StudentPerformance, key SortKey, descending bool) {
	less := func(a, b *StudentPerformance) bool {
		switch key {
		case SortByScore:
			if a.Score != b.Score {
				return a.Score < b.Score
			}
			if a.TotalTimeRemaining != b.TotalTimeRemaining {
				return a.TotalTimeRemaining < b.TotalTimeRemaining
			}
		case SortByTimeRemaining:
			if a.TotalTimeRemaining != b.TotalTimeRemaining {
				return a.TotalTimeRemaining < b.TotalTimeRemaining
			}
			if a.AchievementsUnlocked != b.AchievementsUnlocked {
				return a.AchievementsUnlocked < b.AchievementsUnlocked
			}
		case SortByAchievements:
			if a.AchievementsUnlocked != b.AchievementsUnlocked {
				return a.AchievementsUnlocked < b.AchievementsUnlocked
			}
			if a.TotalTimeRemaining != b.TotalTimeRemaining {
				return a.TotalTimeRemaining < b.TotalTimeRemaining
			}
		case SortByName:
			an, bn := strings.ToLower(a.FullName()), strings.ToLower(b.FullName())
			if an != bn {
				return an < bn
			}
		case SortBySection:
			if a.Section != b.Section {
				return a.Section < b.Section
			}
		}
		return a.StudentID < b.StudentID
	}

	sort.SliceStable(ps, func(i, j int) bool {
		if descending {
			return less(&ps[j], &ps[i])
		}
		return less(&ps[i], &ps[j])
	})
}

// GetSectionRankings 段位均分榜（只算关卡分，不含成就加成），redis 缓存
func (s *RankingService) GetSectionRankings(ctx context.Context, descending bool, limit int) ([]SectionPerformance, error) {
	cacheKey := fmt.Sprintf("ranking:sections:desc=%t:limit=%d", descending, limit)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var out []SectionPerformance
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	students, err := s.StudentRepo.ListWithSections()
	if err != nil {
		return nil, err
	}

	_, levelScores, err := s.buildPerformances(students)
	if err != nil {
		return nil, err
	}

	type acc struct {
		total int
		count int
	}
	groups := map[string]*acc{}
	for _, st := range students {
		if st.Section.ID == 0 {
			continue
		}
		label := st.Section.Label()
		g, ok := groups[label]
		if !ok {
			g = &acc{}
			groups[label] = g
		}
		g.total += levelScores[st.ID]
		g.count++
	}

	out := make([]SectionPerformance, 0, len(groups))
	for label, g := range groups {
		out = append(out, SectionPerformance{
			Section:      label,
			StudentCount: g.count,
			AverageScore: float64(g.total) / float64(g.count),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if descending {
			a, b = b, a
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore < b.AverageScore
		}
		return a.Section < b.Section
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(out); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, payload, s.Config.CacheTTL()).Err(); err != nil {
				logger.Log.Warn("failed to cache section rankings", zap.Error(err))
			}
		}
	}
	return out, nil
}

// InvalidateSectionCache 进度被批量改动后调用，下一次查询重算
func (s *RankingService) InvalidateSectionCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, "ranking:sections:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.Redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Log.Warn("failed to invalidate ranking cache", zap.Error(err))
		}
	}
}
