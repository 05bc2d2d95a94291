package service

import (
	"context"
	"sync"
	"time"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/pkg/logger"
	"thinkjava_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler 每 (section, level) 排期的自动锁/解锁循环。
//
// 状态机以排期行的存在为键：无行=手动控制；start_date 过了强制解锁；
// due_date 过了强制上锁并删行，回到手动控制。进程里只构造一次，
// Start/Stop 显式管理生命周期，不依赖包级布尔
type Scheduler struct {
	StudentRepo  *repository.StudentRepository
	ScheduleRepo *repository.ScheduleRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB

	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewScheduler(
	studentRepo *repository.StudentRepository,
	scheduleRepo *repository.ScheduleRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		StudentRepo:  studentRepo,
		ScheduleRepo: scheduleRepo,
		ProgressRepo: progressRepo,
		DB:           db,
		interval:     interval,
	}
}

// Running 当前是否在跑（健康检查用）
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Start 启动后台循环；重复调用是空操作
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.loop(ctx)
	logger.Log.Info("schedule engine started", zap.Duration("interval", s.interval))
}

// Stop 取消循环并等当前这轮跑完（优雅停机用）
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
	logger.Log.Info("schedule engine stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// 启动先跑一轮，不等第一个 tick
	s.RunPass(time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunPass(time.Now())
		}
	}
}

// RunPass 执行一轮评估。单条排期失败只记日志不中断本轮，
// 坏行留给下一轮/人工处理
func (s *Scheduler) RunPass(now time.Time) {
	sectionIDs, err := s.StudentRepo.DistinctSectionIDs()
	if err != nil {
		logger.Log.Error("scheduler: loading roster sections failed", zap.Error(err))
		return
	}

	schedules, err := s.ScheduleRepo.ListBySections(sectionIDs)
	if err != nil {
		logger.Log.Error("scheduler: loading schedules failed", zap.Error(err))
		return
	}

	for _, sched := range schedules {
		if err := s.evaluate(sched, now); err != nil {
			monitoring.ScheduleErrors.Inc()
			logger.Log.Error("scheduler: schedule evaluation failed",
				zap.Uint("section_id", sched.SectionID),
				zap.Uint("level_id", sched.LevelID),
				zap.Error(err))
		}
	}

	monitoring.SchedulePasses.Inc()
}

// evaluate 单条排期的状态转换
func (s *Scheduler) evaluate(sched model.SectionLevelSchedule, now time.Time) error {
	// Pending→Active：start_date 已过，强制解锁该段该关的全部进度行
	if sched.StartDate != nil && !sched.StartDate.After(now) {
		updated, err := s.ProgressRepo.SetLevelUnlockedBySection(s.DB, sched.SectionID, sched.LevelID, true)
		if err != nil {
			return err
		}
		if updated > 0 {
			monitoring.ScheduleTransitions.WithLabelValues("unlock").Inc()
			logger.Log.Info("schedule unlock applied",
				zap.Uint("section_id", sched.SectionID),
				zap.Uint("level_id", sched.LevelID),
				zap.Int64("rows", updated))
		}
	}

	// Active→Expired→NoSchedule：锁行 + 删排期在同一事务里，
	// 进程在中间挂掉不会留下锁了行却还挂着排期的状态
	if sched.DueDate != nil && !sched.DueDate.After(now) {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := s.ProgressRepo.SetLevelUnlockedBySection(tx, sched.SectionID, sched.LevelID, false); err != nil {
				return err
			}
			return s.ScheduleRepo.Delete(tx, sched.ID)
		})
		if err != nil {
			return err
		}
		monitoring.ScheduleTransitions.WithLabelValues("expire").Inc()
		logger.Log.Info("schedule expired and removed",
			zap.Uint("section_id", sched.SectionID),
			zap.Uint("level_id", sched.LevelID))
	}

	return nil
}
