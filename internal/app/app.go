package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/controller"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/service"
	"thinkjava_backend/pkg/database"
	"thinkjava_backend/pkg/logger"
	"thinkjava_backend/pkg/monitoring"
	"thinkjava_backend/pkg/security"
	"thinkjava_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	student      *repository.StudentRepository
	teacher      *repository.TeacherRepository
	admin        *repository.AdminRepository
	section      *repository.SectionRepository
	department   *repository.DepartmentRepository
	level        *repository.LevelDefinitionRepository
	achievement  *repository.AchievementDefinitionRepository
	progress     *repository.ProgressRepository
	schedule     *repository.ScheduleRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth            *service.AuthService
	roster          *service.RosterService
	sync            *service.SyncService
	scheduler       *service.Scheduler
	teacherProgress *service.TeacherProgressService
	catalog         *service.CatalogService
	ranking         *service.RankingService
	progress        *service.ProgressService
	notification    *service.NotificationService
}

type controllers struct {
	auth            *controller.AuthController
	catalog         *controller.CatalogController
	progress        *controller.ProgressController
	ranking         *controller.RankingController
	teacherProgress *controller.TeacherProgressController
	notification    *controller.NotificationController
	roster          *controller.RosterController
	health          *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新可在线替换的配置段（目前只有排行榜计分），
// 其余段（端口、数据库等）需要重启才生效
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.Ranking = cfg.Ranking
	a.services.ranking.Config = cfg.Ranking
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		student:      repository.NewStudentRepository(db),
		teacher:      repository.NewTeacherRepository(db),
		admin:        repository.NewAdminRepository(db),
		section:      repository.NewSectionRepository(db),
		department:   repository.NewDepartmentRepository(db),
		level:        repository.NewLevelDefinitionRepository(db),
		achievement:  repository.NewAchievementDefinitionRepository(db),
		progress:     repository.NewProgressRepository(db),
		schedule:     repository.NewScheduleRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.student, repos.teacher, repos.admin, cfg)
	s.sync = service.NewSyncService(repos.student, repos.level, repos.achievement, repos.progress, db)
	s.roster = service.NewRosterService(repos.student, repos.section, repos.department, repos.teacher, s.sync)
	s.notification = service.NewNotificationService(repos.notification)
	s.scheduler = service.NewScheduler(repos.student, repos.schedule, repos.progress, db, cfg.Scheduler.Interval())
	s.ranking = service.NewRankingService(repos.student, repos.progress, rdb, cfg.Ranking)
	s.teacherProgress = service.NewTeacherProgressService(
		repos.teacher,
		repos.student,
		repos.level,
		repos.achievement,
		repos.progress,
		repos.schedule,
		s.notification,
		s.ranking,
		db,
	)
	s.catalog = service.NewCatalogService(repos.level, repos.achievement, repos.progress, s.sync, s.ranking, db)
	s.progress = service.NewProgressService(repos.student, repos.level, repos.achievement, repos.progress)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:            controller.NewAuthController(s.auth, s.roster),
		catalog:         controller.NewCatalogController(s.catalog),
		progress:        controller.NewProgressController(s.progress),
		ranking:         controller.NewRankingController(s.ranking, repos.student, repos.teacher),
		teacherProgress: controller.NewTeacherProgressController(s.teacherProgress, s.roster),
		notification:    controller.NewNotificationController(s.notification),
		roster:          controller.NewRosterController(s.roster),
		health:          controller.NewHealthController(db, s.scheduler),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("thinkjava-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	// 调度引擎随进程启动，Run() 停机时关闭
	services.scheduler.Start(context.Background())

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 先停调度循环，避免停机窗口里再发起批量更新
	if a.services != nil && a.services.scheduler != nil {
		a.services.scheduler.Stop()
	}

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
