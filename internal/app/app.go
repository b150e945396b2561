package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/controller"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/service"
	"quizhub_backend/pkg/database"
	"quizhub_backend/pkg/logger"
	"quizhub_backend/pkg/monitoring"
	"quizhub_backend/pkg/security"
	"quizhub_backend/pkg/tracing"

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

	mu        sync.RWMutex
	scheduler config.SchedulerConfig
	scanStop  context.CancelFunc
}

type repositories struct {
	user     *repository.UserRepository
	group    *repository.GroupRepository
	question *repository.QuestionRepository
	quiz     *repository.QuizRepository
	override *repository.OverrideRepository
	attempt  *repository.AttemptRepository
	grade    *repository.GradeRepository
	regrade  *repository.RegradeRepository
}

type services struct {
	auth     *service.AuthService
	access   *service.AccessService
	quiz     *service.QuizService
	override *service.OverrideService
	group    *service.GroupService
	attempt  *service.AttemptService
	grade    *service.GradeService
	regrade  *service.RegradeService
	overdue  *service.OverdueService
	events   *service.EventDispatcher
	engine   service.QuestionEngine
	notifier service.Notifier
}

type controllers struct {
	auth     *controller.AuthController
	quiz     *controller.QuizController
	attempt  *controller.AttemptController
	override *controller.OverrideController
	group    *controller.GroupController
	grade    *controller.GradeController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig is handed to the config watcher. Only the scheduler knobs are
// hot-swappable; everything else needs a restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.scheduler = cfg.Scheduler
	a.mu.Unlock()
	logger.Log.Info("Scheduler config reloaded",
		zap.Int("interval_seconds", cfg.Scheduler.IntervalSeconds),
		zap.Int("batch_limit", cfg.Scheduler.BatchLimit))

	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) schedulerConfig() config.SchedulerConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scheduler
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		group:    repository.NewGroupRepository(db),
		question: repository.NewQuestionRepository(db),
		quiz:     repository.NewQuizRepository(db),
		override: repository.NewOverrideRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		grade:    repository.NewGradeRepository(db),
		regrade:  repository.NewRegradeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.notifier = service.NewLogNotifier()
	s.events = service.NewEventDispatcher()

	s.auth = service.NewAuthService(repos.user, cfg)
	s.access = service.NewAccessService(repos.override, repos.group)
	s.engine = service.NewDBQuestionEngine(repos.attempt, repos.quiz, repos.question)
	s.grade = service.NewGradeService(repos.attempt, repos.grade, s.notifier, db)
	s.attempt = service.NewAttemptService(repos.attempt, repos.quiz, s.access, s.grade, s.engine, s.notifier, db, rdb)
	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, repos.question, s.grade, db)
	s.override = service.NewOverrideService(repos.override, repos.quiz, repos.group, repos.user, s.events)
	s.group = service.NewGroupService(repos.group, repos.override, s.events, db)
	s.regrade = service.NewRegradeService(repos.attempt, repos.quiz, repos.regrade, s.engine, s.grade, db)

	s.overdue = service.NewOverdueService(repos.attempt, repos.quiz, repos.group, repos.override,
		s.access, s.attempt, cfg.Scheduler.MinGraceBuffer, cfg.Scheduler.BatchLimit)

	// Membership and override changes invalidate stored deadlines; the
	// scheduler re-derives them.
	s.events.Subscribe(s.overdue)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		quiz:     controller.NewQuizController(s.quiz, s.access),
		attempt:  controller.NewAttemptController(s.attempt),
		override: controller.NewOverrideController(s.override),
		group:    controller.NewGroupController(s.group),
		grade:    controller.NewGradeController(s.grade, s.regrade, repos.quiz),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the overdue reconciliation scan on a ticker. Each
// pass gets a time budget; a pass that runs out stops early and the next one
// picks up where it left off, since processed attempts leave the due set.
func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.scanStop = cancel

	go func() {
		interval := time.Duration(a.schedulerConfig().IntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			sched := a.schedulerConfig()
			s.overdue.MinGraceBuffer = sched.MinGraceBuffer
			s.overdue.BatchLimit = sched.BatchLimit

			scanCtx, cancelScan := context.WithTimeout(ctx,
				time.Duration(sched.BudgetSeconds)*time.Second)
			summary, err := s.overdue.ScanDue(scanCtx, time.Now().Unix())
			cancelScan()
			if err != nil {
				logger.Log.Error("Overdue scan failed", zap.Error(err))
				continue
			}
			if summary.Processed > 0 {
				logger.Log.Info("Overdue scan finished",
					zap.Int("processed", summary.Processed),
					zap.Int("failed", summary.Failed))
			}

			if next := time.Duration(sched.IntervalSeconds) * time.Second; next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// Release deployments migrate only on explicit request; everywhere
	// else the schema follows the models automatically.
	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Attempt locking degrades to single-process semantics without
		// redis; everything else works.
		logger.Log.Warn("Redis unavailable, continuing without attempt locks", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		scheduler: cfg.Scheduler,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quizhub", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if !cfg.MigrateOnly {
		app.startBackgroundTasks(services)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.scanStop != nil {
		a.scanStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
