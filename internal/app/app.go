package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edutrack_backend/internal/config"
	"edutrack_backend/internal/controller"
	"edutrack_backend/internal/service"
	"edutrack_backend/pkg/database"
	"edutrack_backend/pkg/logger"
	"edutrack_backend/pkg/monitoring"
	"edutrack_backend/pkg/security"
	"edutrack_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type services struct {
	auth        *service.AuthService
	streak      *service.StreakService
	points      *service.PointsService
	badge       *service.BadgeService
	activity    *service.ActivityService
	leaderboard *service.LeaderboardService
	analytics   *service.AnalyticsService
}

type controllers struct {
	auth        *controller.AuthController
	activity    *controller.ActivityController
	streak      *controller.StreakController
	points      *controller.PointsController
	badge       *controller.BadgeController
	leaderboard *controller.LeaderboardController
	analytics   *controller.AnalyticsController
	dashboard   *controller.DashboardController
	health      *controller.HealthController
}

func (a *App) initServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	locks := service.NewKeyedMutex()
	s.auth = service.NewAuthService(db, cfg)
	s.streak = service.NewStreakService(db, locks, cfg.Gamify.InitialFreezes)
	s.points = service.NewPointsService(db)
	s.badge = service.NewBadgeService(db, s.points)
	s.activity = service.NewActivityService(db, s.streak, s.points, s.badge, locks)
	s.leaderboard = service.NewLeaderboardService(db, rdb, time.Duration(cfg.Gamify.CacheTTLSeconds)*time.Second)
	s.analytics = service.NewAnalyticsService(db, s.streak, s.points)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		activity:    controller.NewActivityController(s.activity),
		streak:      controller.NewStreakController(s.streak),
		points:      controller.NewPointsController(s.points),
		badge:       controller.NewBadgeController(s.badge),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		analytics:   controller.NewAnalyticsController(s.analytics),
		dashboard:   controller.NewDashboardController(s.analytics),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	services := app.initServices(cfg, db, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edutrack-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
