package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/handler"
	"github.com/Rostreet/printsystem/internal/cert/pdf"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/Rostreet/printsystem/internal/cert/storage"
	"github.com/Rostreet/printsystem/internal/config"
	"github.com/Rostreet/printsystem/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting printsystem service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.VehicleRecord{},
		&entity.OrderVehicle{},
		&entity.ChassisConfig{},
		&entity.CertificatePrintEvent{},
		&entity.Operator{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 初始化Redis（取号流水与刷新令牌）
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	// 对象存储，未配置时归档自动禁用
	archiver, err := storage.NewArchiver(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	if err != nil {
		zapLogger.Fatal("Failed to init object storage", zap.Error(err))
	}
	if archiver.Enabled() {
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			zapLogger.Warn("Ensure bucket failed", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(db)
	seedAdmin(db, zapLogger)

	renderer := pdf.NewRenderer(config.GetEnvOrDefault("CERT_FONT_PATH", ""))
	issuer := service.NewIssuerService(rdb, cfg.Print.CertificatePrefix)

	services := &service.Services{
		Auth: service.NewAuthService(repos, rdb, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer,
			cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire),
		Vehicle: service.NewVehicleService(repos, zapLogger),
		Order:   service.NewOrderService(repos, zapLogger),
		Chassis: service.NewChassisService(repos, zapLogger),
		Workflow: service.NewWorkflowService(repos, issuer, archiver, renderer,
			zapLogger, cfg.Print.StrictVINCheck, cfg.Print.UpstreamTimeout),
		Report: service.NewReportService(repos, zapLogger),
	}
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	handler.RegisterRoutes(router, handlers, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

// seedAdmin 首次启动时创建默认管理员，密码必须在首次登录后修改
func seedAdmin(db *gorm.DB, zapLogger *zap.Logger) {
	var count int64
	db.Model(&entity.Operator{}).Count(&count)
	if count > 0 {
		return
	}
	password := config.GetEnvOrDefault("ADMIN_INITIAL_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		zapLogger.Warn("Seed admin failed", zap.Error(err))
		return
	}
	admin := &entity.Operator{
		OperatorID:   "admin",
		Username:     "系统管理员",
		PasswordHash: string(hash),
		Department:   entity.DepartmentQuality,
		Role:         entity.RoleSystemAdmin,
		Status:       entity.OperatorStatusEnabled,
	}
	if err := db.Create(admin).Error; err != nil {
		zapLogger.Warn("Seed admin failed", zap.Error(err))
		return
	}
	zapLogger.Info("Seeded default admin operator", zap.String("operator", admin.OperatorID))
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
