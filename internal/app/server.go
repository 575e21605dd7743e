// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/db"
	authHandler "auth-service/internal/handlers/auth"
	permHandler "auth-service/internal/handlers/permission"
	"auth-service/internal/middleware"
	"auth-service/internal/pkg/cache"
	"auth-service/internal/pkg/cipher"
	"auth-service/internal/pkg/jwt"
	"auth-service/internal/pkg/session"
	"auth-service/internal/repository/postgres"
	authUsecase "auth-service/internal/service/auth"
	permUsecase "auth-service/internal/service/permission"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
	pool   *pgxpool.Pool
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- AES cipher -----
	aes, err := cipher.New(s.cfg.AESKey)
	if err != nil {
		return fmt.Errorf("failed to build AES cipher: %w", err)
	}

	// ----- Repositories -----
	sessionRepo := postgres.NewSessionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// ----- Session Manager -----
	sessionCache := cache.NewRedisCache(redisClient)
	sessionManager := session.NewManager(sessionRepo, sessionCache, logger)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		userRepo,
		authUsecase.BcryptVerifier{},
		jwtManager,
		sessionManager,
		aes,
		logger,
	)
	permissionService := permUsecase.NewPermissionService(userRepo)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	permHandlerInst := permHandler.NewPermissionHandler(permissionService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier, sessionManager, permissionService, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:       authHandlerInst,
		PermissionHandler: permHandlerInst,
		AuthMiddleware:    authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and closes shared pools.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(shutdownCtx)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return err
}
