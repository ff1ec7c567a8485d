package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LightsoftTeam/baldoria-backend/internal/api"
	"github.com/LightsoftTeam/baldoria-backend/internal/clock"
	"github.com/LightsoftTeam/baldoria-backend/internal/config"
	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/middleware"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Configuration loaded",
		zap.String("storage", appConfig.StorageDriver),
		zap.Int("businessUTCOffsetHours", appConfig.BusinessUTCOffsetHours),
		zap.String("displayTimezone", appConfig.DisplayTimezone),
		zap.Bool("authRequired", appConfig.AuthRequired))

	if err := api.RegisterValidators(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to register request validators", zap.Error(err))
	}

	// --- 3. Storage ---
	var (
		userRepo  db.UserRepository
		auditRepo db.AuditRepository
		authMW    *middleware.AuthMiddleware
	)
	switch appConfig.StorageDriver {
	case config.StorageFirestore:
		initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
		clients, err := db.InitFirestore(initCtx, appConfig, zapLogger)
		cancelInitCtx()
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
		}
		defer func() {
			if err := clients.Close(); err != nil {
				zapLogger.Warn("Failed to close Firestore client", zap.Error(err))
			}
		}()

		firestoreUsers := db.NewFirestoreUserRepository(clients.Firestore, appConfig.UsersCollection, zapLogger)
		userRepo = firestoreUsers
		auditRepo = db.NewFirestoreAuditRepository(clients.Firestore, appConfig.AuditCollection, zapLogger)
		if appConfig.AuthRequired {
			authMW = middleware.NewAuthMiddleware(clients.Auth, firestoreUsers, zapLogger)
		}
	case config.StorageMemory:
		zapLogger.Warn("Using in-memory storage, data is lost on restart")
		userRepo = db.NewMemoryUserRepository()
		auditRepo = db.NewMemoryAuditRepository()
	default:
		zapLogger.Fatal("CRITICAL_ERROR: Unknown storage driver", zap.String("driver", appConfig.StorageDriver))
	}

	// --- 4. Services ---
	realClock := clock.NewRealClock()
	offset := appConfig.BusinessOffset()
	auditService := core.NewAuditService(auditRepo)
	evaluator := core.NewEvaluator(userRepo, realClock, offset, appConfig.DisplayLocation(), zapLogger)
	userService := core.NewUserService(userRepo, auditService, realClock, offset, zapLogger)
	reservationService := core.NewReservationService(userRepo, evaluator, auditService, zapLogger)

	// --- 5. Gin engine and global middleware ---
	if strings.ToLower(appConfig.GinMode) == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig, zapLogger))

	api.SetupRoutes(router, zapLogger, userService, reservationService, authMW)

	// --- 6. HTTP server ---
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 7. Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully.")
}

// newLogger builds a development logger in debug mode and a JSON production
// logger in release mode, both at LOG_LEVEL.
func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(appConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", appConfig.LogLevel, err)
	}

	zapConfig := zap.NewDevelopmentConfig()
	if strings.ToLower(appConfig.GinMode) == gin.ReleaseMode {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
