package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taply/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"taply/internal/auth"
	"taply/internal/cache"
	"taply/internal/config"
	"taply/internal/db"
	"taply/internal/geo"
	"taply/internal/handler"
	"taply/internal/model"
	"taply/internal/ratelimit"
	"taply/internal/repository"
	"taply/internal/router"
	"taply/internal/service"
)

// @title Taply API
// @version 1.0
// @description Digital business-card platform: profiles, QR codes, scan analytics and admin tooling.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.QRCode{},
		&model.ScanEvent{},
		&model.AuditLog{},
	); err != nil {
		log.WithError(err).Fatal("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	qrRepo := repository.NewQRCodeRepository(gormDB)
	scanRepo := repository.NewScanRepository(gormDB)
	auditRepo := repository.NewAuditRepository(gormDB)

	// Initialize auth and infra components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax)
	defer limiter.Close()
	geoResolver := geo.NewHTTPResolver(cfg.GeoAPIURL, cfg.GeoAPITimeout)

	// Initialize services
	auditLogger := service.NewAuditLogger(auditRepo, log)
	recorder := service.NewScanRecorder(scanRepo, geoResolver, log)
	authService := service.NewAuthService(userRepo, jwtService, auditLogger)
	profileService := service.NewProfileService(profileRepo, cacheClient)
	qrService := service.NewQRService(qrRepo, profileRepo, scanRepo, recorder, log)
	adminService := service.NewAdminService(userRepo, profileRepo, auditRepo, auditLogger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure, log)
	profileHandler := handler.NewProfileHandler(profileService, log)
	qrHandler := handler.NewQRHandler(qrService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		limiter,
		router.NewRoleGuard(userRepo),
		authHandler,
		profileHandler,
		qrHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	}

	// Let in-flight scan recordings finish before exiting.
	recorder.Wait()
}
