package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "leadcrm/docs"
	"leadcrm/internal/config"
	"leadcrm/internal/database"
	"leadcrm/internal/handlers"
	"leadcrm/internal/middleware"
	"leadcrm/internal/pdf"
	"leadcrm/internal/repositories"
	"leadcrm/internal/routes"
	"leadcrm/internal/services"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("[app] load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("[app] stopped")
	}
	log.Info("[app] bye")
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.DebugLevel)
}

func run(ctx context.Context, cfg *config.Config) error {
	// === DB ===
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("[app] close database")
		}
	}()
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	emailService := services.NewEmailService(cfg.Email)
	if emailService == nil {
		log.Info("[app] SMTP not configured, welcome emails disabled")
	}
	userService := services.NewUserService(userRepo, emailService, authService)
	leadService := services.NewLeadService(leadRepo)

	// === Handlers ===
	cookie := handlers.SessionCookie{
		Name:   cfg.Auth.CookieName,
		TTL:    cfg.TokenTTL(),
		Secure: cfg.IsProduction(),
	}
	authHandler := handlers.NewAuthHandler(userService, cookie)
	leadHandler := handlers.NewLeadHandler(leadService, pdf.NewReportGenerator())
	healthHandler := handlers.NewHealthHandler(db)

	// === Gin ===
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		leadHandler,
		healthHandler,
		middleware.RequireSession(cookie.Name, authService, userService),
	)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": srv.Addr, "env": cfg.Server.Env}).Info("[app] server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// corsConfig allows credentialed requests from the configured client origins only.
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowOrigins:     c.Clients,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cc.AllowOrigins) == 0 {
		// cors.New panics on an empty origin list
		cc.AllowOriginFunc = func(string) bool { return false }
	}
	return cc
}
