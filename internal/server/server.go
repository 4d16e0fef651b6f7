package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/internal/auth"
	"taskflow/internal/config"
	"taskflow/internal/handler"
	"taskflow/internal/migrations"
	"taskflow/internal/notify"
	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Config    *config.Config
	Reminders *notify.Dispatcher
	Logger    *slog.Logger
}

func Init(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := migrations.Up(cfg.MigrateURL(), logger); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	reminders := notify.NewDispatcher(notify.DispatcherConfig{
		Workers:     cfg.ReminderWorkers,
		QueueSize:   cfg.ReminderQueueSize,
		SendTimeout: notify.DefaultDispatcherConfig().SendTimeout,
	}, logger, senders(cfg, logger)...)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())
	taskService := service.NewTaskService(taskRepo, userRepo, reminders, logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, tokens, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	return &Server{
		Engine:    NewRouter(logger, tokens, userHandler, taskHandler),
		DB:        db,
		Config:    cfg,
		Reminders: reminders,
		Logger:    logger,
	}, nil
}

// senders returns the reminder channels that have credentials configured.
func senders(cfg *config.Config, logger *slog.Logger) []notify.Sender {
	var out []notify.Sender
	if cfg.EmailEnabled() {
		out = append(out, notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom))
	} else {
		logger.Warn("email reminders disabled, SMTP_HOST or MAIL_FROM not set")
	}
	if cfg.SMSEnabled() {
		out = append(out, notify.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SMSCountryCode))
	} else {
		logger.Warn("sms reminders disabled, Twilio credentials not set")
	}
	return out
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.Reminders.Start()
	defer s.Reminders.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case sig := <-quit:
		s.Logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	s.Logger.Info("server exited properly")
	return nil
}
