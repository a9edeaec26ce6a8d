package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluttercity/auth-backend/internal/config"
	"github.com/fluttercity/auth-backend/internal/logging"
	"github.com/fluttercity/auth-backend/internal/repository/postgres"
	"github.com/fluttercity/auth-backend/internal/service"
	transporthttp "github.com/fluttercity/auth-backend/internal/transport/http"
	"github.com/fluttercity/auth-backend/internal/transport/mail"
	"github.com/fluttercity/auth-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		w, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("Warning: logstash mirror disabled: %v", err)
		} else {
			defer w.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, w))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	userRepo := postgres.NewUserRepo(db)
	resetRepo := postgres.NewPasswordResetRepo(db)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	mailer := mail.NewPasswordResetMailer(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom,
		cfg.SMTPUseTLS, cfg.SMTPTimeout, cfg.SMTPMaxRetries,
	)

	authService := service.NewAuthService(
		userRepo, resetRepo, mailer, jwtManager,
		cfg.ResetPageURL, cfg.PasswordResetTTL, cfg.DBTimeout,
	)

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterAuth(e, authService)
	transporthttp.RegisterSwagger(e)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
