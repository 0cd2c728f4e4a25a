package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/odi-auth/internal/config"
	"github.com/xxxsen/odi-auth/internal/db"
	"github.com/xxxsen/odi-auth/internal/handler"
	"github.com/xxxsen/odi-auth/internal/middleware"
	"github.com/xxxsen/odi-auth/internal/oauth"
	"github.com/xxxsen/odi-auth/internal/repo"
	"github.com/xxxsen/odi-auth/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "odi-auth",
		Short: "odi authentication backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the auth server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.Database.DBName),
	)

	userRepo := repo.NewUserRepo(conn)
	emailCodeRepo := repo.NewEmailCodeRepo(conn)

	jwtSecret := []byte(cfg.JWTSecret)
	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)

	mailSender := service.NewEmailSender(cfg.Mail)
	codeService := service.NewCodeService(emailCodeRepo, mailSender)
	authService := service.NewAuthService(userRepo, codeService, mailSender, jwtSecret, jwtTTL, cfg.BaseURL)

	githubClient := oauth.NewGithubClient(oauth.Config{
		ClientID:     cfg.Github.ClientID,
		ClientSecret: cfg.Github.ClientSecret,
		RedirectURL:  cfg.Github.RedirectURL,
		Scopes:       cfg.Github.Scopes,
	}, &http.Client{Timeout: 10 * time.Second})
	githubService := service.NewGithubService(userRepo, githubClient, jwtSecret, jwtTTL)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService, codeService, jwtSecret),
		Github:    handler.NewGithubHandler(githubService),
		JWTSecret: jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
