package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"warbler/internal/auth"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/handler"
	"warbler/internal/logging"
	"warbler/internal/redis"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"
	"warbler/internal/view"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and apply the schema
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Session store
	rdb, err := redis.NewClient(cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		return err
	}
	sessions := session.NewManager(rdb.SessionStore(), cfg.SecretKey, cfg.SessionMaxAge, cfg.SessionSecure)

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	userService := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost), service.UserDefaults{
		ImageURL:       cfg.DefaultImageURL,
		HeaderImageURL: cfg.DefaultHeaderImageURL,
	}, logger)
	followService := service.NewFollowService(followRepo, userRepo, db, cfg.AllowSelfFollow)
	likeService := service.NewLikeService(likeRepo, messageRepo, db)
	messageService := service.NewMessageService(messageRepo)
	feedService := service.NewFeedService(messageRepo, likeRepo)

	var uploader handler.ImageUploader
	if cfg.MediaEnabled() {
		media, err := service.NewMediaService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		uploader = media
	} else {
		logger.Info("image uploads disabled: R2 configuration incomplete")
	}

	// 5. Handlers and router
	views, err := view.New()
	if err != nil {
		return err
	}
	responder := handler.NewResponder(views, sessions, logger)

	router := NewRouter(RouterConfig{
		Responder:      responder,
		AuthHandler:    handler.NewAuthHandler(responder, userService, uploader),
		UserHandler:    handler.NewUserHandler(responder, userService, followService, likeService, messageService, uploader),
		FollowHandler:  handler.NewFollowHandler(responder, userService, followService),
		LikeHandler:    handler.NewLikeHandler(responder, userService, likeService),
		MessageHandler: handler.NewMessageHandler(responder, messageService, likeService),
		FeedHandler:    handler.NewFeedHandler(responder, feedService),
		Sessions:       sessions,
		Users:          userService,
		Logger:         logger,
		StaticDir:      staticDir(cfg.StaticDir, logger),
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Serve until a signal arrives, then drain
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// staticDir returns dir if it exists, otherwise "" so /static is not mounted.
func staticDir(dir string, logger *zap.Logger) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("static directory not found, /static disabled", zap.String("dir", dir))
		return ""
	}
	return dir
}
