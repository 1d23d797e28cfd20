package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	httpctx "github.com/dtroode/authkeeper/internal/api/http/context"
	"github.com/dtroode/authkeeper/internal/api/http/cookie"
	"github.com/dtroode/authkeeper/internal/api/http/router"
	httpServer "github.com/dtroode/authkeeper/internal/api/http/server"
	"github.com/dtroode/authkeeper/internal/config"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/password"
	"github.com/dtroode/authkeeper/internal/repository/memory"
	"github.com/dtroode/authkeeper/internal/repository/postgres"
	"github.com/dtroode/authkeeper/internal/repository/redis"
	"github.com/dtroode/authkeeper/internal/server"
	"github.com/dtroode/authkeeper/internal/service"
	"github.com/dtroode/authkeeper/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	userStore, closeStore := newUserStore(ctx, cfg, logger)
	defer closeStore()

	tokenManager, err := token.NewJWT(cfg.JWT.Secret)
	if err != nil {
		logger.Fatal("failed to initialize token manager", "error", err)
	}
	hasher := password.NewBcrypt(cfg.Bcrypt.Cost)

	authService := service.NewAuth(userStore, hasher, tokenManager, logger)
	authService.Warmup()
	cookies := cookie.NewSession(tokenManager.TTL(), !cfg.IsDevelopment())
	ctxMgr := httpctx.NewManager()

	r := router.New(authService, cookies, ctxMgr, cfg.HTTP.CORSAllowedOrigins, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newUserStore picks Postgres when a DSN is configured and the in-memory store
// otherwise, optionally fronted by the Redis cache.
func newUserStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.UserStore, func()) {
	var (
		store   model.UserStore
		closers []func()
	)

	if cfg.Database.DSN != "" {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		store = postgres.NewUserRepository(db)
	} else {
		logger.Warn("DATABASE_DSN is empty, users are kept in memory")
		store = memory.NewUserRepository()
	}

	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("failed to initialize redis", "error", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		store = redis.NewUserCache(store, rdb, cfg.Redis.UserTTL, logger)
	}

	return store, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
