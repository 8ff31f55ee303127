package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"deeptrust-api/internal/analyzer"
	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/core/config"
	"deeptrust-api/internal/core/database"
	"deeptrust-api/internal/core/logger"
	"deeptrust-api/internal/core/server"
	"deeptrust-api/internal/core/throttle"
	"deeptrust-api/internal/repo"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	store := repo.NewStore(db)
	if cfg.DB.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	users := service.NewUserService(store, store, log)
	if _, err := users.EnsureSeedAdmin(ctx, cfg.Seed.AdminPassword); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	deps := router.Deps{
		Log:          log,
		Users:        users,
		Ledger:       service.NewLedger(store, log),
		Stats:        service.NewStatsService(store, store),
		Tokens:       auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.TTLHours)*time.Hour),
		Analyzer:     analyzer.NewMock(analyzerSeed(cfg.Analyzer.Seed)),
		MaxBodyBytes: int64(cfg.App.HTTP.MaxBodyMB) << 20,
		AuthLimit:    cfg.Throttle.Limit,
		AuthWindow:   time.Duration(cfg.Throttle.WindowSec) * time.Second,
	}
	if th := openThrottle(ctx, cfg, log); th != nil {
		defer th.Close()
		deps.Throttle = th
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, router.NewAPIEngine(deps),
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		log,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("deeptrust api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Error("deeptrust api stopped with error", zap.Error(err))
		return
	}
	log.Info("deeptrust api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// openThrottle returns nil when Redis is not configured. An unreachable Redis
// at startup is logged and the throttle still installed; it fails open.
func openThrottle(ctx context.Context, cfg *config.Config, l *zap.Logger) *throttle.Throttle {
	if cfg.Redis.Addr == "" {
		return nil
	}
	th := throttle.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		cfg.Throttle.Limit, time.Duration(cfg.Throttle.WindowSec)*time.Second)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := th.Ping(pctx); err != nil {
		l.Warn("redis unreachable, auth throttle will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		l.Info("auth throttle enabled", zap.Int("limit", cfg.Throttle.Limit), zap.Int("window_sec", cfg.Throttle.WindowSec))
	}
	return th
}

func analyzerSeed(s uint64) uint64 {
	if s != 0 {
		return s
	}
	return rand.Uint64()
}
