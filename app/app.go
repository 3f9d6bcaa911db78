// app/app.go
package app

import (
	"checkout_kiosk/config"
	"checkout_kiosk/db"
	"checkout_kiosk/directory"
	"checkout_kiosk/scan"
	"checkout_kiosk/session"
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the process-wide dependencies.
type App struct {
	Router    *gin.Engine
	DB        *gorm.DB
	RDB       *redis.Client // nil when REDIS_ADDR is empty
	Repo      *db.Repo
	Resolver  directory.Resolver
	Processor *scan.Processor
	Log       *zap.Logger
	Config    config.Config
}

func New(cfg config.Config) (*App, error) {
	log, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	repo := db.NewRepo(dbConn)
	if n, err := db.SeedItems(context.Background(), dbConn, cfg.SeedItems); err != nil {
		return nil, fmt.Errorf("seed items: %w", err)
	} else if n > 0 {
		log.Info("seeded items", zap.Int("count", n))
	}

	var rdb *redis.Client
	var locker session.Locker = session.NopLocker{}
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		locker = session.NewScanLock(rdb, cfg.ScanLockTTL)
	}

	resolver, err := NewResolver(cfg, rdb, log)
	if err != nil {
		return nil, err
	}
	processor := scan.NewProcessor(resolver, repo, repo,
		scan.WithLocker(locker),
		scan.WithLogger(log.Named("scan")),
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(requestLogger(log.Named("http")), gin.Recovery())
	useCORS(r, cfg.WebOrigins)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Repo: repo,
		Resolver: resolver, Processor: processor, Log: log, Config: cfg,
	}, nil
}

// NewResolver builds the configured directory backend, wrapped with the
// Redis cache (when available) and the lookup timeout.
func NewResolver(cfg config.Config, rdb *redis.Client, log *zap.Logger) (directory.Resolver, error) {
	dlog := log.Named("directory")
	var backend directory.Resolver
	switch cfg.DirectoryBackend {
	case config.BackendPowerShell:
		backend = directory.NewPowerShellResolver(cfg.PowerShellPath, cfg.DirectoryIDField, dlog)
	case config.BackendLDAP:
		backend = directory.NewLDAPResolver(directory.LDAPConfig{
			URL:          cfg.LDAPURL,
			BindDN:       cfg.LDAPBindDN,
			BindPassword: cfg.LDAPBindPassword,
			BaseDN:       cfg.LDAPBaseDN,
			IDField:      cfg.DirectoryIDField,
			NameAttr:     cfg.LDAPNameAttr,
			Timeout:      cfg.DirectoryTimeout,
		}, dlog)
	case config.BackendStatic:
		backend = directory.StaticResolver(cfg.DirectoryStatic)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.DirectoryBackend)
	}
	if rdb != nil && cfg.IdentityCacheTTL > 0 {
		backend = directory.Cached(backend, session.NewIdentityCache(rdb, cfg.IdentityCacheTTL), dlog)
	}
	return directory.Bounded(backend, cfg.DirectoryTimeout), nil
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
