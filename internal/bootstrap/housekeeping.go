package bootstrap

import (
	"context"
	"time"

	"pushpilot-be/internal/config"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/internal/scheduler"
	"pushpilot-be/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewHousekeepingScheduler wires only what the housekeeping jobs need, so the
// CLI runs without LLM credentials or a message bus.
func NewHousekeepingScheduler(db *gorm.DB, cfg *config.Config, log logger.ILogger) (*scheduler.Scheduler, func(), error) {
	var rdb *redis.Client
	closeFn := func() {}
	if cfg.RateLimit.Backend == "redis" && cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		closeFn = func() { _ = rdb.Close() }
	}

	rateLimits, err := newRateLimitRepository(cfg, db, rdb)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	pushService := service.NewPushService(uowFactory, newExpoClient(cfg), log, nil)
	housekeeping := service.NewHousekeepingService(uowFactory, rateLimits, pushService, cfg.RateLimit.RetentionDays, log, nil)

	// the CLI always allows the reminder job; the flag only gates the cron entry
	return scheduler.New(housekeeping, true, log), closeFn, nil
}
