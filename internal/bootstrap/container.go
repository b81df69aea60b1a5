package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"pushpilot-be/internal/config"
	"pushpilot-be/internal/controller"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/repository/contract"
	"pushpilot-be/internal/repository/implementation"
	"pushpilot-be/internal/repository/memory"
	"pushpilot-be/internal/repository/redisstore"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/internal/scheduler"
	"pushpilot-be/internal/service"
	"pushpilot-be/pkg/expo"
	"pushpilot-be/pkg/llm/factory"
	pktNats "pushpilot-be/pkg/nats"
	"pushpilot-be/pkg/tools"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const taskEventsTopic = "task-events"

type Container struct {
	// Controllers
	HealthController       controller.IHealthController
	AssistantController    controller.IAssistantController
	ExpoTokenController    controller.IExpoTokenController
	NotificationController controller.INotificationController

	// Background work, started by cmd/rest
	ConsumerService service.IConsumerService
	Scheduler       *scheduler.Scheduler

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	pushLogger := logger.NewIsolatedLogger(cfg.App.PushLogFilePath)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() {
		_ = pushLogger.Sync()
		_ = sysLogger.Sync()
	})

	// 2. Event bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var mirror service.EventMirror
	var natsHealth service.ConnectionChecker
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			mirror = natsPub
			natsHealth = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		cancel()
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	rateLimits, err := newRateLimitRepository(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	// 4. Providers
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		APIKey:      cfg.LLMAPIKey(),
		BaseURL:     llmBaseURL(cfg),
		Temperature: cfg.Ai.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	dispatcher := tools.NewDispatcher(
		tools.NewCreateTaskTool(tools.NewTaskAPIClient(cfg.Backend.TaskAPIURL, cfg.Backend.TaskAPITimeout)),
	)

	// 5. Services
	publisherService := service.NewPublisherService(taskEventsTopic, pubSub, mirror, sysLogger)
	rateLimiterService := service.NewRateLimiterService(rateLimits, cfg.RateLimit.DailyLimit, sysLogger, nil)
	assistantService := service.NewAssistantService(
		uowFactory,
		rateLimiterService,
		llmProvider,
		dispatcher,
		publisherService,
		cfg.Conversation.TTL,
		sysLogger,
		nil,
	)
	pushService := service.NewPushService(uowFactory, newExpoClient(cfg), pushLogger, nil)
	expoTokenService := service.NewExpoTokenService(uowFactory, sysLogger, nil)
	housekeepingService := service.NewHousekeepingService(
		uowFactory,
		rateLimits,
		pushService,
		cfg.RateLimit.RetentionDays,
		sysLogger,
		nil,
	)
	healthService := service.NewHealthService(db, cfg.Database.Driver, rdb, natsHealth)

	c.ConsumerService = service.NewConsumerService(pubSub, taskEventsTopic, pushService, sysLogger)
	c.Scheduler = scheduler.New(housekeepingService, cfg.App.DailyReminderEnabled, sysLogger)

	// 6. Controllers
	c.HealthController = controller.NewHealthController(healthService, housekeepingService, cfg.App.Version)
	c.AssistantController = controller.NewAssistantController(assistantService, rateLimiterService)
	c.ExpoTokenController = controller.NewExpoTokenController(expoTokenService)
	c.NotificationController = controller.NewNotificationController(pushService)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newRateLimitRepository(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (contract.RateLimitRepository, error) {
	switch cfg.RateLimit.Backend {
	case "database", "":
		return implementation.NewRateLimitRepository(db), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("RATE_LIMIT_BACKEND=redis requires REDIS_URL")
		}
		retention := time.Duration(cfg.RateLimit.RetentionDays) * 24 * time.Hour
		return redisstore.NewRateLimitRepository(rdb, retention), nil
	case "memory":
		return memory.NewRateLimitRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend %q", cfg.RateLimit.Backend)
	}
}

func newExpoClient(cfg *config.Config) *expo.Client {
	opts := []expo.Option{
		expo.WithChunkSize(cfg.Push.ChunkSize),
		expo.WithMaxConcurrency(cfg.Push.MaxConcurrency),
	}
	if cfg.Push.ExpoAccessToken != "" {
		opts = append(opts, expo.WithAccessToken(cfg.Push.ExpoAccessToken))
	}
	return expo.NewClient(cfg.Push.ExpoPushURL, 30*time.Second, opts...)
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}
