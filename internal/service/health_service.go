package service

import (
	"context"
	"time"

	"pushpilot-be/internal/dto"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ConnectionChecker reports whether an optional dependency is reachable.
type ConnectionChecker interface {
	Connected() bool
}

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	db      *gorm.DB
	driver  string
	rdb     *redis.Client
	nats    ConnectionChecker
	timeout time.Duration
}

// NewHealthService checks the database and, when configured, Redis and NATS.
// rdb and nats may be nil.
func NewHealthService(db *gorm.DB, driver string, rdb *redis.Client, nats ConnectionChecker) IHealthService {
	return &healthService{
		db:      db,
		driver:  driver,
		rdb:     rdb,
		nats:    nats,
		timeout: 2 * time.Second,
	}
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := &dto.HealthResponse{
		Status:   "healthy",
		Message:  "Service is running",
		Database: "connected",
		DBDriver: s.driver,
	}

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		res.Status = "unhealthy"
		res.Message = "Database connection failed: " + err.Error()
		res.Database = "disconnected"
	}

	if s.rdb != nil {
		res.Redis = "connected"
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			res.Redis = "disconnected"
		}
	}

	if s.nats != nil {
		res.Nats = "connected"
		if !s.nats.Connected() {
			res.Nats = "disconnected"
		}
	}

	return res
}
