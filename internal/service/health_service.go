package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/domain"
)

// Probe names used for metrics and logs.
const (
	ProbeLiveness = "liveness"
	ProbeDatabase = "database"
	ProbeStorage  = "storage"
)

// Pinger is a dependency that can prove it is reachable with one round trip.
// db.Checker and storage.S3Store implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeObserver is notified after every probe. It may be nil.
type ProbeObserver func(probe string, healthy bool, took time.Duration)

// HealthService answers liveness, readiness and greeting queries.
// It holds no mutable state; every call builds a fresh HealthStatus.
type HealthService struct {
	database Pinger
	storage  Pinger
	ping     string
	logger   *zap.Logger
	observe  ProbeObserver
}

func NewHealthService(database, storage Pinger, ping string, logger *zap.Logger, observe ProbeObserver) *HealthService {
	if observe == nil {
		observe = func(string, bool, time.Duration) {}
	}
	return &HealthService{
		database: database,
		storage:  storage,
		ping:     ping,
		logger:   logger,
		observe:  observe,
	}
}

// Liveness reports that the process can answer requests. It never touches
// a dependency.
func (s *HealthService) Liveness() domain.HealthStatus {
	s.observe(ProbeLiveness, true, 0)
	return domain.Healthy(domain.MsgHealthy)
}

// Readiness runs one SELECT 1 against the database. The failure cause is
// logged but never placed in the returned message.
func (s *HealthService) Readiness(ctx context.Context) domain.HealthStatus {
	return s.check(ctx, ProbeDatabase, s.database, domain.MsgDatabaseHealthy, domain.MsgDatabaseUnhealthy)
}

// StorageReadiness lists one key from the object store bucket.
func (s *HealthService) StorageReadiness(ctx context.Context) domain.HealthStatus {
	return s.check(ctx, ProbeStorage, s.storage, domain.MsgStorageHealthy, domain.MsgStorageUnhealthy)
}

// Hello returns the fixed greeting.
func (s *HealthService) Hello() string {
	return fmt.Sprintf("Hello World - PING: %s", s.ping)
}

func (s *HealthService) check(ctx context.Context, probe string, dep Pinger, okMsg, failMsg string) domain.HealthStatus {
	if dep == nil {
		s.logger.Warn("health probe has no dependency configured", zap.String("probe", probe))
		s.observe(probe, false, 0)
		return domain.Unhealthy(failMsg)
	}

	start := time.Now()
	err := dep.Ping(ctx)
	took := time.Since(start)
	s.observe(probe, err == nil, took)

	if err != nil {
		s.logger.Warn("health probe failed",
			zap.String("probe", probe),
			zap.Duration("took", took),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrDependencyUnavailable, err)),
		)
		return domain.Unhealthy(failMsg)
	}
	return domain.Healthy(okMsg)
}
