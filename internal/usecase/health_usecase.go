package usecase

import (
	"context"
	"time"
)

// Pinger is anything that can report whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	db    Pinger
	redis Pinger
}

// NewHealthUsecase checks the database and, when configured, Redis. redis may be nil.
func NewHealthUsecase(db Pinger, redis Pinger) HealthUsecase {
	return &healthUsecase{db: db, redis: redis}
}

// Check reports each dependency. healthy is false only when the database is down.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "disabled"}
	healthy := true
	if u.db == nil || u.db.Ping(ctx) != nil {
		status["database"] = "down"
		status["status"] = "degraded"
		healthy = false
	}
	if u.redis != nil {
		if err := u.redis.Ping(ctx); err != nil {
			status["redis"] = "down"
			status["status"] = "degraded"
		} else {
			status["redis"] = "ok"
		}
	}
	return status, healthy
}
