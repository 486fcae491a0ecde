package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/logger"
	"github.com/wonny/radar/pkg/redis"
)

// HealthCheckJob probes the database pool and redis between scans
type HealthCheckJob struct {
	db     *database.DB  // optional
	redis  *redis.Client // optional
	logger *logger.Logger
}

// NewHealthCheckJob creates a new health check job; both dependencies may be nil
func NewHealthCheckJob(db *database.DB, rc *redis.Client, log *logger.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		db:     db,
		redis:  rc,
		logger: log,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *HealthCheckJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the health probes
func (j *HealthCheckJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if j.db != nil {
		status := j.db.HealthCheck(ctx)
		if !status.Healthy {
			return fmt.Errorf("database unhealthy: %s", status.Error)
		}
		j.logger.WithFields(map[string]interface{}{
			"response_time": status.ResponseTime,
			"total_conns":   status.TotalConns,
			"idle_conns":    status.IdleConns,
		}).Debug("Database healthy")
	}

	if j.redis != nil {
		if err := j.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}

	return nil
}
