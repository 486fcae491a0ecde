package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s0_data"
	"github.com/wonny/radar/pkg/logger"
	"github.com/wonny/radar/pkg/redis"
)

// ResultStore receives finished scan results
type ResultStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DailyScanJob classifies the whole market once per trading day
// ⭐ SSOT: 일일 스캔 스케줄은 이 Job에서만
type DailyScanJob struct {
	orchestrator *brain.Orchestrator
	source       contracts.SnapshotSource
	store        ResultStore // optional
	location     *time.Location
	now          func() time.Time
	logger       *logger.Logger

	mu   sync.RWMutex
	last *contracts.ScanResult
}

// NewDailyScanJob creates a new daily scan job. store may be nil.
// The trade date is today's date in loc (local time when nil).
func NewDailyScanJob(orch *brain.Orchestrator, source contracts.SnapshotSource, store ResultStore, loc *time.Location, log *logger.Logger) *DailyScanJob {
	if loc == nil {
		loc = time.Local
	}
	return &DailyScanJob{
		orchestrator: orch,
		source:       source,
		store:        store,
		location:     loc,
		now:          time.Now,
		logger:       log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule derived from the rule file (weekdays)
func (j *DailyScanJob) Schedule() string {
	spec, err := j.orchestrator.Rules().Scan.CronSpec()
	if err != nil {
		// 규칙 로드 시 이미 검증됨
		return "0 30 18 * * 1-5"
	}
	return spec
}

// TradeDate returns the date the next run will scan
func (j *DailyScanJob) TradeDate() time.Time {
	y, m, d := j.now().In(j.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Run executes the scan and publishes the result
func (j *DailyScanJob) Run(ctx context.Context) error {
	date := j.TradeDate()
	j.logger.WithField("date", date.Format(s0_data.DateLayout)).Info("Starting scheduled scan")

	result, err := j.orchestrator.Run(ctx, brain.RunConfig{
		Date:   date,
		Source: j.source,
	})
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	if len(result.Ranked) == 0 {
		j.logger.WithField("date", date.Format(s0_data.DateLayout)).Warn("No snapshots for trade date (holiday or data not loaded)")
	}

	if j.store != nil {
		key := ResultKey(date, result.ConfigHash)
		ttl := j.orchestrator.Rules().Scan.CacheTTL
		if err := j.store.Set(ctx, key, result, ttl); err != nil {
			return fmt.Errorf("store scan result: %w", err)
		}
	}

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"tier_counts": result.TierCounts,
		"e":           result.ECandidates,
	}).Info("Scheduled scan completed")

	return nil
}

// LastResult returns the most recent successful result, or nil
func (j *DailyScanJob) LastResult() *contracts.ScanResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

// ResultKey is the cache key a daily scan result is stored under
func ResultKey(date time.Time, configHash string) string {
	return redis.Key("scan", date.Format(s0_data.DateLayout), configHash)
}
