package contracts

import (
	"context"
	"time"
)

// SnapshotSource supplies normalized snapshots (S0)
// ⭐ SSOT: 스냅샷 공급 인터페이스 (DB, 파일, 캐시)
type SnapshotSource interface {
	// Name identifies the provider (used in cache keys and logs)
	Name() string
	ListByDate(ctx context.Context, date time.Time) ([]Snapshot, error)
}

// SnapshotGate rejects snapshots that cannot be classified (S0)
type SnapshotGate interface {
	Check(snap Snapshot) error
}

// UniverseEvaluator decides universe membership (S1)
type UniverseEvaluator interface {
	Evaluate(snap Snapshot, priceCap float64) UniverseResult
}

// FirmChecker evaluates the momentum confirmation vector (S2)
type FirmChecker interface {
	Evaluate(snap Snapshot) FirmResult
}

// ScoreCalculator computes the composite score (S2)
type ScoreCalculator interface {
	Score(snap Snapshot, firm FirmResult) ScoreResult
}

// TierClassifier assigns the final tier (S3)
type TierClassifier interface {
	Classify(snap Snapshot, universe UniverseResult, firm FirmResult, score ScoreResult) Classification
}
