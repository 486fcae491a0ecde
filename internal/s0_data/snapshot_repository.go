package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/radar/internal/contracts"
)

const snapshotColumns = `
	trade_date, symbol, name, is_financial, is_cyclical,
	close, volume, ma20, ma60, ma240,
	avg_turnover_20, turnover_ratio_20, market_cap,
	roe_ttm, opm_ttm, debt_ratio,
	revenue_yoy_m1, revenue_yoy_m2, revenue_yoy_m3, eps_growth_4q,
	npl_ratio, coverage_ratio, net_income_growth_3m,
	rs60, industry_id, industry_close, industry_ma60, industry_advance_ratio_5d,
	inst_net_buy_20, industry_rank_by_size, last_quarter_growth`

// ErrSnapshotNotFound is returned when no row matches a date and symbol
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository reads resolved daily snapshots from PostgreSQL
// ⭐ SSOT: data.screening_snapshots 조회는 여기서만
//
// NULL columns stay nil; nothing is coalesced to zero.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Name identifies the source in cache keys and scan results
func (r *SnapshotRepository) Name() string {
	return "postgres"
}

// ListByDate returns every snapshot of the trade date, ordered by symbol
func (r *SnapshotRepository) ListByDate(ctx context.Context, date time.Time) ([]contracts.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM data.screening_snapshots
		WHERE trade_date = $1
		ORDER BY symbol`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]contracts.Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// GetBySymbol returns one snapshot; a missing row wraps ErrSnapshotNotFound
func (r *SnapshotRepository) GetBySymbol(ctx context.Context, date time.Time, symbol string) (contracts.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM data.screening_snapshots
		WHERE trade_date = $1 AND symbol = $2`

	snap, err := scanSnapshot(r.pool.QueryRow(ctx, query, date, symbol))
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.Snapshot{}, fmt.Errorf("%w: %s on %s", ErrSnapshotNotFound, symbol, date.Format(DateLayout))
	}
	if err != nil {
		return contracts.Snapshot{}, fmt.Errorf("get snapshot %s: %w", symbol, err)
	}
	return snap, nil
}

func scanSnapshot(row pgx.Row) (contracts.Snapshot, error) {
	var (
		s          contracts.Snapshot
		industryID *string
	)

	err := row.Scan(
		&s.Date, &s.Symbol, &s.Name, &s.IsFinancial, &s.IsCyclical,
		&s.Close, &s.Volume, &s.MA20, &s.MA60, &s.MA240,
		&s.AvgTurnover20, &s.TurnoverRatio20, &s.MarketCap,
		&s.ROETTM, &s.OPMTTM, &s.DebtRatio,
		&s.RevenueYoYM1, &s.RevenueYoYM2, &s.RevenueYoYM3, &s.EPSGrowth4Q,
		&s.NPLRatio, &s.CoverageRatio, &s.NetIncomeGrowth3M,
		&s.RS60, &industryID, &s.IndustryClose, &s.IndustryMA60, &s.IndustryAdvanceRatio5D,
		&s.InstNetBuy20, &s.IndustryRankBySize, &s.LastQuarterGrowth,
	)
	if err != nil {
		return contracts.Snapshot{}, err
	}

	if industryID != nil {
		s.IndustryID = *industryID
	}
	return s, nil
}
