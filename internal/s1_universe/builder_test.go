package s1_universe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/config"
	"github.com/wonny/radar/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func TestBuilder_Build(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	weak := baseSnapshot()
	weak.Symbol = "2409"
	weak.DebtRatio = contracts.F(0.65)

	bank := baseFinancial()
	bank.Symbol = "2891"
	bank.NPLRatio = nil

	snapshots := []contracts.Snapshot{baseSnapshot(), weak, baseFinancial(), bank}

	builder := NewBuilder(NewFilter(), 0, testLogger())
	assert.Equal(t, DefaultPriceCap, builder.PriceCap())

	universe, results, err := builder.Build(context.Background(), date, snapshots)
	require.NoError(t, err)

	assert.Equal(t, date, universe.Date)
	assert.Equal(t, 4, universe.TotalCount)
	assert.Equal(t, []string{"2330", "2882"}, universe.Stocks)
	assert.Equal(t, "universe filter failed: debt_ratio", universe.Excluded["2409"])
	assert.Equal(t, "universe filter failed: npl", universe.Excluded["2891"])
	assert.Len(t, results, 4)
	assert.False(t, results["2891"].Checks[contracts.CheckNPL])
}

func TestBuilder_Build_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(NewFilter(), 80, testLogger())
	_, _, err := builder.Build(ctx, time.Now(), []contracts.Snapshot{baseSnapshot()})
	assert.ErrorIs(t, err, context.Canceled)
}
