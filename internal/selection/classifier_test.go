package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s1_universe"
	"github.com/wonny/radar/internal/s2_signals"
)

func passedUniverse() contracts.UniverseResult {
	return contracts.UniverseResult{Passed: true, Reason: "OK", Checks: map[string]bool{}}
}

func firmWith(count int) contracts.FirmResult {
	flags := []bool{false, false, false, false}
	for i := 0; i < count; i++ {
		flags[i] = true
	}
	return contracts.NewFirmResult(flags[0], flags[1], flags[2], flags[3])
}

func fundamentals(roe, opm float64, revenue ...float64) contracts.Snapshot {
	snap := contracts.Snapshot{
		Symbol: "005930",
		Name:   "Sample",
		Close:  50,
		ROETTM: contracts.F(roe),
		OPMTTM: contracts.F(opm),
	}
	ptrs := []**float64{&snap.RevenueYoYM1, &snap.RevenueYoYM2, &snap.RevenueYoYM3}
	for i, v := range revenue {
		*ptrs[i] = contracts.F(v)
	}
	return snap
}

func eCandidateSnapshot() contracts.Snapshot {
	snap := fundamentals(0.15, 0.08, 0.06, 0.07, 0.08)
	snap.RS60 = 80
	snap.InstNetBuy20 = contracts.F(1_000_000)
	snap.IndustryRankBySize = contracts.I(2)
	snap.LastQuarterGrowth = contracts.F(0.12)
	return snap
}

func TestClassifier_FullPipelineTierA(t *testing.T) {
	snap := contracts.Snapshot{
		Symbol:          "000660",
		Name:            "Leader",
		Close:           50,
		Volume:          3_000_000,
		MA20:            contracts.F(48),
		MA60:            contracts.F(45),
		MA240:           contracts.F(40),
		AvgTurnover20:   contracts.F(1e8),
		TurnoverRatio20: contracts.F(0.01),
		MarketCap:       2e9,
		ROETTM:          contracts.F(0.30),
		OPMTTM:          contracts.F(0.30),
		DebtRatio:       contracts.F(0.3),
		RevenueYoYM1:    contracts.F(0.06),
		RevenueYoYM2:    contracts.F(0.07),
		RevenueYoYM3:    contracts.F(0.08),
		EPSGrowth4Q:     contracts.F(0.30),
		RS60:            60,
	}

	universe := s1_universe.NewFilter().Evaluate(snap, s1_universe.DefaultPriceCap)
	require.True(t, universe.Passed, universe.Reason)

	firm := s2_signals.NewFirmEvaluator(s2_signals.DefaultFirmPolicy()).Evaluate(snap)
	require.True(t, firm.IsFirm)

	score := s2_signals.NewScorer().Score(snap, firm)
	require.Equal(t, 84, score.Total)

	got := NewClassifier().Classify(snap, universe, firm, score)
	assert.Equal(t, contracts.TierA, got.Tier)
	assert.False(t, got.ECandidate, "RS60 60 is below the E threshold")
	assert.Equal(t, "000660", got.Symbol)
	assert.Equal(t, "Leader", got.Name)
	assert.Equal(t, score, got.Score)
}

func TestClassifier_EliminatedWhenUniverseFails(t *testing.T) {
	universe := contracts.UniverseResult{
		Passed: false,
		Checks: map[string]bool{contracts.CheckDebtRatio: false},
		Reason: "universe filter failed: debt_ratio",
	}
	snap := eCandidateSnapshot()

	got := NewClassifier().Classify(snap, universe, firmWith(4), contracts.ScoreResult{Total: 100})

	assert.Equal(t, contracts.TierEliminated, got.Tier)
	assert.False(t, got.ECandidate)
	assert.Equal(t, "universe filter failed: debt_ratio", got.Reason)
}

func TestClassifier_EliminatedReasonWithoutDetail(t *testing.T) {
	got := NewClassifier().Classify(contracts.Snapshot{Symbol: "X"}, contracts.UniverseResult{}, firmWith(4), contracts.ScoreResult{Total: 90})
	assert.Equal(t, contracts.TierEliminated, got.Tier)
	assert.Equal(t, "universe filter failed", got.Reason)
}

func TestClassifier_DecisionTree(t *testing.T) {
	tests := []struct {
		name  string
		snap  contracts.Snapshot
		firm  int
		score int
		want  contracts.Tier
	}{
		{"firm 4/4 and score 70 is A", fundamentals(0.15, 0.08, 0.06), 4, 70, contracts.TierA},
		{"firm 4/4 and score 69 is B by band", fundamentals(0.15, 0.08, 0.06), 4, 69, contracts.TierB},
		{"firm 3/4 with score 55 is B", fundamentals(0.15, 0.08, 0.06), 3, 55, contracts.TierB},
		{"firm 3/4 with score 90 is B", fundamentals(0.15, 0.08, 0.06), 3, 90, contracts.TierB},
		{"score 60 lower band edge", fundamentals(0, 0), 0, 60, contracts.TierB},
		{"score 70 without firm is not B", fundamentals(0, 0), 0, 70, contracts.TierEliminated},
		{"firm 4/4 low score with quality is C", fundamentals(0.12, 0.03, 0.06, 0.07, 0.08), 4, 55, contracts.TierC},
		{"C via last month growth", fundamentals(0.12, 0.03, 0.05, -0.10, -0.10), 4, 40, contracts.TierC},
		{"ROE exactly 0.10 misses C, lands D", fundamentals(0.10, 0.03, 0.06), 4, 55, contracts.TierD},
		{"firm 2/4 bottom line 2/3 is D", fundamentals(0.09, 0.01, -0.02), 2, 40, contracts.TierD},
		{"firm 2/4 bottom line 1/3 is eliminated", fundamentals(0.09, 0.01, -0.05), 2, 40, contracts.TierEliminated},
		{"firm 1/4 is eliminated", fundamentals(0.15, 0.08, 0.06), 1, 40, contracts.TierEliminated},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.snap, passedUniverse(), firmWith(tt.firm), contracts.ScoreResult{Total: tt.score})
			assert.Equal(t, tt.want, got.Tier, got.Reason)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestClassifier_FirmWithoutPriceSkipsC(t *testing.T) {
	// price false, volume/trend/group true
	firm := contracts.NewFirmResult(false, true, true, true)
	snap := fundamentals(0.12, 0.03, 0.06)

	got := NewClassifier().Classify(snap, passedUniverse(), firm, contracts.ScoreResult{Total: 40})
	assert.Equal(t, contracts.TierB, got.Tier, "count 3 is caught by B first")

	firm = contracts.NewFirmResult(false, true, false, true)
	got = NewClassifier().Classify(snap, passedUniverse(), firm, contracts.ScoreResult{Total: 40})
	assert.Equal(t, contracts.TierD, got.Tier)
}

func TestClassifier_LowFirmCountEliminated(t *testing.T) {
	// roe passes, opm 0.02 passes (>=), revenue fails → tally 2, firm 1/4
	snap := fundamentals(0.12, 0.02, -0.05, -0.05, -0.05)

	got := NewClassifier().Classify(snap, passedUniverse(), firmWith(1), contracts.ScoreResult{Total: 35})

	assert.Equal(t, contracts.TierEliminated, got.Tier)
	assert.Contains(t, got.Reason, "bottom line 2/3")
}

func TestClassifier_AbsentFundamentalsFailClosed(t *testing.T) {
	snap := contracts.Snapshot{
		Symbol:       "A",
		RevenueYoYM1: contracts.F(0.06),
	}

	got := NewClassifier().Classify(snap, passedUniverse(), firmWith(4), contracts.ScoreResult{Total: 40})

	assert.Equal(t, contracts.TierEliminated, got.Tier)
	assert.Contains(t, got.Reason, "bottom line 1/3")
}

func TestIsECandidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *contracts.Snapshot)
		want   bool
	}{
		{"all conditions met", func(s *contracts.Snapshot) {}, true},
		{"RS60 boundary", func(s *contracts.Snapshot) { s.RS60 = 75 }, true},
		{"RS60 below", func(s *contracts.Snapshot) { s.RS60 = 74.9 }, false},
		{"zero net buying counts", func(s *contracts.Snapshot) { s.InstNetBuy20 = contracts.F(0) }, true},
		{"net selling", func(s *contracts.Snapshot) { s.InstNetBuy20 = contracts.F(-1) }, false},
		{"net buy absent", func(s *contracts.Snapshot) { s.InstNetBuy20 = nil }, false},
		{"rank 3", func(s *contracts.Snapshot) { s.IndustryRankBySize = contracts.I(3) }, true},
		{"rank 4", func(s *contracts.Snapshot) { s.IndustryRankBySize = contracts.I(4) }, false},
		{"rank absent", func(s *contracts.Snapshot) { s.IndustryRankBySize = nil }, false},
		{"growth boundary", func(s *contracts.Snapshot) { s.LastQuarterGrowth = contracts.F(0.10) }, true},
		{"growth below", func(s *contracts.Snapshot) { s.LastQuarterGrowth = contracts.F(0.09) }, false},
		{"growth absent", func(s *contracts.Snapshot) { s.LastQuarterGrowth = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := eCandidateSnapshot()
			tt.mutate(&snap)
			assert.Equal(t, tt.want, IsECandidate(snap))
		})
	}
}

func TestClassifier_ECandidateIndependentOfTier(t *testing.T) {
	snap := eCandidateSnapshot()

	got := NewClassifier().Classify(snap, passedUniverse(), firmWith(2), contracts.ScoreResult{Total: 20})

	assert.Equal(t, contracts.TierD, got.Tier)
	assert.True(t, got.ECandidate)
}

func TestClassifier_Idempotent(t *testing.T) {
	snap := eCandidateSnapshot()
	firm := firmWith(3)
	score := contracts.ScoreResult{Total: 65}
	c := NewClassifier()

	first := c.Classify(snap, passedUniverse(), firm, score)
	second := c.Classify(snap, passedUniverse(), firm, score)

	assert.Equal(t, first, second)
}
