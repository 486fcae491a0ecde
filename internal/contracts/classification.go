package contracts

import (
	"fmt"
	"strings"
)

// Tier is the final classification bucket
type Tier uint8

const (
	TierEliminated Tier = iota
	TierA
	TierB
	TierC
	TierD
)

var tierNames = map[Tier]string{
	TierA:          "A",
	TierB:          "B",
	TierC:          "C",
	TierD:          "D",
	TierEliminated: "Eliminated",
}

// Tiers lists every tier in ranking order
var Tiers = []Tier{TierA, TierB, TierC, TierD, TierEliminated}

// String returns the tier label
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// Valid reports whether t is one of the defined tiers
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// Order returns the sort position (A first, Eliminated last)
func (t Tier) Order() int {
	switch t {
	case TierA:
		return 0
	case TierB:
		return 1
	case TierC:
		return 2
	case TierD:
		return 3
	default:
		return 4
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier: %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier parses a tier label (case-insensitive)
func ParseTier(s string) (Tier, error) {
	for tier, name := range tierNames {
		if strings.EqualFold(s, name) {
			return tier, nil
		}
	}
	return TierEliminated, fmt.Errorf("unknown tier: %q", s)
}

// Classification is the terminal pipeline record for one security
// ⭐ SSOT: S4 분류 결과 (표시 계층으로 전달)
type Classification struct {
	Symbol     string         `json:"symbol"`
	Name       string         `json:"name"`
	Tier       Tier           `json:"tier"`
	ECandidate bool           `json:"e_candidate"`
	Universe   UniverseResult `json:"universe"`
	Firm       FirmResult     `json:"firm"`
	Score      ScoreResult    `json:"score"`
	Reason     string         `json:"reason"`
}

// IsActionable reports whether the security landed in a tradable tier
func (c Classification) IsActionable() bool {
	return c.Tier != TierEliminated
}
