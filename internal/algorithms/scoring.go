package algorithms

import (
	"fmt"
	"time"
)

// Tier is the coarse bucket of a tenant score.
type Tier string

const (
	TierGreen      Tier = "green"
	TierYellow     Tier = "yellow"
	TierIncomplete Tier = "incomplete"
)

const (
	ReasonAllValid       = "all required documents valid"
	ReasonSomeMissing    = "some documents missing"
	ReasonKeyMissing     = "key documents missing"
	ReasonNoRequirements = "no required documents configured"
)

// ScoringPolicy holds the configurable part of the scoring engine.
// The thresholds are the contract downstream filters rely on; the tier
// scores must land on the matching side of them.
type ScoringPolicy struct {
	RequiredTypes       []string
	CompleteScore       int
	PartialScore        int
	MissingScore        int
	NoRequirementsScore int
	GreenThreshold      int
	YellowThreshold     int
}

// DefaultScoringPolicy is the Swiss default: identity, debt extract and
// income proof are mandatory, the residence permit is optional.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		RequiredTypes:       []string{"identity", "debt_extract", "income_proof"},
		CompleteScore:       85,
		PartialScore:        60,
		MissingScore:        25,
		NoRequirementsScore: 100,
		GreenThreshold:      80,
		YellowThreshold:     60,
	}
}

// Validate checks that the count-based tiers and the threshold view agree.
func (p ScoringPolicy) Validate() error {
	if p.YellowThreshold > p.GreenThreshold {
		return fmt.Errorf("yellow threshold %d is above green threshold %d", p.YellowThreshold, p.GreenThreshold)
	}
	checks := []struct {
		name  string
		score int
		want  Tier
	}{
		{"complete", p.CompleteScore, TierGreen},
		{"partial", p.PartialScore, TierYellow},
		{"missing", p.MissingScore, TierIncomplete},
		{"no_requirements", p.NoRequirementsScore, TierGreen},
	}
	for _, c := range checks {
		if c.score < 0 || c.score > 100 {
			return fmt.Errorf("%s score %d outside 0..100", c.name, c.score)
		}
		if got := p.TierForScore(c.score); got != c.want {
			return fmt.Errorf("%s score %d maps to %s, want %s", c.name, c.score, got, c.want)
		}
	}
	seen := make(map[string]bool, len(p.RequiredTypes))
	for _, t := range p.RequiredTypes {
		if seen[t] {
			return fmt.Errorf("required type %q listed twice", t)
		}
		seen[t] = true
	}
	return nil
}

// TierForScore is the display view: >= green threshold is green,
// >= yellow threshold is yellow, anything below is incomplete.
func (p ScoringPolicy) TierForScore(score int) Tier {
	switch {
	case score >= p.GreenThreshold:
		return TierGreen
	case score >= p.YellowThreshold:
		return TierYellow
	default:
		return TierIncomplete
	}
}

// DocumentFact is the part of a stored document the engine looks at.
type DocumentFact struct {
	Type      string
	Valid     bool
	CreatedAt time.Time
}

type ScoreResult struct {
	Score         int    `json:"score"`
	Tier          Tier   `json:"status"`
	Reason        string `json:"reason"`
	ValidRequired int    `json:"valid_required"`
	RequiredTotal int    `json:"required_total"`
}

// Evaluate scores a candidate's document set. It is a pure function of the
// documents and the policy: a missing document lowers the score, it is never an error.
func Evaluate(docs []DocumentFact, policy ScoringPolicy) ScoreResult {
	total := len(policy.RequiredTypes)
	if total == 0 {
		return ScoreResult{
			Score:  policy.NoRequirementsScore,
			Tier:   TierGreen,
			Reason: ReasonNoRequirements,
		}
	}

	latest := LatestByType(docs)
	valid := 0
	for _, t := range policy.RequiredTypes {
		if d, ok := latest[t]; ok && d.Valid {
			valid++
		}
	}

	res := ScoreResult{ValidRequired: valid, RequiredTotal: total}
	switch {
	case valid == total:
		res.Score, res.Tier, res.Reason = policy.CompleteScore, TierGreen, ReasonAllValid
	case float64(valid) > float64(total)/2:
		res.Score, res.Tier, res.Reason = policy.PartialScore, TierYellow, ReasonSomeMissing
	default:
		res.Score, res.Tier, res.Reason = policy.MissingScore, TierIncomplete, ReasonKeyMissing
	}
	return res
}

// LatestByType keeps the most recently created document per type.
// On equal timestamps the later element of the slice wins.
func LatestByType(docs []DocumentFact) map[string]DocumentFact {
	latest := make(map[string]DocumentFact, len(docs))
	for _, d := range docs {
		cur, ok := latest[d.Type]
		if !ok || !d.CreatedAt.Before(cur.CreatedAt) {
			latest[d.Type] = d
		}
	}
	return latest
}
