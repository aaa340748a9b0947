package algorithms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func fact(typ string, valid bool, offset time.Duration) DocumentFact {
	return DocumentFact{Type: typ, Valid: valid, CreatedAt: t0.Add(offset)}
}

func TestEvaluate_Tiers(t *testing.T) {
	policy := DefaultScoringPolicy()

	tests := []struct {
		name       string
		docs       []DocumentFact
		wantScore  int
		wantTier   Tier
		wantReason string
	}{
		{
			name:       "no documents",
			docs:       nil,
			wantScore:  25,
			wantTier:   TierIncomplete,
			wantReason: ReasonKeyMissing,
		},
		{
			name:       "one of three",
			docs:       []DocumentFact{fact("identity", true, 0)},
			wantScore:  25,
			wantTier:   TierIncomplete,
			wantReason: ReasonKeyMissing,
		},
		{
			name:       "two of three",
			docs:       []DocumentFact{fact("identity", true, 0), fact("income_proof", true, time.Minute)},
			wantScore:  60,
			wantTier:   TierYellow,
			wantReason: ReasonSomeMissing,
		},
		{
			name: "all required valid",
			docs: []DocumentFact{
				fact("identity", true, 0),
				fact("income_proof", true, time.Minute),
				fact("debt_extract", true, 2*time.Minute),
			},
			wantScore:  85,
			wantTier:   TierGreen,
			wantReason: ReasonAllValid,
		},
		{
			name: "optional permit does not count",
			docs: []DocumentFact{
				fact("identity", true, 0),
				fact("residence_permit", true, time.Minute),
			},
			wantScore: 25,
			wantTier:  TierIncomplete,
		},
		{
			name: "invalid required documents do not count",
			docs: []DocumentFact{
				fact("identity", false, 0),
				fact("income_proof", false, 0),
				fact("debt_extract", true, 0),
			},
			wantScore: 25,
			wantTier:  TierIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.docs, policy)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantTier, res.Tier)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, res.Reason)
			}
			assert.Equal(t, 3, res.RequiredTotal)
		})
	}
}

func TestEvaluate_NoRequirements(t *testing.T) {
	policy := DefaultScoringPolicy()
	policy.RequiredTypes = nil

	res := Evaluate([]DocumentFact{fact("identity", false, 0)}, policy)

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, TierGreen, res.Tier)
}

func TestEvaluate_StrictHalf(t *testing.T) {
	// 2 of 4 is exactly half and must not reach yellow
	policy := DefaultScoringPolicy()
	policy.RequiredTypes = []string{"identity", "debt_extract", "income_proof", "lease"}

	res := Evaluate([]DocumentFact{fact("identity", true, 0), fact("lease", true, 0)}, policy)
	assert.Equal(t, TierIncomplete, res.Tier)

	res = Evaluate([]DocumentFact{fact("identity", true, 0), fact("lease", true, 0), fact("debt_extract", true, 0)}, policy)
	assert.Equal(t, TierYellow, res.Tier)

	// 1 of 2 is exactly half as well
	policy.RequiredTypes = []string{"identity", "debt_extract"}
	res = Evaluate([]DocumentFact{fact("identity", true, 0)}, policy)
	assert.Equal(t, TierIncomplete, res.Tier)
}

func TestEvaluate_ReuploadLastWriteWins(t *testing.T) {
	policy := DefaultScoringPolicy()
	base := []DocumentFact{fact("identity", true, 0), fact("debt_extract", true, 0)}

	invalidThenValid := append(append([]DocumentFact{}, base...),
		fact("income_proof", false, time.Minute),
		fact("income_proof", true, 2*time.Minute),
	)
	assert.Equal(t, 85, Evaluate(invalidThenValid, policy).Score)

	validThenInvalid := append(append([]DocumentFact{}, base...),
		fact("income_proof", true, time.Minute),
		fact("income_proof", false, 2*time.Minute),
	)
	assert.Equal(t, 60, Evaluate(validThenInvalid, policy).Score)

	// order of the slice does not matter, timestamps do
	shuffled := []DocumentFact{
		fact("income_proof", true, 2*time.Minute),
		fact("identity", true, 0),
		fact("income_proof", false, time.Minute),
		fact("debt_extract", true, 0),
	}
	assert.Equal(t, 85, Evaluate(shuffled, policy).Score)
}

func TestEvaluate_MonotoneInValidCount(t *testing.T) {
	types := []string{"a", "b", "c", "d", "e", "f", "g"}
	for n := 1; n <= len(types); n++ {
		policy := DefaultScoringPolicy()
		policy.RequiredTypes = types[:n]

		prev := -1
		for v := 0; v <= n; v++ {
			var docs []DocumentFact
			for _, typ := range types[:v] {
				docs = append(docs, fact(typ, true, 0))
			}
			res := Evaluate(docs, policy)
			assert.GreaterOrEqual(t, res.Score, prev, "n=%d v=%d", n, v)
			prev = res.Score

			// score 85 <=> green <=> all valid
			assert.Equal(t, v == n, res.Score == 85, "n=%d v=%d", n, v)
			assert.Equal(t, v == n, res.Tier == TierGreen, "n=%d v=%d", n, v)
			// the count-based tier agrees with the threshold view
			assert.Equal(t, policy.TierForScore(res.Score), res.Tier, "n=%d v=%d", n, v)
		}
	}
}

func TestTierForScore(t *testing.T) {
	p := DefaultScoringPolicy()
	assert.Equal(t, TierGreen, p.TierForScore(100))
	assert.Equal(t, TierGreen, p.TierForScore(80))
	assert.Equal(t, TierYellow, p.TierForScore(79))
	assert.Equal(t, TierYellow, p.TierForScore(60))
	assert.Equal(t, TierIncomplete, p.TierForScore(59))
	assert.Equal(t, TierIncomplete, p.TierForScore(0))
}

func TestScoringPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultScoringPolicy().Validate())

	p := DefaultScoringPolicy()
	p.CompleteScore = 75
	assert.Error(t, p.Validate(), "complete score under the green threshold")

	p = DefaultScoringPolicy()
	p.MissingScore = 60
	assert.Error(t, p.Validate(), "missing score on the yellow threshold")

	p = DefaultScoringPolicy()
	p.YellowThreshold = 90
	assert.Error(t, p.Validate())

	p = DefaultScoringPolicy()
	p.RequiredTypes = []string{"identity", "identity"}
	assert.Error(t, p.Validate())
}
