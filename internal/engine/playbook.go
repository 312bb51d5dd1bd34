package engine

import (
	"fmt"
	"sort"
	"strings"

	"marketpulse/internal/domain"
)

// Playbook thresholds. Every cutoff is inclusive (>=); the boundary tests in
// playbook_test.go pin the exactly-at-threshold behavior.
const (
	StrongBuyThreshold  = 7.5
	BuyThreshold        = 6.0
	StrongSellThreshold = 7.5
	TakeProfitThreshold = 6.0
	HighRiskThreshold   = 70.0

	// takeProfitGainPct is the unrealized gain above which buy-tier
	// suggestions are softened for an existing position.
	takeProfitGainPct = 25.0

	maxKeyFactors = 4
)

// PlaybookInput is everything the tier decision reads.
type PlaybookInput struct {
	BuyScore  float64
	SellScore float64
	RiskScore float64
	Regime    domain.MarketRegime
	Position  *domain.UserPosition
}

// Verdict is the tier decision plus its default action.
type Verdict struct {
	Tier   domain.Tier
	Action domain.SuggestedAction
	Rule   string
}

type playbookRule struct {
	name    string
	matches func(in PlaybookInput) bool
	tier    domain.Tier
	action  domain.SuggestedAction
}

// The rule table is evaluated top to bottom, first match wins. The risk veto
// sits first on purpose: risk above the high-risk threshold overrides any
// directional score, however bullish.
var playbook = []playbookRule{
	{
		name:   "risk_veto",
		tier:   domain.TierHighRiskAvoid,
		action: domain.ActionAvoid,
		matches: func(in PlaybookInput) bool {
			return in.RiskScore > HighRiskThreshold
		},
	},
	{
		name:   "strong_buy",
		tier:   domain.TierStrongBuy,
		action: domain.ActionBuy,
		matches: func(in PlaybookInput) bool {
			return in.BuyScore >= StrongBuyThreshold && in.SellScore < in.BuyScore
		},
	},
	{
		name:   "buy",
		tier:   domain.TierBuy,
		action: domain.ActionBuy,
		matches: func(in PlaybookInput) bool {
			return in.BuyScore >= BuyThreshold && in.SellScore < in.BuyScore
		},
	},
	{
		name:   "strong_sell",
		tier:   domain.TierStrongSell,
		action: domain.ActionSell,
		matches: func(in PlaybookInput) bool {
			return in.SellScore >= StrongSellThreshold
		},
	},
	{
		name:   "take_profit",
		tier:   domain.TierTakeProfit,
		action: domain.ActionTakePartialProfit,
		matches: func(in PlaybookInput) bool {
			return in.SellScore >= TakeProfitThreshold &&
				in.SellScore > in.BuyScore &&
				in.Position != nil && in.Position.PnLPercent > 0
		},
	},
	{
		name:    "neutral",
		tier:    domain.TierNeutral,
		action:  domain.ActionHold,
		matches: func(in PlaybookInput) bool { return true },
	},
}

// EvaluatePlaybook maps the aggregated scores to a recommendation tier.
func EvaluatePlaybook(in PlaybookInput) Verdict {
	for _, rule := range playbook {
		if rule.matches(in) {
			return Verdict{Tier: rule.tier, Action: rule.action, Rule: rule.name}
		}
	}
	// unreachable: the neutral rule always matches
	return Verdict{Tier: domain.TierNeutral, Action: domain.ActionHold, Rule: "neutral"}
}

// KeyFactors selects the highest-magnitude contributing factors across all
// layers: sorted by absolute contribution descending, then layer name and
// factor name ascending so ties break deterministically.
func KeyFactors(layers []domain.LayerScore) []domain.Factor {
	all := make([]domain.Factor, 0, len(layers)*4)
	for _, l := range layers {
		all = append(all, l.Factors...)
	}
	sort.Slice(all, func(i, j int) bool {
		ai, aj := abs(all[i].Contribution), abs(all[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		if all[i].Layer != all[j].Layer {
			return all[i].Layer < all[j].Layer
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > maxKeyFactors {
		all = all[:maxKeyFactors]
	}
	return all
}

// BuildExplanation renders the human-readable reasoning from the key factors.
func BuildExplanation(regime domain.MarketRegime, verdict Verdict, factors []domain.Factor) string {
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		parts = append(parts, f.Description)
	}
	return fmt.Sprintf("%s market; %s: %s", regime, tierLabel(verdict.Tier), strings.Join(parts, "; "))
}

func tierLabel(t domain.Tier) string {
	switch t {
	case domain.TierStrongBuy:
		return "Strong Buy"
	case domain.TierBuy:
		return "Buy"
	case domain.TierNeutral:
		return "Neutral"
	case domain.TierTakeProfit:
		return "Take Profit"
	case domain.TierStrongSell:
		return "Strong Sell"
	case domain.TierHighRiskAvoid:
		return "High-Risk Avoid"
	}
	return string(t)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
