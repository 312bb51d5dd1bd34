package engine

import "marketpulse/internal/domain"

// AdjustForPosition layers the caller's holdings on top of the raw verdict.
// It never mutates the analysis result; it only returns the adjusted action.
//
// With no position, sell-side suggestions make no sense (nothing to sell) and
// are softened to avoid/wait. With a position deep in profit, fresh buy
// suggestions are downgraded rather than piling on.
func AdjustForPosition(verdict Verdict, pos *domain.UserPosition) domain.SuggestedAction {
	if pos == nil || pos.Quantity <= 0 {
		switch verdict.Tier {
		case domain.TierStrongSell, domain.TierTakeProfit:
			return domain.ActionAvoid
		case domain.TierNeutral:
			return domain.ActionWait
		default:
			return verdict.Action
		}
	}

	if verdict.Tier == domain.TierStrongBuy || verdict.Tier == domain.TierBuy {
		switch {
		case pos.PnLPercent >= 2*takeProfitGainPct:
			return domain.ActionTakePartialProfit
		case pos.PnLPercent >= takeProfitGainPct:
			return domain.ActionHold
		}
	}

	return verdict.Action
}
