package engine

import (
	"testing"

	"marketpulse/internal/domain"
)

func TestAdjustForPositionNoHoldingsSuppressesSell(t *testing.T) {
	verdict := Verdict{Tier: domain.TierStrongSell, Action: domain.ActionSell}
	if got := AdjustForPosition(verdict, nil); got != domain.ActionAvoid {
		t.Fatalf("cannot sell without a position; expected avoid, got %s", got)
	}

	verdict = Verdict{Tier: domain.TierTakeProfit, Action: domain.ActionTakePartialProfit}
	if got := AdjustForPosition(verdict, &domain.UserPosition{Quantity: 0}); got != domain.ActionAvoid {
		t.Fatalf("zero quantity counts as no position; expected avoid, got %s", got)
	}
}

func TestAdjustForPositionNoHoldingsNeutralWaits(t *testing.T) {
	verdict := Verdict{Tier: domain.TierNeutral, Action: domain.ActionHold}
	if got := AdjustForPosition(verdict, nil); got != domain.ActionWait {
		t.Fatalf("expected wait, got %s", got)
	}
}

func TestAdjustForPositionNoHoldingsBuyPasses(t *testing.T) {
	verdict := Verdict{Tier: domain.TierStrongBuy, Action: domain.ActionBuy}
	if got := AdjustForPosition(verdict, nil); got != domain.ActionBuy {
		t.Fatalf("expected buy to pass through, got %s", got)
	}
}

func TestAdjustForPositionLargeGainsDowngradeBuy(t *testing.T) {
	verdict := Verdict{Tier: domain.TierBuy, Action: domain.ActionBuy}

	pos := &domain.UserPosition{Quantity: 2, PnLPercent: 30}
	if got := AdjustForPosition(verdict, pos); got != domain.ActionHold {
		t.Fatalf("expected buy downgraded to hold at +30%%, got %s", got)
	}

	pos.PnLPercent = 60
	if got := AdjustForPosition(verdict, pos); got != domain.ActionTakePartialProfit {
		t.Fatalf("expected take_partial_profit at +60%%, got %s", got)
	}

	pos.PnLPercent = 10
	if got := AdjustForPosition(verdict, pos); got != domain.ActionBuy {
		t.Fatalf("expected buy untouched at +10%%, got %s", got)
	}
}

func TestAdjustForPositionSellTiersPassWithHoldings(t *testing.T) {
	pos := &domain.UserPosition{Quantity: 1, PnLPercent: 5}
	verdict := Verdict{Tier: domain.TierStrongSell, Action: domain.ActionSell}
	if got := AdjustForPosition(verdict, pos); got != domain.ActionSell {
		t.Fatalf("expected sell with holdings, got %s", got)
	}
}
