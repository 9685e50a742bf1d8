package engine

import (
	"testing"

	"github.com/nvraj/mandi/internal/core"
)

func TestEvaluateOutcomeProfit(t *testing.T) {
	out := EvaluateOutcome(core.IntPtr(21600), core.IntPtr(17000), 18000, "Diplomatic", "Analytical", 5, false)

	if out.MarginType != core.MarginProfit {
		t.Errorf("margin type = %s, want %s", out.MarginType, core.MarginProfit)
	}
	if out.Margin == nil || *out.Margin != 1000 {
		t.Errorf("margin = %v, want 1000", out.Margin)
	}
	if want := 5.56; out.BuyerProfitPercent != want {
		t.Errorf("buyer profit = %v, want %v", out.BuyerProfitPercent, want)
	}
	if out.Regret {
		t.Error("regret set on a below-market deal")
	}
	if out.TotalRounds != 5 {
		t.Errorf("total rounds = %d, want 5", out.TotalRounds)
	}
}

func TestEvaluateOutcomeLossAndRegret(t *testing.T) {
	out := EvaluateOutcome(core.IntPtr(21600), core.IntPtr(19000), 18000, "Diplomatic", "Analytical", 7, false)

	if out.MarginType != core.MarginLoss {
		t.Errorf("margin type = %s, want %s", out.MarginType, core.MarginLoss)
	}
	if out.Margin == nil || *out.Margin != -1000 {
		t.Errorf("margin = %v, want -1000", out.Margin)
	}
	if !out.Regret {
		t.Error("regret not set on an above-market deal")
	}
}

func TestEvaluateOutcomeBreakEvenIsLoss(t *testing.T) {
	out := EvaluateOutcome(nil, core.IntPtr(18000), 18000, "Balanced", "Balanced", 4, false)

	if out.MarginType != core.MarginLoss {
		t.Errorf("zero margin type = %s, want %s", out.MarginType, core.MarginLoss)
	}
	if out.Regret {
		t.Error("regret set on an at-market deal")
	}
}

func TestEvaluateOutcomeWalkAway(t *testing.T) {
	out := EvaluateOutcome(core.IntPtr(21600), nil, 18000, "Aggressive", "Strategic", 9, true)

	if out.MarginType != core.MarginWalkaway {
		t.Errorf("margin type = %s, want %s", out.MarginType, core.MarginWalkaway)
	}
	if out.Margin != nil {
		t.Errorf("margin = %v, want nil", out.Margin)
	}
	if out.FinalPrice != nil {
		t.Errorf("final price = %v, want nil", out.FinalPrice)
	}
	if out.Regret {
		t.Error("regret must never be set on a walk-away")
	}
	if !out.WalkedAway {
		t.Error("walked-away flag lost")
	}
}

func TestEvaluateOutcomeSellerProfit(t *testing.T) {
	// Seller cost basis is 90% of market: selling at market is a 10% gain.
	out := EvaluateOutcome(nil, core.IntPtr(18000), 18000, "Balanced", "Balanced", 4, false)
	if want := 10.0; out.SellerProfitPercent != want {
		t.Errorf("seller profit = %v, want %v", out.SellerProfitPercent, want)
	}
}

func TestEvaluateOutcomeZeroMarket(t *testing.T) {
	out := EvaluateOutcome(nil, core.IntPtr(12000), 0, "Balanced", "Balanced", 4, false)

	if out.BuyerProfitPercent != 0 || out.SellerProfitPercent != 0 {
		t.Error("profit percents must stay zero without a market price")
	}
	if out.Regret {
		t.Error("regret requires a positive market price")
	}
}
