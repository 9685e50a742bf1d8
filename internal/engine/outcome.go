package engine

import (
	"math"

	"github.com/nvraj/mandi/internal/core"
)

// sellerCostBasis is the assumed seller cost as a fraction of market price,
// used for the mirrored seller-side margin.
const sellerCostBasis = 0.9

// EvaluateOutcome computes the session summary from the agreed price and
// the base market price. A missing final price or market price degrades to
// absent margin figures rather than failing.
func EvaluateOutcome(openingPrice, finalPrice *int, marketPrice int, buyerPersona, sellerPersona string, totalRounds int, walkedAway bool) core.Outcome {
	out := core.Outcome{
		OpeningPrice:  openingPrice,
		MarketPrice:   marketPrice,
		BuyerPersona:  buyerPersona,
		SellerPersona: sellerPersona,
		TotalRounds:   totalRounds,
		WalkedAway:    walkedAway,
	}

	if walkedAway || finalPrice == nil {
		out.MarginType = core.MarginWalkaway
		if !walkedAway && finalPrice == nil {
			// Timed out without any extractable price.
			out.MarginType = core.MarginLoss
		}
		return out
	}

	final := *finalPrice
	out.FinalPrice = finalPrice

	margin := marketPrice - final
	out.Margin = core.IntPtr(margin)
	if margin > 0 {
		out.MarginType = core.MarginProfit
	} else {
		out.MarginType = core.MarginLoss
	}

	if marketPrice > 0 {
		out.BuyerProfitPercent = round2(float64(margin) / float64(marketPrice) * 100)
		sellerMargin := float64(final) - float64(marketPrice)*sellerCostBasis
		out.SellerProfitPercent = round2(sellerMargin / float64(marketPrice) * 100)
	}

	// The buyer regrets paying above market. Never set on walk-away.
	out.Regret = final > marketPrice && marketPrice > 0

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
