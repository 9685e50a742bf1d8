package agent

import (
	"fmt"

	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/style"
)

// SellerConfig carries the seller policy's tunable constants.
type SellerConfig struct {
	Persona persona.ID

	// MinMargin is the base margin over market price; grade A quality and
	// export-grade stock each add five points.
	MinMargin float64

	// MaxRounds forces a terminal walk-away regardless of price state.
	MaxRounds int

	// AcceptNumerator/Denominator express the acceptance threshold as a
	// rational (11/10 = 1.10×) so boundary offers compare exactly.
	AcceptNumerator   int
	AcceptDenominator int

	// LateRound and LateFloorNumerator/Denominator gate the late-stage
	// walk-away: past LateRound, offers under 1.05× base end the talk.
	LateRound            int
	LateFloorNumerator   int
	LateFloorDenominator int

	// EarlyInflationPct counters early rounds at +15%; after EarlyRounds
	// the seller softens to LateInflationPct.
	EarlyInflationPct int
	LateInflationPct  int
	EarlyRounds       int
}

func (c SellerConfig) withDefaults() SellerConfig {
	if c.Persona == "" {
		c.Persona = persona.Analytical
	}
	if c.MinMargin == 0 {
		c.MinMargin = 0.10
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = 20
	}
	if c.AcceptNumerator == 0 {
		c.AcceptNumerator = 11
	}
	if c.AcceptDenominator == 0 {
		c.AcceptDenominator = 10
	}
	if c.LateRound == 0 {
		c.LateRound = 12
	}
	if c.LateFloorNumerator == 0 {
		c.LateFloorNumerator = 21
	}
	if c.LateFloorDenominator == 0 {
		c.LateFloorDenominator = 20
	}
	if c.EarlyInflationPct == 0 {
		c.EarlyInflationPct = 15
	}
	if c.LateInflationPct == 0 {
		c.LateInflationPct = 5
	}
	if c.EarlyRounds == 0 {
		c.EarlyRounds = 8
	}
	return c
}

// Seller is the seller-side pricing state machine. Owned by one session.
type Seller struct {
	cfg  SellerConfig
	base persona.ID

	current    persona.ID
	round      int
	accepted   bool
	walkedAway bool
}

// NewSeller creates a seller policy with the given configuration.
func NewSeller(cfg SellerConfig) *Seller {
	cfg = cfg.withDefaults()
	return &Seller{
		cfg:     cfg,
		base:    cfg.Persona,
		current: cfg.Persona,
	}
}

// Margin computes the effective margin for the product being sold.
func (s *Seller) Margin(ctx core.NegotiationContext) float64 {
	margin := s.cfg.MinMargin
	if ctx.QualityGrade == "A" {
		margin += 0.05
	}
	if ctx.ExportGrade() {
		margin += 0.05
	}
	return margin
}

// Decide consumes the buyer's latest message (and its parsed offer, when
// present) and produces the seller's next action. It advances the round
// counter exactly once per call.
func (s *Seller) Decide(buyerText string, buyerOffer int, hasOffer bool, ctx core.NegotiationContext) Decision {
	if s.accepted || s.walkedAway {
		return Decision{Action: ActionWalkAway, Persona: s.current, Text: "This negotiation has already concluded."}
	}

	s.round++
	s.adaptTo(buyerText)

	intent := core.ClassifyIntent(buyerText)

	if s.round >= s.cfg.MaxRounds {
		s.walkedAway = true
		return Decision{
			Action:  ActionWalkAway,
			Persona: s.current,
			Intent:  intent,
			Text:    fmt.Sprintf("After %d rounds, no agreement has been reached. I must respectfully walk away.", s.cfg.MaxRounds),
		}
	}

	base := ctx.BaseMarketPrice

	if base > 0 && hasOffer {
		// Integer comparison keeps the 1.10× boundary exact: an offer of
		// precisely 1.10× base accepts.
		if buyerOffer*s.cfg.AcceptDenominator >= base*s.cfg.AcceptNumerator {
			s.accepted = true
			return Decision{
				Action:   ActionAccept,
				Price:    buyerOffer,
				HasPrice: true,
				Persona:  s.current,
				Intent:   intent,
				Text:     fmt.Sprintf("I accept your offer of ₹%d per quintal. Deal confirmed.", buyerOffer),
			}
		}

		if s.round > s.cfg.LateRound && buyerOffer*s.cfg.LateFloorDenominator < base*s.cfg.LateFloorNumerator {
			s.walkedAway = true
			return Decision{
				Action:  ActionWalkAway,
				Persona: s.current,
				Intent:  intent,
				Text:    fmt.Sprintf("You have repeatedly offered below ₹%d even after %d rounds. I must walk away.", base*s.cfg.LateFloorNumerator/s.cfg.LateFloorDenominator, s.cfg.LateRound),
			}
		}

		inflationPct := s.cfg.EarlyInflationPct
		if s.round > s.cfg.EarlyRounds {
			inflationPct = s.cfg.LateInflationPct
		}
		counter := buyerOffer * (100 + inflationPct) / 100
		return Decision{
			Action:   ActionCounter,
			Price:    counter,
			HasPrice: true,
			Persona:  s.current,
			Intent:   intent,
			Text:     fmt.Sprintf("Considering the quality of this lot, I propose ₹%d per quintal.", counter),
		}
	}

	if base > 0 {
		target := int(float64(base) * (1 + s.Margin(ctx)))
		return Decision{
			Action:   ActionPropose,
			Price:    target,
			HasPrice: true,
			Persona:  s.current,
			Intent:   intent,
			Text:     fmt.Sprintf("Based on the market price of ₹%d, I can offer ₹%d per quintal.", base, target),
		}
	}

	// No base price and no buyer offer: nothing to anchor on.
	return Decision{
		Action:  ActionInquire,
		Persona: s.current,
		Intent:  intent,
		Text:    "What price did you have in mind for this lot?",
	}
}

// adaptTo remaps the persona from the buyer's tone. Only Adaptive sellers
// ever switch.
func (s *Seller) adaptTo(buyerText string) {
	if s.base != persona.Adaptive {
		return
	}
	mapped := style.PersonaFor(style.DetectBuyerTone(buyerText))
	if mapped != s.current {
		s.current = mapped
	}
}

// Persona returns the persona currently in effect.
func (s *Seller) Persona() persona.ID { return s.current }

// Round returns the seller's round counter.
func (s *Seller) Round() int { return s.round }

// Accepted reports the terminal acceptance latch.
func (s *Seller) Accepted() bool { return s.accepted }

// WalkedAway reports the terminal walk-away latch.
func (s *Seller) WalkedAway() bool { return s.walkedAway }
