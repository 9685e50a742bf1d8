package agent

import (
	"fmt"
	"strings"

	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/style"
)

// BuyerConfig carries the buyer policy's tunable constants. Zero values are
// replaced with the defaults the policy was calibrated with.
type BuyerConfig struct {
	Persona persona.ID

	// MaxRounds is the policy-level backstop ceiling; the orchestrator
	// usually terminates earlier via its own round bound.
	MaxRounds int

	// WalkAwayAttempts is the number of counter-offers tolerated while the
	// seller stays above target before walking away.
	WalkAwayAttempts int

	// Discount and SofteningDiscount scale the seller's offer into a
	// counter; the softer factor applies once a price drop was observed.
	Discount          float64
	SofteningDiscount float64

	// TargetFloor keeps counters from undercutting the target too far.
	TargetFloor float64

	// TargetStep converts the persona margin percentage into the target
	// discount off the base market price.
	TargetStep float64
}

func (c BuyerConfig) withDefaults() BuyerConfig {
	if c.Persona == "" {
		c.Persona = persona.Diplomatic
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = 20
	}
	if c.WalkAwayAttempts == 0 {
		c.WalkAwayAttempts = 7
	}
	if c.Discount == 0 {
		c.Discount = 0.87
	}
	if c.SofteningDiscount == 0 {
		c.SofteningDiscount = 0.85
	}
	if c.TargetFloor == 0 {
		c.TargetFloor = 0.90
	}
	if c.TargetStep == 0 {
		c.TargetStep = 0.05
	}
	return c
}

// IntentRecord is one entry of the buyer's append-only intent log.
type IntentRecord struct {
	Round  int
	Intent core.Intent
}

// Buyer is the buyer-side pricing state machine. It is owned by exactly one
// session and must not be shared.
type Buyer struct {
	cfg  BuyerConfig
	base persona.ID

	current         persona.ID
	round           int
	targetPrice     int
	targetSet       bool
	lastSellerOffer int
	hasSellerOffer  bool
	counterAttempts int
	walkedAway      bool
	regret          bool

	offerHistory      []int
	suspectInflation  bool
	softeningDetected bool
	intentLog         []IntentRecord
}

// NewBuyer creates a buyer policy with the given configuration.
func NewBuyer(cfg BuyerConfig) *Buyer {
	cfg = cfg.withDefaults()
	return &Buyer{
		cfg:     cfg,
		base:    cfg.Persona,
		current: cfg.Persona,
	}
}

// premiumProducts get a small bump in the reported margin figure.
var premiumProducts = []string{"cardamom", "mango", "saffron"}

// Decide consumes the seller's latest message and produces the buyer's next
// action. It advances the round counter exactly once per call.
func (b *Buyer) Decide(sellerText string, ctx core.NegotiationContext) Decision {
	if b.walkedAway {
		// Terminal latch: the orchestrator should not be asking, but the
		// answer never changes.
		return b.walkAwayDecision(fmt.Sprintf("%s our position has not changed. Walking away.", b.tonePrefix()))
	}

	b.round++

	sellerPrice, hasPrice := core.ExtractPrice(sellerText)
	if hasPrice {
		b.lastSellerOffer = sellerPrice
		b.hasSellerOffer = true
	}

	// The target is computed once, from the configured persona, before any
	// tone adaptation can change the margin lookup.
	if b.round == 1 && ctx.BaseMarketPrice > 0 && !b.targetSet {
		reduction := persona.MarginPct(b.current) * b.cfg.TargetStep
		b.targetPrice = int(float64(ctx.BaseMarketPrice) * (1 - reduction))
		b.targetSet = true
	}

	b.adaptTo(sellerText)

	if hasPrice {
		b.offerHistory = append(b.offerHistory, sellerPrice)
		b.detectInflation()
		b.detectSoftening()
	}

	intent := core.ClassifyIntent(sellerText)
	b.intentLog = append(b.intentLog, IntentRecord{Round: b.round, Intent: intent})

	if b.round >= b.cfg.MaxRounds {
		b.walkedAway = true
		return b.walkAwayDecision(fmt.Sprintf("%s we've reached %d rounds without a deal. Walking away.", b.tonePrefix(), b.cfg.MaxRounds))
	}

	if hasPrice {
		if b.targetSet && sellerPrice <= b.targetPrice && b.round >= 2 {
			return Decision{
				Action:   ActionAccept,
				Price:    sellerPrice,
				HasPrice: true,
				Persona:  b.current,
				Intent:   intent,
				Text:     fmt.Sprintf("%s this price of ₹%d per quintal ensures profit. Deal finalized!", b.tonePrefix(), sellerPrice),
			}
		}

		if b.counterAttempts >= b.cfg.WalkAwayAttempts && b.aboveTarget(sellerPrice) {
			b.walkedAway = true
			return b.walkAwayDecision(fmt.Sprintf("%s your price of ₹%d remains unprofitable. Walking away.", b.tonePrefix(), sellerPrice))
		}

		discount := b.cfg.Discount
		if b.softeningDetected {
			discount = b.cfg.SofteningDiscount
		}
		counter := int(float64(sellerPrice) * discount)
		if floor := int(float64(b.targetPrice) * b.cfg.TargetFloor); floor > counter {
			counter = floor
		}
		b.counterAttempts++

		framing := FramingNeutral
		text := fmt.Sprintf("%s your price of ₹%d is above our target. Please consider ₹%d per quintal.", b.tonePrefix(), sellerPrice, counter)
		switch {
		case b.suspectInflation:
			framing = FramingInflation
			text = fmt.Sprintf("%s I've noticed a price increase. Let's settle at ₹%d per quintal.", b.tonePrefix(), counter)
		case b.softeningDetected:
			framing = FramingSoftening
			text = fmt.Sprintf("%s I appreciate your flexibility. Can we close at ₹%d per quintal?", b.tonePrefix(), counter)
		}

		return Decision{
			Action:   ActionCounter,
			Price:    counter,
			HasPrice: true,
			Framing:  framing,
			Persona:  b.current,
			Intent:   intent,
			Text:     text,
		}
	}

	return Decision{
		Action:  ActionInquire,
		Persona: b.current,
		Intent:  intent,
		Text:    fmt.Sprintf("%s we value your offer, but could you share a competitive rate?", b.tonePrefix()),
	}
}

func (b *Buyer) walkAwayDecision(text string) Decision {
	return Decision{
		Action:  ActionWalkAway,
		Persona: b.current,
		Text:    text,
	}
}

// aboveTarget treats an unknown target as not exceeded, so a missing base
// price degrades to continued countering rather than a walk-away.
func (b *Buyer) aboveTarget(price int) bool {
	return b.targetSet && price > b.targetPrice
}

// adaptTo remaps the persona from the seller's tone. Only Adaptive buyers
// ever switch, and switching touches nothing but the persona label.
func (b *Buyer) adaptTo(sellerText string) {
	if b.base != persona.Adaptive {
		return
	}
	mapped := style.PersonaFor(style.DetectSellerTone(sellerText))
	if mapped != b.current {
		b.current = mapped
	}
}

// detectInflation latches the inflation flag once any adjacent pair of
// seller offers rises by 10% or more. The flag is monotonic for the session.
func (b *Buyer) detectInflation() {
	n := len(b.offerHistory)
	if n < 2 {
		return
	}
	prev, curr := b.offerHistory[n-2], b.offerHistory[n-1]
	if prev > 0 && curr > prev {
		if float64(curr-prev)/float64(prev) >= 0.10 {
			b.suspectInflation = true
		}
	}
}

// detectSoftening latches the softening flag once any adjacent pair of
// seller offers drops by 3% or more.
func (b *Buyer) detectSoftening() {
	n := len(b.offerHistory)
	if n < 2 {
		return
	}
	prev, curr := b.offerHistory[n-2], b.offerHistory[n-1]
	if prev > 0 && curr < prev {
		if float64(prev-curr)/float64(prev) >= 0.03 {
			b.softeningDetected = true
		}
	}
}

func (b *Buyer) tonePrefix() string {
	return persona.TonePrefix(b.current)
}

// LogRegret records whether an accepted price exceeded the market price.
// Only meaningful after an actual deal.
func (b *Buyer) LogRegret(finalPrice, marketPrice int) {
	b.regret = finalPrice > 0 && marketPrice > 0 && finalPrice > marketPrice
}

// MarginUsed reports the persona-scaled margin figure off the last seller
// offer, with a fixed bump for premium commodities.
func (b *Buyer) MarginUsed(productName string) int {
	m := int(persona.MarginPct(b.current) * float64(b.lastSellerOffer))
	lower := strings.ToLower(productName)
	for _, p := range premiumProducts {
		if strings.Contains(lower, p) {
			m += 50
			break
		}
	}
	return m
}

// Persona returns the persona currently in effect.
func (b *Buyer) Persona() persona.ID { return b.current }

// BasePersona returns the configured persona before any adaptation.
func (b *Buyer) BasePersona() persona.ID { return b.base }

// Round returns the buyer's round counter.
func (b *Buyer) Round() int { return b.round }

// TargetPrice returns the fixed acceptance ceiling, if computed.
func (b *Buyer) TargetPrice() (int, bool) { return b.targetPrice, b.targetSet }

// CounterAttempts returns the number of counter-offers produced so far.
func (b *Buyer) CounterAttempts() int { return b.counterAttempts }

// WalkedAway reports the terminal walk-away latch.
func (b *Buyer) WalkedAway() bool { return b.walkedAway }

// Regret reports the post-deal regret flag.
func (b *Buyer) Regret() bool { return b.regret }

// SuspectInflation reports the monotonic inflation-pattern flag.
func (b *Buyer) SuspectInflation() bool { return b.suspectInflation }

// SofteningDetected reports the monotonic softening-pattern flag.
func (b *Buyer) SofteningDetected() bool { return b.softeningDetected }

// OfferHistory returns a copy of the seller offers seen so far.
func (b *Buyer) OfferHistory() []int {
	out := make([]int, len(b.offerHistory))
	copy(out, b.offerHistory)
	return out
}

// IntentLog returns a copy of the per-round intent classifications.
func (b *Buyer) IntentLog() []IntentRecord {
	out := make([]IntentRecord, len(b.intentLog))
	copy(out, b.intentLog)
	return out
}
