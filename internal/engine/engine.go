// Package engine orchestrates negotiation sessions between buyer and
// seller agents.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvraj/mandi/internal/agent"
	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/provider"
	"github.com/nvraj/mandi/internal/storage"
)

// Config bounds a negotiation session. Zero values fall back to defaults.
type Config struct {
	// MaxRounds is the orchestrator's round ceiling.
	MaxRounds int

	// MinRounds is the deal floor: provisional deals detected earlier are
	// blocked so enough price discovery happens first.
	MinRounds int

	// MaxDuration is the wall-clock deadline for the whole session.
	MaxDuration time.Duration

	// BuyerMaxRounds is the buyer policy's own backstop ceiling.
	BuyerMaxRounds int

	// SellerMaxRounds is the seller policy's own ceiling. The default sits
	// above MaxRounds so round exhaustion resolves as a timed-out fallback,
	// not a seller walk-away.
	SellerMaxRounds int

	// DefaultProvider and the default personas fill request fields left
	// empty.
	DefaultProvider      string
	DefaultBuyerPersona  persona.ID
	DefaultSellerPersona persona.ID
}

func (c Config) withDefaults() Config {
	if c.MaxRounds == 0 {
		c.MaxRounds = 15
	}
	if c.MinRounds == 0 {
		c.MinRounds = 4
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = 3 * time.Minute
	}
	if c.BuyerMaxRounds == 0 {
		c.BuyerMaxRounds = 20
	}
	if c.SellerMaxRounds == 0 {
		c.SellerMaxRounds = 20
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = "ollama"
	}
	if c.DefaultBuyerPersona == "" {
		c.DefaultBuyerPersona = persona.Diplomatic
	}
	if c.DefaultSellerPersona == "" {
		c.DefaultSellerPersona = persona.Analytical
	}
	return c
}

// Engine runs negotiation sessions. Sessions are independent: each Run call
// owns its buyer and seller state exclusively, so sessions may execute in
// parallel with no coordination.
type Engine struct {
	store    storage.Storage
	registry *provider.Registry
	cfg      Config
}

// New creates a negotiation engine.
func New(store storage.Storage, registry *provider.Registry, cfg Config) *Engine {
	return &Engine{
		store:    store,
		registry: registry,
		cfg:      cfg.withDefaults(),
	}
}

// SessionRequest describes one negotiation to run.
type SessionRequest struct {
	BuyerPersona  persona.ID
	SellerPersona persona.ID
	Product       core.Product
	Provider      string
	OnEvent       EventFunc
}

// session is the per-run working state. Never shared across runs.
type session struct {
	id       string
	ctx      core.NegotiationContext
	buyer    *agent.Buyer
	seller   *agent.Seller
	prov     provider.Provider
	onEvent  EventFunc
	messages []core.Message
	offers   []core.OfferRecord
	started  time.Time
}

// Run executes a full negotiation session and returns its record. The
// context cancels the session between turns; the engine's own round and
// wall-clock bounds apply regardless.
func (e *Engine) Run(ctx context.Context, req SessionRequest) (*core.SessionRecord, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = e.cfg.DefaultProvider
	}
	prov, err := e.registry.Get(providerName)
	if err != nil {
		return nil, fmt.Errorf("invalid provider: %w", err)
	}

	buyerPersona := req.BuyerPersona
	if buyerPersona == "" {
		buyerPersona = e.cfg.DefaultBuyerPersona
	}
	sellerPersona := req.SellerPersona
	if sellerPersona == "" {
		sellerPersona = e.cfg.DefaultSellerPersona
	}

	s := &session{
		id:      uuid.New().String(),
		ctx:     core.ContextFor(req.Product),
		buyer:   agent.NewBuyer(agent.BuyerConfig{Persona: buyerPersona, MaxRounds: e.cfg.BuyerMaxRounds}),
		seller:  agent.NewSeller(agent.SellerConfig{Persona: sellerPersona, MaxRounds: e.cfg.SellerMaxRounds}),
		prov:    prov,
		onEvent: req.OnEvent,
		started: time.Now(),
	}

	slog.Info("Starting negotiation",
		"session", s.id,
		"product", s.ctx.Product,
		"buyer_persona", buyerPersona,
		"seller_persona", sellerPersona,
		"provider", providerName,
	)

	return e.run(ctx, s)
}

func (e *Engine) run(ctx context.Context, s *session) (*core.SessionRecord, error) {
	// Opening: the buyer asks for a quote; no numeric offer required.
	opening := fmt.Sprintf("What's your offer for %dkg of %s from %s?",
		s.ctx.OrderSizeKG, strings.TrimSpace(s.ctx.Variety+" "+s.ctx.Product), s.ctx.Origin)
	s.append(core.SideBuyer, opening, 0)

	lastBuyerText := opening
	var buyerOffer int
	var hasBuyerOffer bool
	var openingPrice *int

	round := 1
	for round <= e.cfg.MaxRounds && time.Since(s.started) < e.cfg.MaxDuration {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Seller turn.
		sellerDec := s.seller.Decide(lastBuyerText, buyerOffer, hasBuyerOffer, s.ctx)
		sellerText := e.phrase(ctx, s, core.SideSeller, sellerDec, lastBuyerText)
		s.append(core.SideSeller, sellerText, round)
		s.emit(eventFor(round, core.SideSeller, sellerDec, sellerText))

		if openingPrice == nil {
			openingPrice = firstSellerPrice(s.messages)
		}

		switch sellerDec.Action {
		case agent.ActionWalkAway:
			s.append(core.SideSystem, "Seller walked away — negotiation ended.", round)
			return e.finalize(s, core.StatusWalkedAway, round, openingPrice, nil)
		case agent.ActionAccept:
			s.append(core.SideSystem, "Deal reached — negotiation ended.", round)
			final := extractFinalPrice(s.messages)
			return e.finalize(s, core.StatusDeal, round, openingPrice, final)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Buyer turn.
		buyerDec := s.buyer.Decide(sellerText, s.ctx)
		buyerText := e.phrase(ctx, s, core.SideBuyer, buyerDec, sellerText)
		s.append(core.SideBuyer, buyerText, round)
		s.emit(eventFor(round, core.SideBuyer, buyerDec, buyerText))

		lastBuyerText = buyerText
		buyerOffer, hasBuyerOffer = core.ExtractPrice(buyerText)

		if s.buyer.WalkedAway() {
			s.append(core.SideSystem, "Buyer walked away — negotiation ended.", round)
			return e.finalize(s, core.StatusWalkedAway, round, openingPrice, nil)
		}

		if core.ContainsDealKeyword(buyerText) || core.ContainsDealKeyword(sellerText) {
			if round < e.cfg.MinRounds {
				s.append(core.SideSystem, fmt.Sprintf("Deal attempt blocked — minimum %d rounds required.", e.cfg.MinRounds), round)
				round++
				continue
			}
			s.append(core.SideSystem, "Deal reached — negotiation ended.", round)
			final := extractFinalPrice(s.messages)
			return e.finalize(s, core.StatusDeal, round, openingPrice, final)
		}

		round++
	}

	// Fallback termination: round ceiling or wall-clock deadline, whichever
	// hit first. The last extractable price, if any, still counts.
	if round > e.cfg.MaxRounds {
		round = e.cfg.MaxRounds
	}
	s.append(core.SideSystem, "Fallback triggered — negotiation ended.", round)
	final := extractFinalPrice(s.messages)
	if openingPrice == nil {
		openingPrice = firstSellerPrice(s.messages)
	}
	return e.finalize(s, core.StatusTimedOut, round, openingPrice, final)
}

// phrase asks the text collaborator to voice a decision. A failed call
// degrades to an error-tagged message that carries no price, so the
// counterpart reads it as no offer and the session continues under its
// normal bounds.
func (e *Engine) phrase(ctx context.Context, s *session, side core.Side, dec agent.Decision, counterpartText string) string {
	systemPrompt := e.systemPrompt(s, side, dec.Persona)
	userPrompt := e.userPrompt(side, dec, counterpartText)

	text, err := s.prov.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		slog.Warn("Text generation failed", "session", s.id, "side", side, "error", err)
		return fmt.Sprintf("[error] text generation failed: %v", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "[error] text generation returned no content"
	}
	return text
}

func (e *Engine) systemPrompt(s *session, side core.Side, id persona.ID) string {
	p := persona.Get(id)
	if side == core.SideSeller {
		return fmt.Sprintf("%s You are playing the role of a seller offering %dkg of %s grade %s (%s) from %s. The product has %s.",
			p.SystemPrompt, s.ctx.OrderSizeKG, s.ctx.QualityGrade, s.ctx.Product, s.ctx.Variety, s.ctx.Origin, attrSummary(s.ctx.Attributes))
	}
	return fmt.Sprintf("%s You are playing the role of a buyer sourcing %dkg of %s grade %s from %s.",
		p.SystemPrompt, s.ctx.OrderSizeKG, s.ctx.QualityGrade, s.ctx.Product, s.ctx.Origin)
}

func (e *Engine) userPrompt(side core.Side, dec agent.Decision, counterpartText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The counterpart says: %q.\n", counterpartText)

	switch dec.Action {
	case agent.ActionPropose:
		fmt.Fprintf(&b, "Open the negotiation by proposing ₹%d per quintal.\n", dec.Price)
	case agent.ActionAccept:
		fmt.Fprintf(&b, "Accept the offer confidently and confirm the deal at ₹%d per quintal.\n", dec.Price)
	case agent.ActionCounter:
		switch dec.Framing {
		case agent.FramingInflation:
			fmt.Fprintf(&b, "Point out that their prices have been rising, then counter with ₹%d per quintal.\n", dec.Price)
		case agent.FramingSoftening:
			fmt.Fprintf(&b, "Acknowledge their flexibility, then ask to close at ₹%d per quintal.\n", dec.Price)
		default:
			fmt.Fprintf(&b, "Counter with ₹%d per quintal.\n", dec.Price)
		}
	case agent.ActionWalkAway:
		b.WriteString("Politely walk away from this negotiation. Do not quote any price.\n")
	case agent.ActionInquire:
		b.WriteString("Ask for a concrete, quotable rate. Do not invent a price.\n")
	}

	fmt.Fprintf(&b, "Suggested wording: %q.\n", dec.Text)
	if dec.HasPrice {
		fmt.Fprintf(&b, "Be concise and confident. You must quote the amount exactly as ₹%d per quintal.", dec.Price)
	} else {
		b.WriteString("Be concise and confident. Do not include any per-quintal amount.")
	}
	return b.String()
}

func (s *session) append(sender core.Side, text string, round int) {
	s.messages = append(s.messages, core.Message{Sender: sender, Text: text})
	if sender != core.SideSystem {
		s.offers = append(s.offers, core.OfferRecord{
			Round:  round,
			Sender: sender,
			Price:  core.ExtractPricePtr(text),
			Text:   text,
		})
	}
}

func (s *session) emit(ev Event) {
	slog.Debug("Negotiation turn",
		"session", s.id,
		"round", ev.Round,
		"side", ev.Side,
		"action", ev.Action,
		"price", ev.Price,
		"intent", ev.Intent,
		"persona", ev.Persona,
	)
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

// finalize builds the session record, writes it to the log sink and
// returns it. The record is created once and never mutated after.
func (e *Engine) finalize(s *session, status core.SessionStatus, rounds int, openingPrice, finalPrice *int) (*core.SessionRecord, error) {
	walkedAway := status == core.StatusWalkedAway
	if finalPrice != nil {
		s.buyer.LogRegret(*finalPrice, s.ctx.BaseMarketPrice)
	}

	summary := EvaluateOutcome(openingPrice, finalPrice, s.ctx.BaseMarketPrice,
		string(s.buyer.Persona()), string(s.seller.Persona()), rounds, walkedAway)

	rec := &core.SessionRecord{
		ID:            s.id,
		Context:       s.ctx,
		BuyerPersona:  string(s.buyer.Persona()),
		SellerPersona: string(s.seller.Persona()),
		Status:        status,
		Messages:      s.messages,
		Offers:        s.offers,
		Rounds:        core.RoundInfo{Current: rounds, Max: e.cfg.MaxRounds},
		FinalPrice:    finalPrice,
		MarginUsed:    s.buyer.MarginUsed(s.ctx.Product),
		Summary:       summary,
		CreatedAt:     s.started,
		CompletedAt:   time.Now(),
	}

	slog.Info("Negotiation ended",
		"session", s.id,
		"status", status,
		"rounds", rounds,
		"final_price", finalPrice,
		"walked_away", walkedAway,
		"regret", summary.Regret,
	)

	if e.store != nil {
		if err := e.store.SaveSession(rec); err != nil {
			// The log sink must never fail a finished session.
			slog.Error("Failed to save session record", "session", s.id, "error", err)
		}
	}

	return rec, nil
}

// extractFinalPrice scans the transcript newest-first and returns the first
// parseable price from either party.
func extractFinalPrice(messages []core.Message) *int {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Sender != core.SideBuyer && msg.Sender != core.SideSeller {
			continue
		}
		if p, ok := core.ExtractPrice(msg.Text); ok {
			return core.IntPtr(p)
		}
	}
	return nil
}

// firstSellerPrice returns the first seller-authored parseable price, used
// as the opening price for reporting.
func firstSellerPrice(messages []core.Message) *int {
	for _, msg := range messages {
		if msg.Sender != core.SideSeller {
			continue
		}
		if p, ok := core.ExtractPrice(msg.Text); ok {
			return core.IntPtr(p)
		}
	}
	return nil
}

func attrSummary(attrs map[string]any) string {
	if len(attrs) == 0 {
		return "no special attributes"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, attrs[k]))
	}
	return strings.Join(parts, ", ")
}
