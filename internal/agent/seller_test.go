package agent

import (
	"fmt"
	"testing"

	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
)

func buyerCounter(price int) string {
	return fmt.Sprintf("Please consider ₹%d per quintal.", price)
}

func TestSellerMargin(t *testing.T) {
	s := NewSeller(SellerConfig{})

	tests := []struct {
		name string
		ctx  core.NegotiationContext
		want float64
	}{
		{
			name: "base margin only",
			ctx:  core.NegotiationContext{QualityGrade: "B", BaseMarketPrice: 10000},
			want: 0.10,
		},
		{
			name: "grade A bump",
			ctx:  core.NegotiationContext{QualityGrade: "A", BaseMarketPrice: 10000},
			want: 0.15,
		},
		{
			name: "grade A export grade",
			ctx: core.NegotiationContext{
				QualityGrade:    "A",
				BaseMarketPrice: 10000,
				Attributes:      map[string]any{"export_grade": true},
			},
			want: 0.20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Margin(tt.ctx)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Margin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSellerOpeningProposal(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := testContext()

	dec := s.Decide("What's your offer for 500kg of mangoes?", 0, false, ctx)
	if dec.Action != ActionPropose {
		t.Fatalf("action = %s, want %s", dec.Action, ActionPropose)
	}
	want := int(float64(ctx.BaseMarketPrice) * (1 + s.Margin(ctx)))
	if dec.Price != want {
		t.Errorf("opening price = %d, want %d", dec.Price, want)
	}
}

func TestSellerAcceptBoundary(t *testing.T) {
	ctx := testContext() // base 18000, threshold 19800

	tests := []struct {
		name   string
		offer  int
		accept bool
	}{
		{"well above threshold", 21000, true},
		{"exactly at threshold", 19800, true},
		{"one rupee below", 19799, false},
		{"well below", 15000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeller(SellerConfig{})
			dec := s.Decide(buyerCounter(tt.offer), tt.offer, true, ctx)

			if tt.accept {
				if dec.Action != ActionAccept {
					t.Fatalf("action = %s, want %s", dec.Action, ActionAccept)
				}
				if dec.Price != tt.offer {
					t.Errorf("accepted price = %d, want %d", dec.Price, tt.offer)
				}
				if !s.Accepted() {
					t.Error("acceptance latch not set")
				}
			} else if dec.Action == ActionAccept {
				t.Errorf("offer %d accepted; threshold is 19800", tt.offer)
			}
		})
	}
}

func TestSellerCounterInflation(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := testContext()

	// Early rounds counter at +15%.
	dec := s.Decide(buyerCounter(10000), 10000, true, ctx)
	if dec.Action != ActionCounter {
		t.Fatalf("action = %s, want %s", dec.Action, ActionCounter)
	}
	if dec.Price != 11500 {
		t.Errorf("early counter = %d, want 11500", dec.Price)
	}

	// Past round 8 the inflation softens to +5%.
	for s.Round() < 8 {
		s.Decide(buyerCounter(10000), 10000, true, ctx)
	}
	dec = s.Decide(buyerCounter(10000), 10000, true, ctx)
	if dec.Price != 10500 {
		t.Errorf("late counter = %d, want 10500", dec.Price)
	}
}

func TestSellerLateWalkAway(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := testContext()

	// Lowball through round 12; the late-stage floor only arms after that.
	var dec Decision
	for i := 0; i < 13; i++ {
		dec = s.Decide(buyerCounter(10000), 10000, true, ctx)
	}

	if dec.Action != ActionWalkAway {
		t.Fatalf("round 13 lowball action = %s, want %s", dec.Action, ActionWalkAway)
	}
	if !s.WalkedAway() {
		t.Error("walk-away latch not set")
	}
}

func TestSellerLateDecentOfferKeepsTalking(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := testContext() // late floor 18900

	var dec Decision
	for i := 0; i < 13; i++ {
		dec = s.Decide(buyerCounter(19000), 19000, true, ctx)
	}

	if dec.Action != ActionCounter {
		t.Errorf("round 13 decent offer action = %s, want %s", dec.Action, ActionCounter)
	}
}

func TestSellerRoundCeiling(t *testing.T) {
	s := NewSeller(SellerConfig{MaxRounds: 3})
	ctx := testContext()

	s.Decide("thinking", 0, false, ctx)
	s.Decide("still thinking", 0, false, ctx)
	dec := s.Decide("hmm", 0, false, ctx)

	if dec.Action != ActionWalkAway {
		t.Errorf("action at round ceiling = %s, want %s", dec.Action, ActionWalkAway)
	}
	if !s.WalkedAway() {
		t.Error("walk-away latch not set at round ceiling")
	}
}

func TestSellerTerminalLatch(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := testContext()

	s.Decide(buyerCounter(21000), 21000, true, ctx)
	if !s.Accepted() {
		t.Fatal("expected acceptance")
	}

	round := s.Round()
	dec := s.Decide(buyerCounter(21000), 21000, true, ctx)
	if dec.Action != ActionWalkAway {
		t.Errorf("post-acceptance action = %s, want %s", dec.Action, ActionWalkAway)
	}
	if s.Round() != round {
		t.Error("round advanced after terminal state")
	}
}

func TestSellerAdaptivePersona(t *testing.T) {
	s := NewSeller(SellerConfig{Persona: persona.Adaptive})
	ctx := testContext()

	s.Decide("My offer is final, I will go no lower than ₹15000 per quintal.", 15000, true, ctx)
	if got := s.Persona(); got != persona.Assertive {
		t.Errorf("adaptive persona = %s, want %s", got, persona.Assertive)
	}
}

func TestSellerInquiresWithoutAnchor(t *testing.T) {
	s := NewSeller(SellerConfig{})
	ctx := core.NegotiationContext{Product: "Mystery Lot"}

	dec := s.Decide("How much for this?", 0, false, ctx)
	if dec.Action != ActionInquire {
		t.Errorf("action = %s, want %s", dec.Action, ActionInquire)
	}
}
