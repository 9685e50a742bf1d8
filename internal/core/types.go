// Package core contains the core domain types for mandi.
package core

import (
	"time"
)

// Side identifies the author of a transcript message.
type Side string

const (
	SideBuyer  Side = "Buyer"
	SideSeller Side = "Seller"
	SideSystem Side = "System"
)

// SessionStatus represents the terminal (or in-flight) state of a negotiation.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusDeal       SessionStatus = "deal_reached"
	StatusWalkedAway SessionStatus = "walked_away"
	StatusTimedOut   SessionStatus = "timed_out"
)

// MarginType classifies the buyer-side margin of a closed deal.
type MarginType string

const (
	MarginProfit   MarginType = "Profit"
	MarginLoss     MarginType = "Loss"
	MarginWalkaway MarginType = "Walkaway"
)

// Product describes a traded commodity.
type Product struct {
	Name            string         `json:"name" yaml:"name"`
	Category        string         `json:"category" yaml:"category"`
	Quantity        int            `json:"quantity" yaml:"quantity"`
	QualityGrade    string         `json:"quality_grade" yaml:"quality_grade"`
	Origin          string         `json:"origin" yaml:"origin"`
	BaseMarketPrice int            `json:"base_market_price" yaml:"base_market_price"`
	Attributes      map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ExportGrade reports whether the product carries the export_grade attribute.
func (p Product) ExportGrade() bool {
	v, ok := p.Attributes["export_grade"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Variety returns the variety attribute, if present.
func (p Product) Variety() string {
	v, ok := p.Attributes["variety"]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// NegotiationContext is the immutable per-session context both sides see.
// A zero base market price is tolerated; price-dependent branches degrade
// to generic prompts instead of failing.
type NegotiationContext struct {
	Product         string         `json:"product"`
	Category        string         `json:"category"`
	Variety         string         `json:"variety,omitempty"`
	OrderSizeKG     int            `json:"order_size_kg"`
	QualityGrade    string         `json:"quality_grade"`
	Origin          string         `json:"origin"`
	BaseMarketPrice int            `json:"base_market_price"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// ContextFor builds a negotiation context from a catalog product.
func ContextFor(p Product) NegotiationContext {
	return NegotiationContext{
		Product:         p.Name,
		Category:        p.Category,
		Variety:         p.Variety(),
		OrderSizeKG:     p.Quantity,
		QualityGrade:    p.QualityGrade,
		Origin:          p.Origin,
		BaseMarketPrice: p.BaseMarketPrice,
		Attributes:      p.Attributes,
	}
}

// ExportGrade reports whether the context carries the export_grade attribute.
func (c NegotiationContext) ExportGrade() bool {
	v, ok := c.Attributes["export_grade"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Message is one entry in the session transcript.
type Message struct {
	Sender Side   `json:"sender"`
	Text   string `json:"text"`
}

// OfferRecord captures one side's offer in one round. Records are
// append-only; a nil Price means the turn carried no extractable offer.
type OfferRecord struct {
	Round  int    `json:"round"`
	Sender Side   `json:"sender"`
	Price  *int   `json:"price,omitempty"`
	Text   string `json:"text"`
}

// RoundInfo reports round progress at termination.
type RoundInfo struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Outcome is the session summary, computed once at termination and never
// mutated after.
type Outcome struct {
	OpeningPrice        *int       `json:"openingPrice"`
	FinalPrice          *int       `json:"finalPrice"`
	MarketPrice         int        `json:"marketPrice"`
	Margin              *int       `json:"margin"`
	MarginType          MarginType `json:"marginType"`
	BuyerProfitPercent  float64    `json:"buyerProfitPercent"`
	SellerProfitPercent float64    `json:"sellerProfitPercent"`
	BuyerPersona        string     `json:"buyerPersona"`
	SellerPersona       string     `json:"sellerPersona"`
	TotalRounds         int        `json:"totalRounds"`
	Regret              bool       `json:"regret"`
	WalkedAway          bool       `json:"walkedAway"`
}

// SessionRecord is the full record of one terminated negotiation session.
type SessionRecord struct {
	ID            string             `json:"id"`
	Context       NegotiationContext `json:"context"`
	BuyerPersona  string             `json:"buyer_persona"`
	SellerPersona string             `json:"seller_persona"`
	Status        SessionStatus      `json:"status"`
	Messages      []Message          `json:"messages"`
	Offers        []OfferRecord      `json:"offers,omitempty"`
	Rounds        RoundInfo          `json:"rounds"`
	FinalPrice    *int               `json:"finalPrice"`
	MarginUsed    int                `json:"marginUsed"`
	Summary       Outcome            `json:"summary"`
	CreatedAt     time.Time          `json:"created_at"`
	CompletedAt   time.Time          `json:"completed_at"`
}

// SessionSummary is a lightweight representation for listing sessions.
type SessionSummary struct {
	ID            string        `json:"id"`
	Product       string        `json:"product"`
	BuyerPersona  string        `json:"buyer_persona"`
	SellerPersona string        `json:"seller_persona"`
	Status        SessionStatus `json:"status"`
	FinalPrice    *int          `json:"final_price"`
	TotalRounds   int           `json:"total_rounds"`
	CreatedAt     time.Time     `json:"created_at"`
}

// IntPtr returns a pointer to v, for optional price fields.
func IntPtr(v int) *int {
	return &v
}
