// Package style infers a counterpart's negotiating tone from their text and
// maps it to an own-side persona for tone-adaptive agents.
package style

import (
	"strings"

	"github.com/nvraj/mandi/internal/persona"
)

// Tone is a detected negotiating style.
type Tone string

const (
	ToneAggressive    Tone = "Aggressive"
	ToneAnalytical    Tone = "Analytical"
	ToneCollaborative Tone = "Collaborative"
	ToneNeutral       Tone = "Neutral"
)

type toneSet struct {
	tone     Tone
	keywords []string
}

// Keyword sets differ per side: sellers signal aggression with premium
// language, buyers with firmness. First matching category wins.
var sellerToneSets = []toneSet{
	{ToneAggressive, []string{"exclusive deal", "premium", "won't find better"}},
	{ToneAnalytical, []string{"market rate", "value", "current pricing"}},
	{ToneCollaborative, []string{"discount", "flexible", "bulk order"}},
}

var buyerToneSets = []toneSet{
	{ToneAggressive, []string{"firm", "final", "no lower"}},
	{ToneAnalytical, []string{"market", "fair", "value"}},
	{ToneCollaborative, []string{"compromise", "meet halfway", "reasonable"}},
}

// DetectSellerTone classifies a seller-authored message.
func DetectSellerTone(text string) Tone {
	return detect(text, sellerToneSets)
}

// DetectBuyerTone classifies a buyer-authored message.
func DetectBuyerTone(text string) Tone {
	return detect(text, buyerToneSets)
}

func detect(text string, sets []toneSet) Tone {
	lower := strings.ToLower(text)
	for _, set := range sets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.tone
			}
		}
	}
	return ToneNeutral
}

// toneToPersona is the fixed adaptation table for tone-adaptive sides.
var toneToPersona = map[Tone]persona.ID{
	ToneAggressive:    persona.Assertive,
	ToneAnalytical:    persona.Strategic,
	ToneCollaborative: persona.Diplomatic,
	ToneNeutral:       persona.Balanced,
}

// PersonaFor maps a detected tone to the matching own-side persona.
func PersonaFor(tone Tone) persona.ID {
	if p, ok := toneToPersona[tone]; ok {
		return p
	}
	return persona.Balanced
}
