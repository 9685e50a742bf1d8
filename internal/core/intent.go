package core

import "strings"

// Intent classifies what a negotiation message is trying to do.
type Intent string

const (
	IntentAcceptance   Intent = "acceptance"
	IntentCounterOffer Intent = "counter_offer"
	IntentInquiry      Intent = "inquiry"
)

var agreementKeywords = []string{
	"accept", "deal", "finalize", "proceed", "confirmed", "we agree", "let's proceed",
}

// Hedging phrases turn an apparent agreement into a conditional ask.
var hedgePhrases = []string{
	"would you", "could you", "consider", "can you",
}

var continuationKeywords = []string{
	"consider", "can you", "would you", "is it possible", "negotiate", "revisit", "revise",
}

// ClassifyIntent tags a message as acceptance, counter-offer or inquiry.
// A hedge alongside an agreement keyword reads as a counter-offer, not an
// acceptance. Stateless.
func ClassifyIntent(text string) Intent {
	msg := strings.ToLower(text)
	if containsAny(msg, agreementKeywords) {
		if containsAny(msg, hedgePhrases) {
			return IntentCounterOffer
		}
		return IntentAcceptance
	}
	if containsAny(msg, continuationKeywords) {
		return IntentCounterOffer
	}
	return IntentInquiry
}

// Session-level deal detection scans for closing language rather than
// classifying a single message.
var dealKeywords = []string{
	"finalize", "agreed", "let's proceed", "deal", "confirmed", "move forward",
}

// ContainsDealKeyword reports whether the text signals a provisionally
// closed deal.
func ContainsDealKeyword(text string) bool {
	return containsAny(strings.ToLower(text), dealKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
