package core

import "testing"

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{
			name: "plain acceptance",
			text: "I accept your offer. Deal confirmed.",
			want: IntentAcceptance,
		},
		{
			name: "finalize reads as acceptance",
			text: "Let's finalize at this price.",
			want: IntentAcceptance,
		},
		{
			name: "hedged agreement is a counter",
			text: "We could accept if you would consider ₹15000 per quintal.",
			want: IntentCounterOffer,
		},
		{
			name: "could you downgrades deal talk",
			text: "Deal sounds good, but could you lower the price?",
			want: IntentCounterOffer,
		},
		{
			name: "continuation without agreement",
			text: "Is it possible to revise the rate?",
			want: IntentCounterOffer,
		},
		{
			name: "negotiate keyword",
			text: "We want to negotiate further on this.",
			want: IntentCounterOffer,
		},
		{
			name: "plain question",
			text: "What is the quality of this lot?",
			want: IntentInquiry,
		},
		{
			name: "empty text",
			text: "",
			want: IntentInquiry,
		},
		{
			name: "case insensitive",
			text: "WE AGREE TO YOUR TERMS.",
			want: IntentAcceptance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyIntent(tt.text); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestContainsDealKeyword(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Agreed, let's proceed with the paperwork.", true},
		{"This is a deal I can live with.", true},
		{"Confirmed. We will move forward.", true},
		{"Your price is still too high.", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ContainsDealKeyword(tt.text); got != tt.want {
			t.Errorf("ContainsDealKeyword(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
