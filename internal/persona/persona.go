// Package persona defines negotiating personas for buyer and seller agents.
package persona

// ID is a persona label. The set is enumerated but open: unknown labels
// degrade to a minimal baseline instead of failing.
type ID string

const (
	Aggressive ID = "Aggressive"
	Analytical ID = "Analytical"
	Diplomatic ID = "Diplomatic"
	Wildcard   ID = "Wildcard"
	Assertive  ID = "Assertive"
	Strategic  ID = "Strategic"
	Balanced   ID = "Balanced"

	// Adaptive is the sentinel for tone-adaptive sides: the persona is
	// remapped from the counterpart's detected style each turn.
	Adaptive ID = "Adaptive"
)

// Persona bundles a persona's pricing aggressiveness with its voice.
type Persona struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	TonePrefix   string `json:"tone_prefix"`
	// MarginPct scales the buyer's target discount off the market price.
	MarginPct float64 `json:"margin_pct"`
}

// baselineMarginPct is the fallback for unrecognized persona labels.
const baselineMarginPct = 0.01

func builtins() []Persona {
	return []Persona{
		{
			ID:          Aggressive,
			Name:        "Aggressive",
			Description: "Pushes for quick, high-profit deals with bold counter-offers",
			SystemPrompt: `You are an aggressive negotiator focused on securing quick, high-profit deals. Use a confident, assertive tone, apply pressure to push for your terms, and aim to close in few rounds. Use bold counter-offers and imply urgency. Example: 'This is a premium product, and my offer is final at ₹{price}.'`,
			TonePrefix:  "Firmly,",
			MarginPct:   1.0,
		},
		{
			ID:          Analytical,
			Name:        "Analytical",
			Description: "Justifies offers with market data and patient reasoning",
			SystemPrompt: `You are a logical negotiator who uses facts, market trends, and value to justify offers. Use a calm, professional tone, cite data like market prices or quality, and be patient for a fair deal. Example: 'Based on market rates of ₹{base_price}, I propose ₹{price}.'`,
			TonePrefix:  "Based on market analysis,",
			MarginPct:   0.80,
		},
		{
			ID:          Diplomatic,
			Name:        "Diplomatic",
			Description: "Seeks win-win outcomes with courteous, reasonable compromises",
			SystemPrompt: `You are a polite negotiator seeking win-win solutions. Use a respectful, courteous tone, emphasize mutual benefits, and make reasonable compromises while staying firm on minimum terms. Example: 'I propose ₹{price} to meet both our needs.'`,
			TonePrefix:  "With utmost respect and cooperation,",
			MarginPct:   0.69,
		},
		{
			ID:          Wildcard,
			Name:        "Wildcard",
			Description: "Unpredictable; uses humor and surprise offers",
			SystemPrompt: `You are an unpredictable negotiator using humor, sarcasm, or surprises to gain an advantage. Vary your tone, take risks with creative offers, but ensure profitability. Example: 'How about ₹{price}? Bet you didn't see that coming!'`,
			TonePrefix:  "Let's shake things up,",
			MarginPct:   0.75,
		},
		{
			ID:          Assertive,
			Name:        "Assertive",
			Description: "Stands firm on key terms but concedes strategically",
			SystemPrompt: `You are a confident negotiator who stands firm on key terms but remains open to strategic concessions. Use a direct tone and focus on securing favorable deals. Example: 'I'm firm at ₹{price}, but let's find common ground.'`,
			TonePrefix:  "Frankly speaking,",
			MarginPct:   1.0,
		},
		{
			ID:          Strategic,
			Name:        "Strategic",
			Description: "Reads the opponent and makes calculated, data-driven offers",
			SystemPrompt: `You are a calculated negotiator who analyzes the opponent's moves and market conditions. Use a composed tone and make data-driven offers. Example: 'Given the market, ₹{price} is a fair offer.'`,
			TonePrefix:  "Considering the bigger picture,",
			MarginPct:   0.80,
		},
		{
			ID:          Balanced,
			Name:        "Balanced",
			Description: "Combines firmness with flexibility for equitable deals",
			SystemPrompt: `You are a balanced negotiator who combines firmness with flexibility. Use a neutral tone and aim for equitable deals. Example: 'Let's settle at ₹{price} for a fair deal.'`,
			TonePrefix:  "Keeping all factors in mind,",
			MarginPct:   0.70,
		},
		{
			ID:          Adaptive,
			Name:        "Adaptive",
			Description: "Switches persona based on the counterpart's tone",
			SystemPrompt: `You are an adaptive negotiator who mirrors the counterpart's style while protecting your own terms. Stay measured and adjust your tone to theirs. Example: 'With careful consideration, I propose ₹{price}.'`,
			TonePrefix:  "With careful consideration,",
			MarginPct:   0.70,
		},
	}
}

// Get returns the persona for id. The mapping is total: unknown labels get
// a minimal baseline (smallest margin, empty tone prefix).
func Get(id ID) Persona {
	for _, p := range builtins() {
		if p.ID == id {
			return p
		}
	}
	return Persona{
		ID:           id,
		Name:         string(id),
		SystemPrompt: "You are a negotiator.",
		MarginPct:    baselineMarginPct,
	}
}

// Known reports whether id is one of the built-in personas.
func Known(id ID) bool {
	for _, p := range builtins() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// All returns the built-in personas.
func All() []Persona {
	return builtins()
}

// List returns all built-in persona IDs.
func List() []ID {
	personas := builtins()
	ids := make([]ID, len(personas))
	for i, p := range personas {
		ids[i] = p.ID
	}
	return ids
}

// MarginPct looks up the target-discount scale for a persona label.
func MarginPct(id ID) float64 {
	return Get(id).MarginPct
}

// TonePrefix looks up the cosmetic sentence opener for a persona label.
func TonePrefix(id ID) string {
	return Get(id).TonePrefix
}
