// Package agent implements the buyer and seller pricing state machines.
package agent

import (
	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
)

// Action is what a policy decided to do on its turn.
type Action string

const (
	// ActionPropose opens with a target price before any counterpart offer.
	ActionPropose Action = "propose"
	ActionAccept  Action = "accept"
	ActionCounter Action = "counter"
	// ActionWalkAway is terminal for the deciding side.
	ActionWalkAway Action = "walk_away"
	// ActionInquire is the no-usable-offer branch: ask for a quotable price.
	ActionInquire Action = "inquire"
)

// Framing selects the cosmetic wording of a buyer counter. It never affects
// the number.
type Framing string

const (
	FramingNeutral   Framing = "neutral"
	FramingInflation Framing = "inflation"
	FramingSoftening Framing = "softening"
)

// Decision is the structured result of one policy turn. Text is a
// deterministic line that always carries the offer in wire format; the
// orchestrator hands it to the text collaborator for persona-flavored
// rephrasing.
type Decision struct {
	Action   Action
	Price    int
	HasPrice bool
	Framing  Framing
	Persona  persona.ID
	Intent   core.Intent
	Text     string
}
