package engine

import (
	"github.com/nvraj/mandi/internal/agent"
	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/persona"
)

// Event is a structured per-turn record: which side decided what, at which
// round, with which numeric offer. Consumers observe negotiations without
// the core performing any I/O of its own.
type Event struct {
	Round   int
	Side    core.Side
	Action  agent.Action
	Price   *int
	Intent  core.Intent
	Persona persona.ID
	Text    string
}

// EventFunc receives per-turn events. Called synchronously between turns.
type EventFunc func(Event)

func eventFor(round int, side core.Side, dec agent.Decision, text string) Event {
	ev := Event{
		Round:   round,
		Side:    side,
		Action:  dec.Action,
		Intent:  dec.Intent,
		Persona: dec.Persona,
		Text:    text,
	}
	if dec.HasPrice {
		ev.Price = core.IntPtr(dec.Price)
	}
	return ev
}
