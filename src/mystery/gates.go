package mystery

import (
	"fmt"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// collectGate runs the currently open gate's collector against a message
// before the stage trigger check gets a look. The bool result reports
// whether the gate consumed the message.
func (e *Engine) collectGate(x Transport, msg Message, p *Progress) (Outcome, bool) {
	g := p.gate(p.Stage)
	if g == nil {
		return OutcomeNone, false
	}

	switch g.Kind {
	case brain.GateConfession:
		return e.collectConfession(x, msg, p, g)
	case brain.GateAlternating:
		return e.collectAlternating(x, msg, p, g)
	case brain.GatePair:
		return e.collectPair(x, msg, p, g)
	}
	// Poll gates resolve on reactions, not messages.
	return OutcomeNone, false
}

// collectConfession counts distinct confessors up to the threshold. A
// repeat confession from a counted user re-reports the unchanged count;
// it is neither an error nor a double count.
func (e *Engine) collectConfession(x Transport, msg Message, p *Progress, g *Gate) (Outcome, bool) {
	if !e.brain.IsConfession(msg.Content) {
		return OutcomeNone, false
	}

	if g.Confessors == nil {
		g.Confessors = make(map[string]bool)
	}
	g.Confessors[msg.AuthorID] = true

	count := len(g.Confessors)
	if count >= confessionThreshold {
		e.send(x, msg.ChannelID, e.brain.Messages.ConfessionSuccess)
		e.advance(p)
	} else {
		e.send(x, msg.ChannelID, fmt.Sprintf(e.brain.Messages.ConfessionAck, count))
	}
	return OutcomeGate, true
}

// collectAlternating demands a strict confession/joke alternation,
// confession first. A wrong-flavor message is rejected without touching
// the stored sequence.
func (e *Engine) collectAlternating(x Transport, msg Message, p *Progress, g *Gate) (Outcome, bool) {
	kind := e.brain.AlternatingKind(msg.Content)
	if kind == brain.AltNone {
		return OutcomeNone, false
	}

	want := brain.AltConfession
	if len(g.Sequence)%2 == 1 {
		want = brain.AltJoke
	}

	if kind != want {
		e.send(x, msg.ChannelID, e.brain.Messages.PatternRejected)
		return OutcomeGate, true
	}

	g.Sequence = append(g.Sequence, kind)
	e.send(x, msg.ChannelID, fmt.Sprintf(e.brain.Messages.PatternAccepted, len(g.Sequence)))
	if len(g.Sequence) >= alternatingLength {
		e.send(x, msg.ChannelID, e.brain.Messages.PatternSuccess)
		e.advance(p)
	}
	return OutcomeGate, true
}

// collectPair wants one apology then one forgiveness. The first apologizer
// wins the slot for good; forgiveness is accepted from anyone, the
// apologizer included. Forgiveness before any apology does nothing.
func (e *Engine) collectPair(x Transport, msg Message, p *Progress, g *Gate) (Outcome, bool) {
	if g.ApologyBy == "" && e.brain.IsApology(msg.Content) {
		g.ApologyBy = msg.AuthorID
		e.send(x, msg.ChannelID, e.brain.Messages.ApologyAck)
		return OutcomeGate, true
	}

	if g.ApologyBy != "" && g.ForgivenessBy == "" && e.brain.IsForgiveness(msg.Content) {
		g.ForgivenessBy = msg.AuthorID
		e.send(x, msg.ChannelID, e.brain.Messages.PairSuccess)
		e.advance(p)
		return OutcomeGate, true
	}

	return OutcomeNone, false
}
