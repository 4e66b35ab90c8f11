package mystery

import (
	"fmt"
	"testing"
)

func openGateAt(t *testing.T, e *Engine, f *fakeTransport, stage int, trigger string) {
	t.Helper()
	e.testProgress("guild1").Stage = stage
	if out := e.HandleMessage(f, guildMsg("u0", trigger)); out != OutcomeStage {
		t.Fatalf("gate open: HandleMessage() = %v, want OutcomeStage", out)
	}
	f.sent = nil
	f.replies = nil
}

func TestConfessionGateFullRound(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 3, "open sesame")

	for i, user := range []string{"u1", "u2", "u3", "u4"} {
		out := e.HandleMessage(f, guildMsg(user, "I never told anyone this."))
		if out != OutcomeGate {
			t.Fatalf("confession %d: HandleMessage() = %v, want OutcomeGate", i+1, out)
		}
		want := fmt.Sprintf(e.brain.Messages.ConfessionAck, i+1)
		if got := f.sent[len(f.sent)-1].Content; got != want {
			t.Errorf("ack %d = %q, want %q", i+1, got, want)
		}
	}

	if out := e.HandleMessage(f, guildMsg("u5", "I never told anyone this.")); out != OutcomeGate {
		t.Fatalf("fifth confession: HandleMessage() = %v, want OutcomeGate", out)
	}
	if got := f.sent[len(f.sent)-1].Content; got != e.brain.Messages.ConfessionSuccess {
		t.Errorf("final message = %q, want success line", got)
	}

	p := e.testProgress("guild1")
	if p.Stage != 4 {
		t.Errorf("Stage = %d, want 4", p.Stage)
	}
	if len(p.Gates) != 0 {
		t.Errorf("Gates = %v, want cleared on advance", p.Gates)
	}
}

func TestConfessionDuplicateUserNotDoubleCounted(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 3, "open sesame")

	e.HandleMessage(f, guildMsg("u1", "I never sleep."))
	out := e.HandleMessage(f, guildMsg("u1", "I never blink either."))
	if out != OutcomeGate {
		t.Fatalf("repeat confession: HandleMessage() = %v, want OutcomeGate", out)
	}

	want := fmt.Sprintf(e.brain.Messages.ConfessionAck, 1)
	if got := f.sent[len(f.sent)-1].Content; got != want {
		t.Errorf("repeat ack = %q, want unchanged count %q", got, want)
	}
	if got := len(e.testProgress("guild1").Gates["s3"].Confessors); got != 1 {
		t.Errorf("confessors = %d, want 1", got)
	}
}

func TestConfessionRetriggerKeepsProgress(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 3, "open sesame")

	e.HandleMessage(f, guildMsg("u1", "I never lock my door."))
	e.HandleMessage(f, guildMsg("u2", "I never check the peephole."))

	// Someone repeats the stage trigger mid-round.
	e.HandleMessage(f, guildMsg("u3", "open sesame"))

	g := e.testProgress("guild1").Gates["s3"]
	if g == nil || len(g.Confessors) != 2 {
		t.Fatalf("gate = %+v, want 2 confessors preserved", g)
	}
}

func TestAlternatingGateStrictTempo(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 5, "rhythm")

	steps := []struct {
		content string
		want    string
	}{
		{"i feel like the carpet is watching", fmt.Sprintf(e.brain.Messages.PatternAccepted, 1)},
		{"lol same", fmt.Sprintf(e.brain.Messages.PatternAccepted, 2)},
		{"lmao wait", e.brain.Messages.PatternRejected},
		{"i think the carpet won", fmt.Sprintf(e.brain.Messages.PatternAccepted, 3)},
		{"lol", fmt.Sprintf(e.brain.Messages.PatternAccepted, 4)},
		{"i was never here", fmt.Sprintf(e.brain.Messages.PatternAccepted, 5)},
	}
	for _, step := range steps {
		if out := e.HandleMessage(f, guildMsg("u1", step.content)); out != OutcomeGate {
			t.Fatalf("%q: HandleMessage() = %v, want OutcomeGate", step.content, out)
		}
		if got := f.sent[len(f.sent)-1].Content; got != step.want {
			t.Errorf("%q: reply = %q, want %q", step.content, got, step.want)
		}
	}

	// Rejection must not have touched the stored sequence.
	if got := len(e.testProgress("guild1").Gates["s5"].Sequence); got != 5 {
		t.Fatalf("sequence length = %d, want 5", got)
	}

	e.HandleMessage(f, guildMsg("u2", "lmao done"))
	p := e.testProgress("guild1")
	if p.Stage != 6 {
		t.Errorf("Stage = %d, want 6", p.Stage)
	}
	if got := f.sent[len(f.sent)-1].Content; got != e.brain.Messages.PatternSuccess {
		t.Errorf("final message = %q, want success line", got)
	}
}

func TestAlternatingRetriggerResetsSequence(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 5, "rhythm")

	e.HandleMessage(f, guildMsg("u1", "i feel fine"))
	e.HandleMessage(f, guildMsg("u1", "lol no"))
	e.HandleMessage(f, guildMsg("u2", "rhythm"))

	if got := len(e.testProgress("guild1").Gates["s5"].Sequence); got != 0 {
		t.Errorf("sequence length = %d, want 0 after re-trigger", got)
	}
}

func TestPairGateOrderMatters(t *testing.T) {
	e, f := newTestEngine(t)
	openGateAt(t, e, f, 6, "the walls")

	// Forgiveness before any apology does nothing.
	if out := e.HandleMessage(f, guildMsg("u1", "i forgive everyone")); out != OutcomeNone {
		t.Errorf("premature forgiveness: HandleMessage() = %v, want OutcomeNone", out)
	}
	g := e.testProgress("guild1").Gates["s6"]
	if g.ApologyBy != "" || g.ForgivenessBy != "" {
		t.Fatalf("gate = %+v, want untouched", g)
	}

	if out := e.HandleMessage(f, guildMsg("u1", "ok, sorry about the towels")); out != OutcomeGate {
		t.Fatalf("apology: HandleMessage() = %v, want OutcomeGate", out)
	}
	if got := f.sent[len(f.sent)-1].Content; got != e.brain.Messages.ApologyAck {
		t.Errorf("apology reply = %q, want ack", got)
	}

	// A second apology doesn't steal the slot.
	e.HandleMessage(f, guildMsg("u2", "sorry too I guess"))
	g = e.testProgress("guild1").Gates["s6"]
	if g.ApologyBy != "u1" {
		t.Errorf("ApologyBy = %q, want u1", g.ApologyBy)
	}

	// The apologizer may forgive themselves.
	if out := e.HandleMessage(f, guildMsg("u1", "and i forgive me")); out != OutcomeGate {
		t.Fatalf("forgiveness: HandleMessage() = %v, want OutcomeGate", out)
	}
	p := e.testProgress("guild1")
	if p.Stage != 7 {
		t.Errorf("Stage = %d, want 7", p.Stage)
	}
	if got := f.sent[len(f.sent)-1].Content; got != e.brain.Messages.PairSuccess {
		t.Errorf("final message = %q, want success line", got)
	}
}
