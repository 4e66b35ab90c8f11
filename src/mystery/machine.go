package mystery

import (
	"log"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/moonlitmotel/chadbot/src/brain"
)

const (
	confessionThreshold = 5
	alternatingLength   = 6
	pollQuorum          = 3
)

// Message is the slice of an inbound chat message the engine needs.
// Addressed is true when the message opens with the bot's name (after the
// handler normalizes a leading @mention to "chad,").
type Message struct {
	GuildID   string
	ChannelID string
	ID        string
	AuthorID  string
	Content   string
	Addressed bool
}

// Outcome reports what the engine did with a message.
type Outcome int

const (
	// OutcomeNone means the message was stage-irrelevant.
	OutcomeNone Outcome = iota
	// OutcomeHint means a hint was handed out instead of progress.
	OutcomeHint
	// OutcomeTooEarly means a trigger landed outside its time window.
	OutcomeTooEarly
	// OutcomeGate means an open gate consumed the message.
	OutcomeGate
	// OutcomeStage means a stage trigger fired.
	OutcomeStage
)

// Engine drives the mystery. One instance serves every guild; state is
// partitioned per guild inside the tracker.
type Engine struct {
	// Debounce is how long a poll gate waits for simultaneous reactions
	// to settle before counting.
	Debounce time.Duration
	// RewardRoleName and ArchiveChannelName are the finale artifacts.
	RewardRoleName     string
	ArchiveChannelName string

	brain   *brain.Brain
	tracker *Tracker
	loc     *time.Location

	now   func() time.Time
	sleep func(time.Duration)
	rng   *rand.Rand
}

// NewEngine wires the content table to a progress store. loc is the zone
// all calendar-date cooldowns and time windows are evaluated in.
func NewEngine(b *brain.Brain, store ProgressStore, loc *time.Location) *Engine {
	return &Engine{
		Debounce:           1500 * time.Millisecond,
		RewardRoleName:     "Keyholder",
		ArchiveChannelName: "archive-of-truth",
		brain:              b,
		tracker:            NewTracker(store),
		loc:                loc,
		now:                time.Now,
		sleep:              time.Sleep,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleMessage runs one inbound guild message through the gate
// collectors and the stage machine. The caller filters out bot authors
// and direct messages.
func (e *Engine) HandleMessage(x Transport, msg Message) Outcome {
	if msg.GuildID == "" {
		return OutcomeNone
	}

	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()

	p := e.tracker.guild(msg.GuildID)
	p.Participants[msg.AuthorID] = true
	defer e.tracker.save()

	if out, handled := e.collectGate(x, msg, p); handled {
		return out
	}
	return e.process(x, msg, p)
}

// process is the stage machine proper: trigger check, time window,
// designated action, advancement.
func (e *Engine) process(x Transport, msg Message, p *Progress) Outcome {
	sd := e.brain.Stage(p.Stage)
	if sd == nil {
		// Story exhausted or not configured for this guild. Not an error.
		return OutcomeNone
	}

	if !sd.Matches(msg.Content) {
		return e.maybeHint(x, msg, p, sd)
	}

	if sd.TimeWindow != nil && !e.inWindow(sd.TimeWindow) {
		reply := sd.TimeLockedReply
		if reply == "" {
			reply = e.brain.Messages.TooEarly
		}
		e.reply(x, msg.ChannelID, msg.ID, reply)
		return OutcomeTooEarly
	}

	key := gateKey(sd.Number)

	switch sd.Gate {
	case brain.GateConfession:
		e.sendStage(x, msg.ChannelID, sd)
		// Re-triggering must not reset a confession round in progress.
		if p.Gates[key] == nil {
			p.Gates[key] = &Gate{Kind: brain.GateConfession, Confessors: make(map[string]bool)}
		}
	case brain.GateAlternating:
		e.sendStage(x, msg.ChannelID, sd)
		p.Gates[key] = &Gate{Kind: brain.GateAlternating}
	case brain.GatePair:
		e.sendStage(x, msg.ChannelID, sd)
		p.Gates[key] = &Gate{Kind: brain.GatePair}
	case brain.GatePoll:
		// Poll resolution arrives via reactions, so this path never
		// auto-advances no matter what the stage entry says.
		e.openPoll(x, msg, p, sd)
		return OutcomeStage
	case brain.GateFinale:
		e.send(x, msg.ChannelID, sd.Response)
		e.provisionFinale(x, msg.GuildID, p)
	default:
		e.sendStage(x, msg.ChannelID, sd)
	}

	if !sd.RequiresGate {
		e.advance(p)
	}
	return OutcomeStage
}

// advance moves to the next stage and discards whatever gate the old
// stage left behind. Cleanup happens here, at the transition, never on a
// later message.
func (e *Engine) advance(p *Progress) {
	p.Stage++
	for k := range p.Gates {
		delete(p.Gates, k)
	}
}

func (e *Engine) inWindow(w *brain.TimeWindow) bool {
	now := e.now().In(e.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), w.StartHour, w.StartMinute, 0, 0, e.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), w.EndHour, w.EndMinute, 0, 0, e.loc)
	return !now.Before(start) && !now.After(end)
}

func (e *Engine) sendStage(x Transport, channelID string, sd *brain.StageDefinition) {
	e.send(x, channelID, sd.Response)
	if sd.TaskPrompt != "" {
		e.send(x, channelID, sd.TaskPrompt)
	}
}

func (e *Engine) send(x Transport, channelID, text string) {
	if text == "" {
		return
	}
	if _, err := x.ChannelMessageSend(channelID, text); err != nil {
		log.Println("send failed:", err)
	}
}

func (e *Engine) reply(x Transport, channelID, messageID, text string) {
	if text == "" {
		return
	}
	ref := &discordgo.MessageReference{ChannelID: channelID, MessageID: messageID}
	if _, err := x.ChannelMessageSendReply(channelID, text, ref); err != nil {
		log.Println("reply failed:", err)
	}
}

// Reset returns a guild to stage 1 for a fresh run of the story. Gates
// and hint progress are cleared; participants and cooldowns survive.
func (e *Engine) Reset(guildID string) {
	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()

	p := e.tracker.guild(guildID)
	p.Stage = 1
	p.Gates = make(map[string]*Gate)
	p.HintProgress = make(map[string]*HintState)
	e.tracker.save()
}
