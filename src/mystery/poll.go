package mystery

import (
	"log"

	emutil "github.com/post04/discordgo-emoji-util"
	"github.com/rs/xid"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// Reaction is the slice of a reaction-added event the engine needs. The
// caller filters out the bot's own reactions.
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     string
}

// openPoll posts the stage response as a poll message and seeds the two
// reaction options. The gate stores the message id; resolution happens in
// HandleReaction.
func (e *Engine) openPoll(x Transport, msg Message, p *Progress, sd *brain.StageDefinition) {
	yes, no := e.pollEmojis(x, msg.GuildID)

	pollMsg, err := x.ChannelMessageSend(msg.ChannelID, sd.Response)
	if err != nil || pollMsg == nil {
		log.Println("poll open failed:", err)
		return
	}
	if err := x.MessageReactionAdd(msg.ChannelID, pollMsg.ID, yes); err != nil {
		log.Println("poll seed reaction failed:", err)
	}
	if err := x.MessageReactionAdd(msg.ChannelID, pollMsg.ID, no); err != nil {
		log.Println("poll seed reaction failed:", err)
	}

	p.Gates[gateKey(sd.Number)] = &Gate{
		Kind:          brain.GatePoll,
		ID:            xid.New().String(),
		PollMessageID: pollMsg.ID,
		PollYes:       yes,
		PollNo:        no,
	}
}

// pollEmojis prefers custom guild emoji named chadyes/chadno over the
// stock unicode pair.
func (e *Engine) pollEmojis(x Transport, guildID string) (string, string) {
	yes, no := "✅", "❌"

	g, err := x.Guild(guildID)
	if err != nil || g == nil {
		return yes, no
	}
	if em := emutil.FindEmoji(g.Emojis, "chadyes", false); em != nil {
		yes = em.APIName()
	}
	if em := emutil.FindEmoji(g.Emojis, "chadno", false); em != nil {
		no = em.APIName()
	}
	return yes, no
}

// HandleReaction feeds a reaction-added event to an open poll gate. It
// waits out the debounce, re-fetches the live counts and, once quorum is
// reached, closes the poll and advances the story on either outcome. The
// caller filters out the bot's own reactions.
func (e *Engine) HandleReaction(x Transport, r Reaction) {
	if r.GuildID == "" {
		return
	}

	e.tracker.mu.Lock()
	p := e.tracker.guild(r.GuildID)
	g := p.gate(p.Stage)
	if g == nil || g.Kind != brain.GatePoll || g.Closed || r.MessageID != g.PollMessageID {
		e.tracker.mu.Unlock()
		return
	}
	stage := p.Stage
	gateID := g.ID
	yes, no := g.PollYes, g.PollNo
	e.tracker.mu.Unlock()

	// Let simultaneous reactions settle before counting.
	e.sleep(e.Debounce)

	yesCount, noCount := e.countPollVotes(x, r.ChannelID, r.MessageID, yes, no)

	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()

	// Re-validate: the gate may have closed, reset or advanced while we
	// slept. The gate id fences out a poll reopened in the meantime.
	g = p.gate(p.Stage)
	if p.Stage != stage || g == nil || g.Kind != brain.GatePoll || g.Closed || g.ID != gateID {
		return
	}

	if yesCount+noCount < pollQuorum {
		return
	}

	g.Closed = true
	// The poll decides flavor, not whether the story proceeds: both
	// branches advance.
	if yesCount >= 2 && yesCount > noCount {
		e.reply(x, r.ChannelID, g.PollMessageID, e.brain.Messages.PollKept)
	} else {
		e.reply(x, r.ChannelID, g.PollMessageID, e.brain.Messages.PollDismissed)
	}
	e.advance(p)
	e.tracker.save()
}

// countPollVotes re-fetches the poll message and reads the two option
// counts, less one apiece for the bot's own seed reactions.
func (e *Engine) countPollVotes(x Transport, channelID, messageID, yes, no string) (int, int) {
	m, err := x.ChannelMessage(channelID, messageID)
	if err != nil || m == nil {
		log.Println("poll fetch failed:", err)
		return 0, 0
	}

	yesCount, noCount := 0, 0
	for _, r := range m.Reactions {
		switch r.Emoji.APIName() {
		case yes:
			yesCount = r.Count
		case no:
			noCount = r.Count
		}
	}
	if yesCount > 0 {
		yesCount--
	}
	if noCount > 0 {
		noCount--
	}
	return yesCount, noCount
}
