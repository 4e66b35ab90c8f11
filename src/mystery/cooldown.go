package mystery

import (
	"fmt"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// today is the calendar date in the motel's zone. Cooldowns compare
// dates, not timestamps: 00:01 and 23:59 are the same day.
func (e *Engine) today() string {
	return e.now().In(e.loc).Format("2006-01-02")
}

func (e *Engine) hasDailyCooldown(p *Progress, key string) bool {
	return p.Cooldowns[key] == e.today()
}

func (e *Engine) setDailyCooldown(p *Progress, key string) {
	p.Cooldowns[key] = e.today()
}

// HasDailyCooldown reports whether a named action already fired today
// for a guild.
func (e *Engine) HasDailyCooldown(guildID, key string) bool {
	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()
	return e.hasDailyCooldown(e.tracker.guild(guildID), key)
}

// SetDailyCooldown marks a named action as fired today and persists.
func (e *Engine) SetDailyCooldown(guildID, key string) {
	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()
	e.setDailyCooldown(e.tracker.guild(guildID), key)
	e.tracker.save()
}

// maybeHint hands out a stage hint when the stage has hints, the message
// is addressed to the bot and today's hint for this stage hasn't fired.
func (e *Engine) maybeHint(x Transport, msg Message, p *Progress, sd *brain.StageDefinition) Outcome {
	if len(sd.Hints) == 0 || !msg.Addressed {
		return OutcomeNone
	}
	key := fmt.Sprintf("hint_%d", p.Stage)
	if e.hasDailyCooldown(p, key) {
		return OutcomeNone
	}

	hint := e.nextUniqueHint(p, sd)
	if hint == "" {
		return OutcomeNone
	}
	e.send(x, msg.ChannelID, hint)
	e.setDailyCooldown(p, key)
	return OutcomeHint
}

// nextUniqueHint draws a hint the stage hasn't used yet. When the pool is
// exhausted the used set resets first, then a fresh draw is made from the
// full pool.
func (e *Engine) nextUniqueHint(p *Progress, sd *brain.StageDefinition) string {
	if len(sd.Hints) == 0 {
		return ""
	}

	key := gateKey(sd.Number)
	hs := p.HintProgress[key]
	if hs == nil {
		hs = &HintState{}
		p.HintProgress[key] = hs
	}
	if len(hs.Used) >= len(sd.Hints) {
		hs.Used = nil
	}

	used := make(map[int]bool, len(hs.Used))
	for _, i := range hs.Used {
		used[i] = true
	}
	var avail []int
	for i := range sd.Hints {
		if !used[i] {
			avail = append(avail, i)
		}
	}

	idx := avail[e.rng.Intn(len(avail))]
	hs.Used = append(hs.Used, idx)
	return sd.Hints[idx]
}
