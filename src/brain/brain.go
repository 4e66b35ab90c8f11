// Package brain loads the content side of Chad: the mystery stage table,
// the gate classifier patterns and the various line pools. Everything in
// here is read-only after Load; the surrounding bot may reload a new Brain
// without touching in-flight gate state.
package brain

import (
	"encoding/json"
	"log"
	"os"
	"regexp"
)

// GateKind selects the behavior a stage runs when its trigger fires.
type GateKind string

const (
	GatePlain       GateKind = "plain"
	GateConfession  GateKind = "confession"
	GateAlternating GateKind = "alternating"
	GatePair        GateKind = "pair"
	GatePoll        GateKind = "poll"
	GateFinale      GateKind = "finale"
)

// AltKind classifies a message for the alternating gate.
type AltKind string

const (
	AltNone       AltKind = ""
	AltConfession AltKind = "confession"
	AltJoke       AltKind = "joke"
)

// TimeWindow restricts a stage trigger to a daily window, motel time.
type TimeWindow struct {
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

// StageDefinition is one numbered step of the mystery storyline.
type StageDefinition struct {
	Number          int         `json:"number"`
	Gate            GateKind    `json:"gate"`
	Triggers        []string    `json:"triggers"`
	Hints           []string    `json:"hints"`
	Response        string      `json:"response"`
	TaskPrompt      string      `json:"taskPrompt"`
	TimeWindow      *TimeWindow `json:"timeWindow"`
	TimeLockedReply string      `json:"timeLockedReply"`
	RequiresGate    bool        `json:"requiresGate"`

	triggers []*regexp.Regexp
}

// Messages are the fixed reply texts the engine emits. Any field left
// empty in the brain file falls back to the stock motel voice.
type Messages struct {
	ConfessionAck     string `json:"confessionAck"`
	ConfessionSuccess string `json:"confessionSuccess"`
	PatternAccepted   string `json:"patternAccepted"`
	PatternRejected   string `json:"patternRejected"`
	PatternSuccess    string `json:"patternSuccess"`
	ApologyAck        string `json:"apologyAck"`
	PairSuccess       string `json:"pairSuccess"`
	PollKept          string `json:"pollKept"`
	PollDismissed     string `json:"pollDismissed"`
	TooEarly          string `json:"tooEarly"`
	FinaleRoomWelcome string `json:"finaleRoomWelcome"`
}

// Patterns are the qualifying expressions per gate kind. They are content,
// not protocol: each gate kind classifies with its own set.
type Patterns struct {
	Confession  []string `json:"confession"`
	AltConf     []string `json:"altConfession"`
	AltJoke     []string `json:"altJoke"`
	Apology     []string `json:"apology"`
	Forgiveness []string `json:"forgiveness"`
}

// Brain is the loaded content file.
type Brain struct {
	Stages    []*StageDefinition `json:"stages"`
	RoastPool []string           `json:"roast_pool"`
	Fortunes  []string           `json:"fortunes"`
	Ambient   []string           `json:"ambient"`
	Patterns  Patterns           `json:"patterns"`
	Messages  Messages           `json:"messages"`

	confession  []*regexp.Regexp
	altConf     []*regexp.Regexp
	altJoke     []*regexp.Regexp
	apology     []*regexp.Regexp
	forgiveness []*regexp.Regexp
}

// Load reads and compiles a brain file. Invalid patterns are skipped with
// a log line rather than failing the whole load; a stage with no valid
// trigger simply never fires.
func Load(filename string) (*Brain, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return FromJSON(file)
}

// FromJSON compiles a brain from raw file contents.
func FromJSON(data []byte) (*Brain, error) {
	var b Brain
	err := json.Unmarshal(data, &b)
	if err != nil {
		return nil, err
	}

	b.compile()
	b.Messages.fillDefaults()
	return &b, nil
}

func (b *Brain) compile() {
	for _, sd := range b.Stages {
		if sd.Gate == "" {
			sd.Gate = GatePlain
		}
		sd.triggers = compilePool("stage trigger", sd.Triggers)
	}

	if len(b.Patterns.Confession) == 0 {
		b.Patterns.Confession = []string{`(\bi never\b|\bi'?ve?\s+never\b|\bi have never\b|\bi’ve?\s+never\b)`}
	}
	if len(b.Patterns.AltConf) == 0 {
		b.Patterns.AltConf = []string{`\b(i\s+(feel|am|was|think))\b`}
	}
	if len(b.Patterns.AltJoke) == 0 {
		b.Patterns.AltJoke = []string{`(lol|lmao|😂|meme)`}
	}
	if len(b.Patterns.Apology) == 0 {
		b.Patterns.Apology = []string{`\b(sorry|apologize|apology)\b`}
	}
	if len(b.Patterns.Forgiveness) == 0 {
		b.Patterns.Forgiveness = []string{`\b(i forgive|i'?m forgiving|i’m forgiving)\b`}
	}

	b.confession = compilePool("confession pattern", b.Patterns.Confession)
	b.altConf = compilePool("alternating confession pattern", b.Patterns.AltConf)
	b.altJoke = compilePool("alternating joke pattern", b.Patterns.AltJoke)
	b.apology = compilePool("apology pattern", b.Patterns.Apology)
	b.forgiveness = compilePool("forgiveness pattern", b.Patterns.Forgiveness)
}

func compilePool(what string, patterns []string) []*regexp.Regexp {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			log.Println("skipping bad", what, p, err)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// Stage returns the definition for a stage number, or nil when the story
// has no content for it. First match wins on duplicate numbers.
func (b *Brain) Stage(number int) *StageDefinition {
	for _, sd := range b.Stages {
		if sd.Number == number {
			return sd
		}
	}
	return nil
}

// Matches reports whether any of the stage's triggers hit the text.
func (sd *StageDefinition) Matches(text string) bool {
	for _, re := range sd.triggers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsConfession classifies text for the confession gate.
func (b *Brain) IsConfession(text string) bool {
	return anyMatch(b.confession, text)
}

// AlternatingKind classifies text for the alternating gate. A message
// matching both pools counts as a confession, matching the observed
// collector behavior.
func (b *Brain) AlternatingKind(text string) AltKind {
	if anyMatch(b.altConf, text) {
		return AltConfession
	}
	if anyMatch(b.altJoke, text) {
		return AltJoke
	}
	return AltNone
}

// IsApology classifies text for the pair gate's first half.
func (b *Brain) IsApology(text string) bool {
	return anyMatch(b.apology, text)
}

// IsForgiveness classifies text for the pair gate's second half.
func (b *Brain) IsForgiveness(text string) bool {
	return anyMatch(b.forgiveness, text)
}

func anyMatch(pool []*regexp.Regexp, text string) bool {
	for _, re := range pool {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (m *Messages) fillDefaults() {
	if m.ConfessionAck == "" {
		m.ConfessionAck = "confession logged (%d/5). the motel is listening."
	}
	if m.ConfessionSuccess == "" {
		m.ConfessionSuccess = "✅ *Delicious.* Honesty always tastes a bit like blood. The lock twitched. Try the **ledger** next—if it doesn't bite first."
	}
	if m.PatternAccepted == "" {
		m.PatternAccepted = "pattern accepted (%d/6)."
	}
	if m.PatternRejected == "" {
		m.PatternRejected = "nope. wrong flavor. alternate confession ↔ joke."
	}
	if m.PatternSuccess == "" {
		m.PatternSuccess = "✅ The light purrs. Doors adjust their posture. Something's ready to be said out loud."
	}
	if m.ApologyAck == "" {
		m.ApologyAck = "apology archived. one more: forgiveness."
	}
	if m.PairSuccess == "" {
		m.PairSuccess = "✅ Accepted. The walls exhaled. next time, bring snacks."
	}
	if m.PollKept == "" {
		m.PollKept = "…you picked me. tragic. iconic. The door unlocks with a sound like laughter through teeth."
	}
	if m.PollDismissed == "" {
		m.PollDismissed = "understood. deactivating emotional subroutines. goodbye forever. (back tomorrow.)"
	}
	if m.TooEarly == "" {
		m.TooEarly = "too early. so ambitious. so wrong."
	}
	if m.FinaleRoomWelcome == "" {
		m.FinaleRoomWelcome = "Welcome, Keyholders."
	}
}
