// Package mystery is the stage-progression engine behind the Moonlit
// Motel storyline: per-guild progress, multi-user gates, daily cooldowns,
// hint cycling and the finale provisioning.
package mystery

import (
	"fmt"
	"log"
	"sync"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// Progress is everything the motel remembers about one guild.
type Progress struct {
	Stage        int                   `json:"stage"`
	Gates        map[string]*Gate      `json:"gates"`
	Cooldowns    map[string]string     `json:"cooldowns"`
	Participants map[string]bool       `json:"participants"`
	HintProgress map[string]*HintState `json:"hintProgress"`
}

// HintState tracks which hint indices a stage has already handed out.
type HintState struct {
	Used []int `json:"used"`
}

// Gate is the open collective puzzle for the current stage. Kind selects
// which of the remaining fields are meaningful.
type Gate struct {
	Kind brain.GateKind `json:"kind"`

	// confession
	Confessors map[string]bool `json:"confessors,omitempty"`

	// alternating
	Sequence []brain.AltKind `json:"sequence,omitempty"`

	// pair
	ApologyBy     string `json:"apologyBy,omitempty"`
	ForgivenessBy string `json:"forgivenessBy,omitempty"`

	// poll. ID fences the debounce callback against a gate that was
	// reopened while the callback slept.
	ID            string `json:"id,omitempty"`
	PollMessageID string `json:"pollMessageId,omitempty"`
	PollYes       string `json:"pollYes,omitempty"`
	PollNo        string `json:"pollNo,omitempty"`
	Closed        bool   `json:"closed,omitempty"`
}

func newProgress() *Progress {
	return &Progress{
		Stage:        1,
		Gates:        make(map[string]*Gate),
		Cooldowns:    make(map[string]string),
		Participants: make(map[string]bool),
		HintProgress: make(map[string]*HintState),
	}
}

func gateKey(stage int) string {
	return fmt.Sprintf("s%d", stage)
}

// gate returns the gate for the given stage, nil when none is open.
func (p *Progress) gate(stage int) *Gate {
	if p.Gates == nil {
		return nil
	}
	return p.Gates[gateKey(stage)]
}

// Tracker owns the in-memory progress map and writes it through to the
// store after every mutation. A single mutex serializes all read-modify-
// write cycles, which closes the lost-update race a blob-per-event bot
// otherwise has.
type Tracker struct {
	mu          sync.Mutex
	store       ProgressStore
	communities map[string]*Progress
}

// NewTracker loads existing progress from the store. A load failure
// starts fresh; the motel forgets rather than refuses to open.
func NewTracker(store ProgressStore) *Tracker {
	t := &Tracker{
		store:       store,
		communities: make(map[string]*Progress),
	}

	c, err := store.Load()
	if err != nil {
		log.Println("progress load failed, starting fresh:", err)
	} else if c != nil {
		for _, p := range c {
			normalize(p)
		}
		t.communities = c
	}
	return t
}

// guild returns the progress blob for a guild, creating it lazily on
// first sight. Callers must hold t.mu.
func (t *Tracker) guild(guildID string) *Progress {
	p := t.communities[guildID]
	if p == nil {
		p = newProgress()
		t.communities[guildID] = p
	}
	return p
}

// save writes the whole blob through to the store. Callers must hold t.mu.
func (t *Tracker) save() {
	if err := t.store.Save(t.communities); err != nil {
		log.Println("progress save failed:", err)
	}
}

// normalize repairs nil maps on blobs read from older store files.
func normalize(p *Progress) {
	if p.Stage == 0 {
		p.Stage = 1
	}
	if p.Gates == nil {
		p.Gates = make(map[string]*Gate)
	}
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[string]string)
	}
	if p.Participants == nil {
		p.Participants = make(map[string]bool)
	}
	if p.HintProgress == nil {
		p.HintProgress = make(map[string]*HintState)
	}
}
