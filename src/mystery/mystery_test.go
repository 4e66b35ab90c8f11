package mystery

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moonlitmotel/chadbot/src/brain"
)

var testBrain = []byte(`{
  "stages": [
    {"number": 1, "triggers": ["hello motel"], "hints": ["h1", "h2", "h3"],
     "response": "the lobby hums.", "taskPrompt": "ask about room 6."},
    {"number": 2, "triggers": ["ledger"],
     "timeWindow": {"startHour": 22, "startMinute": 0, "endHour": 23, "endMinute": 59},
     "response": "page 44."},
    {"number": 3, "gate": "confession", "requiresGate": true,
     "triggers": ["open sesame"], "response": "the lock has an appetite.",
     "taskPrompt": "five confessions."},
    {"number": 4, "triggers": ["onward"], "response": "the hallway stretches."},
    {"number": 5, "gate": "alternating", "requiresGate": true,
     "triggers": ["rhythm"], "response": "the light wants a rhythm."},
    {"number": 6, "gate": "pair", "requiresGate": true,
     "triggers": ["the walls"], "response": "the walls hold a grudge."},
    {"number": 7, "gate": "poll", "requiresGate": true,
     "triggers": ["ask the door"], "response": "keep the concierge?"},
    {"number": 8, "gate": "finale", "triggers": ["open it"],
     "response": "the archive is yours."}
  ]
}`)

type sentMessage struct {
	ChannelID string
	Content   string
}

type fakeTransport struct {
	sent      []sentMessage
	replies   []sentMessage
	reactions []string

	message *discordgo.Message

	roles           []*discordgo.Role
	channels        []*discordgo.Channel
	members         map[string]*discordgo.Member
	grants          []string
	rolesCreated    int
	channelsCreated int

	nextID int
}

func (f *fakeTransport) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID, content})
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.nextID), ChannelID: channelID}, nil
}

func (f *fakeTransport) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.nextID++
	f.replies = append(f.replies, sentMessage{channelID, content})
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.nextID), ChannelID: channelID}, nil
}

func (f *fakeTransport) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.message == nil {
		return nil, fmt.Errorf("no message")
	}
	return f.message, nil
}

func (f *fakeTransport) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	f.reactions = append(f.reactions, messageID+":"+emojiID)
	return nil
}

func (f *fakeTransport) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID}, nil
}

func (f *fakeTransport) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeTransport) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.rolesCreated++
	role := &discordgo.Role{ID: fmt.Sprintf("role%d", f.rolesCreated), Name: data.Name}
	f.roles = append(f.roles, role)
	return role, nil
}

func (f *fakeTransport) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeTransport) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.channelsCreated++
	channel := &discordgo.Channel{ID: fmt.Sprintf("arch%d", f.channelsCreated), Name: data.Name}
	f.channels = append(f.channels, channel)
	return channel, nil
}

func (f *fakeTransport) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (f *fakeTransport) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.grants = append(f.grants, userID+":"+roleID)
	return nil
}

type memStore struct {
	data  map[string]*Progress
	saves int
}

func (m *memStore) Load() (map[string]*Progress, error) {
	return m.data, nil
}

func (m *memStore) Save(c map[string]*Progress) error {
	m.saves++
	m.data = c
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeTransport) {
	t.Helper()

	b, err := brain.FromJSON(testBrain)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	e := NewEngine(b, &memStore{}, time.UTC)
	e.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	e.sleep = func(time.Duration) {}
	e.rng = rand.New(rand.NewSource(1))
	return e, &fakeTransport{}
}

func guildMsg(user, content string) Message {
	return Message{
		GuildID:   "guild1",
		ChannelID: "chan1",
		ID:        "msg1",
		AuthorID:  user,
		Content:   content,
	}
}

func (e *Engine) testProgress(guildID string) *Progress {
	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()
	return e.tracker.guild(guildID)
}
