package mystery

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestFinaleProvisioning(t *testing.T) {
	e, f := newTestEngine(t)
	p := e.testProgress("guild1")
	p.Stage = 8
	p.Participants["u1"] = true
	p.Participants["u2"] = true

	if out := e.HandleMessage(f, guildMsg("u1", "open it")); out != OutcomeStage {
		t.Fatalf("HandleMessage() = %v, want OutcomeStage", out)
	}

	if f.rolesCreated != 1 {
		t.Errorf("roles created = %d, want 1", f.rolesCreated)
	}
	if f.channelsCreated != 1 {
		t.Errorf("channels created = %d, want 1", f.channelsCreated)
	}
	if f.roles[0].Name != e.RewardRoleName {
		t.Errorf("role name = %q, want %q", f.roles[0].Name, e.RewardRoleName)
	}
	if f.channels[0].Name != e.ArchiveChannelName {
		t.Errorf("channel name = %q, want %q", f.channels[0].Name, e.ArchiveChannelName)
	}
	if len(f.grants) != 2 {
		t.Errorf("role grants = %v, want one per participant", f.grants)
	}

	last := f.sent[len(f.sent)-1]
	if last.ChannelID != "arch1" || last.Content != e.brain.Messages.FinaleRoomWelcome {
		t.Errorf("welcome = %+v, want %q in the archive channel", last, e.brain.Messages.FinaleRoomWelcome)
	}

	if got := e.testProgress("guild1").Stage; got != 9 {
		t.Errorf("Stage = %d, want 9", got)
	}
}

func TestFinaleReplayedIsIdempotent(t *testing.T) {
	e, f := newTestEngine(t)
	p := e.testProgress("guild1")
	p.Stage = 8
	p.Participants["u1"] = true

	e.HandleMessage(f, guildMsg("u1", "open it"))

	// Members now carry the role; a replay finds everything in place.
	f.members = map[string]*discordgo.Member{
		"u1": {User: &discordgo.User{ID: "u1"}, Roles: []string{f.roles[0].ID}},
	}
	grantsBefore := len(f.grants)

	e.testProgress("guild1").Stage = 8
	e.HandleMessage(f, guildMsg("u1", "open it"))

	if f.rolesCreated != 1 {
		t.Errorf("roles created = %d, want still 1", f.rolesCreated)
	}
	if f.channelsCreated != 1 {
		t.Errorf("channels created = %d, want still 1", f.channelsCreated)
	}
	if len(f.grants) != grantsBefore {
		t.Errorf("grants = %v, want no re-grant for role holders", f.grants)
	}
}
