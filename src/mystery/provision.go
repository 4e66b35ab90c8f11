package mystery

import (
	"log"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// provisionFinale hands out the reward: the role, the hidden channel, and
// membership for everyone who touched the mystery. Role and channel
// creation are lookup-or-create so a replayed finale never doubles them.
func (e *Engine) provisionFinale(x Transport, guildID string, p *Progress) {
	role, err := e.ensureRewardRole(x, guildID)
	if err != nil {
		log.Println("reward role:", err)
		return
	}

	channel, err := e.ensureRestrictedChannel(x, guildID, role)
	if err != nil {
		log.Println("archive channel:", err)
		return
	}

	for userID := range p.Participants {
		member, err := x.GuildMember(guildID, userID)
		if err != nil || member == nil {
			continue
		}
		if slices.Contains(member.Roles, role.ID) {
			continue
		}
		if err := x.GuildMemberRoleAdd(guildID, userID, role.ID); err != nil {
			log.Println("grant role:", err)
		}
	}

	e.send(x, channel.ID, e.brain.Messages.FinaleRoomWelcome)
}

func (e *Engine) ensureRewardRole(x Transport, guildID string) (*discordgo.Role, error) {
	roles, err := x.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.Name == e.RewardRoleName {
			return r, nil
		}
	}

	color := 0xff66cc
	return x.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:  e.RewardRoleName,
		Color: &color,
	})
}

func (e *Engine) ensureRestrictedChannel(x Transport, guildID string, role *discordgo.Role) (*discordgo.Channel, error) {
	channels, err := x.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		if c.Name == e.ArchiveChannelName {
			return c, nil
		}
	}

	return x.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: e.ArchiveChannelName,
		Type: discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// @everyone shares its id with the guild.
				ID:   guildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    role.ID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
			},
		},
	})
}
