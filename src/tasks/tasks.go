package tasks

import (
	"log"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jasonlvhit/gocron"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// ambientChance is the probability a given guild gets a line per tick.
const ambientChance = 0.35

// ExecuteCronJob runs the ambient line scheduler: every period, each
// guild has a chance of hearing the motel mutter to itself.
func ExecuteCronJob(s *discordgo.Session, b *brain.Brain, period time.Duration) {
	minutes := uint64(period.Minutes())
	if minutes == 0 {
		minutes = 180
	}

	gocron.Every(minutes).Minutes().Do(postAmbientLines, s, b)

	<-gocron.Start()
	log.Print("Exiting cron job")
}

func postAmbientLines(s *discordgo.Session, b *brain.Brain) {
	if len(b.Ambient) == 0 {
		return
	}

	for _, guild := range s.State.Guilds {
		if rand.Float64() >= ambientChance {
			continue
		}
		channelID := ambientChannel(s, guild)
		if channelID == "" {
			continue
		}
		line := b.Ambient[rand.Intn(len(b.Ambient))]
		if _, err := s.ChannelMessageSend(channelID, line); err != nil {
			log.Println("ambient line failed:", err)
		}
	}
}

// ambientChannel picks where the motel talks to itself: the system
// channel if there is one, else the first text channel.
func ambientChannel(s *discordgo.Session, guild *discordgo.Guild) string {
	if guild.SystemChannelID != "" {
		return guild.SystemChannelID
	}

	channels, err := s.GuildChannels(guild.ID)
	if err != nil {
		return ""
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText {
			return c.ID
		}
	}
	return ""
}
