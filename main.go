package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"4d63.com/tz"
	"github.com/bwmarrin/discordgo"

	"github.com/moonlitmotel/chadbot/src/ai"
	"github.com/moonlitmotel/chadbot/src/bottools"
	"github.com/moonlitmotel/chadbot/src/brain"
	"github.com/moonlitmotel/chadbot/src/config"
	"github.com/moonlitmotel/chadbot/src/flavor"
	"github.com/moonlitmotel/chadbot/src/guestbook"
	"github.com/moonlitmotel/chadbot/src/mystery"
	"github.com/moonlitmotel/chadbot/src/tasks"
	"github.com/moonlitmotel/chadbot/src/version"
)

// Slash Command Constants
const slashMystery string = "mystery"
const slashFun string = "fun"

// Bot parameters to override .config.json parameters
var (
	GuildID  = flag.String("guild", "", "Test guild ID")
	BotToken = flag.String("token", "", "Bot access token")
	AppID    = flag.String("app", "", "Application ID")
)

var s *discordgo.Session
var chadBrain *brain.Brain
var eng *mystery.Engine

// main init to call other init functions in sequence
func init() {
	initLaunchParameters()
	initDiscordBot()
	initMystery()
}

func initLaunchParameters() {
	// Read application parameters
	flag.Parse()

	// Read values from .config.json / environment
	err := config.ReadConfig("./.config.json")

	if err != nil {
		fmt.Println(err.Error())
		return
	}

	if *BotToken == "" {
		BotToken = &config.DiscordToken
	}

	if *AppID == "" {
		AppID = &config.DiscordAppID
	}

	if *GuildID == "" {
		GuildID = &config.DiscordGuildID
	}
}

func initDiscordBot() {
	var err error

	s, err = discordgo.New("Bot " + *BotToken)
	if err != nil {
		log.Fatalf("Invalid bot parameters: %v", err)
	}
}

func initMystery() {
	var err error

	chadBrain, err = brain.Load(config.BrainFile)
	if err != nil {
		log.Fatalf("Cannot load brain file %s: %v", config.BrainFile, err)
	}

	loc, err := tz.LoadLocation(config.Timezone)
	if err != nil {
		log.Println("bad timezone, using UTC:", err)
		loc = time.UTC
	}

	var store mystery.ProgressStore
	if config.MongoURI != "" {
		ms, err := mystery.NewMongoStore(config.MongoURI)
		if err != nil {
			log.Println("mongo unavailable, falling back to disk:", err)
			store = mystery.NewDiskStore("chad-data")
		} else {
			store = ms
		}
	} else {
		store = mystery.NewDiskStore("chad-data")
	}

	eng = mystery.NewEngine(chadBrain, store, loc)
	eng.Debounce = config.PollDebounce
	eng.RewardRoleName = config.RewardRoleName
	eng.ArchiveChannelName = config.ArchiveChannelName
}

var (
	commandsHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		slashMystery: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			var action = "status"

			options := i.ApplicationCommandData().Options
			optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
			for _, opt := range options {
				optionMap[opt.Name] = opt
			}

			if opt, ok := optionMap["action"]; ok {
				action = opt.StringValue()
			}

			var str string
			switch action {
			case "reset":
				userID := bottools.GetInteractionUserID(i)
				if !bottools.IsValidDiscordID(userID) || userID != config.AdminUserID {
					str = "the motel does not take orders from you."
					break
				}
				eng.Reset(i.GuildID)
				str = "the story rewinds. stage one. pretend nothing happened."
			default:
				str = eng.StatusSummary(i.GuildID)
			}

			s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content:    str,
					Flags:      discordgo.MessageFlagsEphemeral,
					Components: []discordgo.MessageComponent{}},
			})
		},
		slashFun: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			var prompt = ""

			options := i.ApplicationCommandData().Options
			optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
			for _, opt := range options {
				optionMap[opt.Name] = opt
			}

			if opt, ok := optionMap["prompt"]; ok {
				prompt = opt.StringValue()
			}

			var str = "The concierge stirs behind the desk..."
			if !ai.Enabled() {
				str = "The concierge is off duty. (no AI key configured)"
			}

			s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content:    str,
					Flags:      discordgo.MessageFlagsEphemeral,
					Components: []discordgo.MessageComponent{}},
			})

			if ai.Enabled() {
				name := bottools.GetInteractionUserID(i)
				if i.Member != nil {
					name = i.Member.User.Username
					if i.Member.Nick != "" {
						name = i.Member.Nick
					}
				}
				ai.Reply(s, i.ChannelID, name, prompt)
			}
		},
	}
)

func main() {
	log.Println("Starting Chad", version.Release)

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Println("Bot is up!")
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := commandsHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		}
	})

	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}

		content := flavor.Normalize(m.Content, s.State.User.ID)
		name := m.Author.Username
		if m.Member != nil && m.Member.Nick != "" {
			name = m.Member.Nick
		}
		guestbook.Touch(m.Author.ID, name)

		if flavor.IsRoastBait(content) && !eng.HasDailyCooldown(m.GuildID, flavor.RoastCooldownKey) {
			if line := flavor.Pick(chadBrain.RoastPool); line != "" {
				s.ChannelMessageSendReply(m.ChannelID, line, m.Reference())
				eng.SetDailyCooldown(m.GuildID, flavor.RoastCooldownKey)
			}
		}

		if flavor.WantsFortune(content) {
			if line := flavor.Pick(chadBrain.Fortunes); line != "" {
				s.ChannelMessageSendReply(m.ChannelID, line, m.Reference())
				return
			}
		}

		outcome := eng.HandleMessage(s, mystery.Message{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			ID:        m.ID,
			AuthorID:  m.Author.ID,
			Content:   content,
			Addressed: flavor.IsAddressed(content),
		})

		// Nothing scripted wanted the message; if it was aimed at the
		// bot, let the AI layer answer.
		if outcome == mystery.OutcomeNone && flavor.IsAddressed(content) {
			ai.Reply(s, m.ChannelID, name, content)
		}
	})

	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
		if m.MessageReaction.UserID != s.State.User.ID {
			eng.HandleReaction(s, mystery.Reaction{
				GuildID:   m.GuildID,
				ChannelID: m.ChannelID,
				MessageID: m.MessageID,
				UserID:    m.UserID,
				Emoji:     m.Emoji.APIName(),
			})
		}
	})

	_, err := s.ApplicationCommandCreate(*AppID, *GuildID, &discordgo.ApplicationCommand{
		Name:        slashMystery,
		Description: "Moonlit Motel mystery standing.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "action",
				Description: "What to do with the mystery.",
				Required:    false,
				Type:        discordgo.ApplicationCommandOptionString,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{
						Name:  "Status",
						Value: "status",
					},
					{
						Name:  "Reset (admin)",
						Value: "reset",
					},
				},
			},
		},
	})
	if err != nil {
		log.Fatalf("Cannot create slash command: %v", err)
	}

	_, err = s.ApplicationCommandCreate(*AppID, *GuildID, &discordgo.ApplicationCommand{
		Name:        slashFun,
		Description: "Ask the concierge directly.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prompt",
				Description: "What to say to Chad.",
				Required:    true,
			},
		},
	})
	if err != nil {
		log.Fatalf("Cannot create slash command: %v", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	err = s.Open()
	if err != nil {
		log.Fatalf("Cannot open the session: %v", err)
	}
	defer s.Close()

	go tasks.ExecuteCronJob(s, chadBrain, config.AmbientPeriod)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	log.Println("Graceful shutdown")
}
