package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
)

var (
	// DiscordToken holds the API Token for discord.
	DiscordToken   string
	DiscordAppID   string
	DiscordGuildID string
	OpenAIKey      string
	GoogleAPIKey   string
	AdminUserID    string

	// Timezone is the IANA zone the motel keeps time in. Cooldowns and
	// stage time windows are evaluated against this zone.
	Timezone string

	// BrainFile is the path to the stage/line content file.
	BrainFile string

	// MongoURI selects the mongo progress store when set; the diskv
	// file store is used otherwise.
	MongoURI string

	RewardRoleName     string
	ArchiveChannelName string

	// PollDebounce is the settle delay before a poll gate re-fetches
	// reaction counts.
	PollDebounce time.Duration

	// AmbientPeriod is the interval between ambient line attempts.
	AmbientPeriod time.Duration

	config *configStruct
)

type configStruct struct {
	DiscordToken       string `json:"DiscordToken"`
	DiscordAppID       string `json:"DiscordAppID"`
	DiscordGuildID     string `json:"DiscordGuildID"`
	OpenAIKey          string `json:"OpenAIKey"`
	GoogleAPIKey       string `json:"GoogleAPIKey"`
	AdminUserID        string `json:"AdminUserId"`
	Timezone           string `json:"Timezone"`
	BrainFile          string `json:"BrainFile"`
	MongoURI           string `json:"MongoURI"`
	RewardRoleName     string `json:"RewardRoleName"`
	ArchiveChannelName string `json:"ArchiveChannelName"`
	PollDebounce       string `json:"PollDebounce"`
	AmbientPeriod      string `json:"AmbientPeriod"`
}

// ReadConfig will load the configuration file for API tokens and bot
// settings. Values from the environment (optionally via a .env file)
// override the file.
func ReadConfig(filename string) error {
	fmt.Println("Reading from config file...")

	config = &configStruct{}

	file, err := os.ReadFile(filename)
	if err == nil {
		err = json.Unmarshal(file, &config)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
	} else {
		// A missing config file is fine when everything arrives via env.
		fmt.Println(err.Error())
	}

	// .env values fill the process environment without clobbering it.
	_ = godotenv.Load()

	DiscordToken = overlay("DISCORD_TOKEN", config.DiscordToken)
	DiscordAppID = overlay("DISCORD_APP_ID", config.DiscordAppID)
	DiscordGuildID = overlay("DISCORD_GUILD_ID", config.DiscordGuildID)
	OpenAIKey = overlay("OPENAI_KEY", config.OpenAIKey)
	GoogleAPIKey = overlay("GOOGLE_API_KEY", config.GoogleAPIKey)
	AdminUserID = overlay("ADMIN_USER_ID", config.AdminUserID)
	Timezone = overlay("TIMEZONE", config.Timezone)
	BrainFile = overlay("BRAIN_FILE", config.BrainFile)
	MongoURI = overlay("MONGODB_URI", config.MongoURI)
	RewardRoleName = overlay("REWARD_ROLE_NAME", config.RewardRoleName)
	ArchiveChannelName = overlay("ARCHIVE_CHANNEL_NAME", config.ArchiveChannelName)

	if Timezone == "" {
		Timezone = "America/New_York"
	}
	if BrainFile == "" {
		BrainFile = "brain.json"
	}
	if RewardRoleName == "" {
		RewardRoleName = "Keyholder"
	}
	if ArchiveChannelName == "" {
		ArchiveChannelName = "archive-of-truth"
	}

	PollDebounce = parseDurationOr(overlay("POLL_DEBOUNCE", config.PollDebounce), 1500*time.Millisecond)
	AmbientPeriod = parseDurationOr(overlay("AMBIENT_PERIOD", config.AmbientPeriod), 3*time.Hour)

	return nil
}

func overlay(env string, fileValue string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fileValue
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := str2duration.ParseDuration(value)
	if err != nil {
		fmt.Println(err.Error())
		return fallback
	}
	return d
}
