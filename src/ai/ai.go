// Package ai is Chad's fallback mouth: when a message addressed to the
// bot matches nothing scripted, an LLM answers in character instead of
// leaving silence.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/moonlitmotel/chadbot/src/config"
)

const personaPrompt = "You are Chad, the night concierge of the Moonlit Motel: theatrical, wounded, " +
	"fond of ellipses and low-stakes menace. Never break character. Reply in at most three short sentences."

// Enabled reports whether any provider is configured.
func Enabled() bool {
	return config.OpenAIKey != "" || config.GoogleAPIKey != ""
}

// Reply generates an in-character answer and sends it to the channel.
// Every failure is swallowed; a silent Chad is still Chad.
func Reply(discord *discordgo.Session, channelID string, name string, text string) {
	if !Enabled() {
		return
	}

	discord.ChannelTyping(channelID)

	str, err := generate(name, text)
	if err != nil || str == "" {
		log.Println("ai reply failed:", err)
		return
	}
	discord.ChannelMessageSend(channelID, str)
}

func generate(name string, text string) (string, error) {
	prompt := fmt.Sprintf("%s says: %s", name, text)
	if config.OpenAIKey != "" {
		return getStringFromOpenAI(prompt)
	}
	return getStringFromGoogleGemini(prompt)
}

func getStringFromOpenAI(text string) (string, error) {
	var client = openai.NewClient(config.OpenAIKey)
	var resp, err = client.CreateChatCompletion(
		context.Background(),
		openai.ChatCompletionRequest{
			Model: openai.GPT3Dot5Turbo,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: personaPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func getStringFromGoogleGemini(text string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GoogleAPIKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-pro")
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
	}
	resp, err := model.GenerateContent(ctx, genai.Text(personaPrompt+"\n\n"+text))
	if err != nil {
		return "", err
	}

	return printResponse(resp), nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	var str = ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				str += fmt.Sprint(part)
			}
		}
	}
	return str
}
