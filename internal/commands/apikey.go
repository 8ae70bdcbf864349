package commands

import (
	"fmt"
	"strings"

	"valobet/internal/database"
	"valobet/internal/webhook"
	"valobet/pkg/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func CmdAPIKey(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			"Usage: `!apikey create <name>` | `!apikey list` | `!apikey delete <prefix>`"))
		return
	}

	switch strings.ToLower(args[0]) {
	case "create":
		name := "default"
		if len(args) >= 2 {
			name = args[1]
		}
		key := uuid.New().String()
		if err := database.CreateAPIKey(key, m.Author.ID, name); err != nil {
			s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error creating API key."))
			return
		}
		// Chave só por DM, nunca no canal
		ch, err := s.UserChannelCreate(m.Author.ID)
		if err == nil {
			s.ChannelMessageSendEmbed(ch.ID, utils.SuccessEmbed("API Key Created",
				fmt.Sprintf("Name: **%s**\nKey: `%s`\n\nUse the `X-API-Key` header.", name, key)))
		}
		s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("API Key Created", "Check your DMs for the key."))

	case "list":
		keys, err := database.ListAPIKeys(m.Author.ID)
		if err != nil || len(keys) == 0 {
			s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed("API Keys", "You have no API keys."))
			return
		}
		var sb strings.Builder
		for _, k := range keys {
			prefix := k.Key
			if len(prefix) > 8 {
				prefix = prefix[:8]
			}
			sb.WriteString(fmt.Sprintf("**%s** — `%s...` (created <t:%d:R>)\n", k.Name, prefix, k.CreatedAt.Unix()))
		}
		s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed("API Keys", sb.String()))

	case "delete":
		if len(args) < 2 {
			s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Usage: `!apikey delete <prefix>`"))
			return
		}
		if err := database.DeleteAPIKey(m.Author.ID, args[1]); err != nil {
			s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error deleting API key."))
			return
		}
		s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("API Key Deleted", "Keys matching that prefix were removed."))

	default:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Unknown subcommand. Use `create`, `list` or `delete`."))
	}
}

func CmdWebhook(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Usage: `!webhook <url>` — get notified when your wagers settle"))
		return
	}

	url := args[0]
	if !strings.HasPrefix(url, "https://") {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Webhook URL must use https."))
		return
	}

	if err := webhook.TestWebhook(url); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Could not reach that URL. Webhook not saved."))
		return
	}

	if err := database.SetWebhook(m.Author.ID, url); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error saving webhook."))
		return
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Webhook Saved",
		"You'll receive a POST whenever one of your wagers settles."))
}
