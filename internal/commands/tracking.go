package commands

import (
	"fmt"
	"strings"

	"valobet/internal/database"
	"valobet/pkg/config"
	"valobet/pkg/utils"

	"github.com/bwmarrin/discordgo"
)

var validRegions = map[string]bool{"na": true, "eu": true, "ap": true, "kr": true, "br": true, "latam": true}

// CmdRegister verifica a conta na API antes de salvar, igual ao fluxo antigo
func CmdRegister(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 || !strings.Contains(args[0], "#") {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			"Usage: `!register <Name#TAG> [region]`\nExample: `!register Player#NA1 na`"))
		return
	}

	parts := strings.SplitN(args[0], "#", 2)
	riotName, riotTag := parts[0], parts[1]
	if riotName == "" || riotTag == "" {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Invalid Riot ID. Use the `Name#TAG` format."))
		return
	}

	region := config.Tracker.DefaultRegion
	if len(args) >= 2 {
		region = strings.ToLower(args[1])
		if !validRegions[region] {
			s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Invalid region. Use one of: na, eu, ap, kr, br, latam."))
			return
		}
	}

	// Verify the account exists before saving
	if _, err := riot.GetAccount(riotName, riotTag); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			fmt.Sprintf("Could not find account **%s#%s**. Check your Riot ID and try again.", riotName, riotTag)))
		return
	}

	err := database.SaveTrackedPlayer(database.TrackedPlayer{
		GuildID:  m.GuildID,
		UserID:   m.Author.ID,
		RiotName: riotName,
		RiotTag:  riotTag,
		Region:   region,
	})
	if err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error saving registration."))
		return
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Registered!",
		fmt.Sprintf("Now tracking **%s#%s** (%s) in this server. Competitive results will be announced here.",
			riotName, riotTag, strings.ToUpper(region))))
}

func CmdUnregister(s *discordgo.Session, m *discordgo.MessageCreate) {
	if _, ok := database.GetTrackedPlayer(m.GuildID, m.Author.ID); !ok {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("You're not registered in this server."))
		return
	}

	if err := database.DeleteTrackedPlayer(m.GuildID, m.Author.ID); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error removing registration."))
		return
	}

	// Encerra a sessão aberta (se houver) e devolve as apostas
	trk.EndSession(m.GuildID, m.Author.ID)

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Unregistered",
		"Your games will no longer be tracked in this server."))
}

func CmdSetChannel(s *discordgo.Session, m *discordgo.MessageCreate) {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil || perms&discordgo.PermissionAdministrator == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Only administrators can set the announcement channel."))
		return
	}

	if err := database.SetAnnounceChannel(m.GuildID, m.ChannelID); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error saving the announcement channel."))
		return
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Channel Set",
		"Match announcements and bet settlements will be posted in this channel."))
}

func CmdLastMatch(s *discordgo.Session, m *discordgo.MessageCreate) {
	reg, ok := database.GetTrackedPlayer(m.GuildID, m.Author.ID)
	if !ok {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("You're not registered in this server. Use `!register` first!"))
		return
	}

	matches, err := riot.GetRecentMatches(reg.RiotName, reg.RiotTag, reg.Region)
	if err != nil || len(matches) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Could not fetch your match history."))
		return
	}

	for i := range matches {
		match := &matches[i]
		if !config.Tracker.IsModeAllowed(match.Metadata.Mode) {
			continue
		}

		for _, p := range match.Players.AllPlayers {
			if !strings.EqualFold(p.Name, reg.RiotName) || !strings.EqualFold(p.Tag, reg.RiotTag) {
				continue
			}

			won := match.TeamOf(p.Team).HasWon
			result := "💀 Defeat"
			color := utils.ColorRed
			if won {
				result = "🏆 Victory"
				color = utils.ColorGreen
			}

			embed := &discordgo.MessageEmbed{
				Title: "🎮 Last Competitive Match",
				Color: color,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Result", Value: result, Inline: true},
					{Name: "Score", Value: fmt.Sprintf("🔴 %d - %d 🔵", match.Teams.Red.RoundsWon, match.Teams.Blue.RoundsWon), Inline: true},
					{Name: "Map", Value: match.Metadata.Map, Inline: true},
					{Name: "Agent", Value: p.Character, Inline: true},
					{Name: "K/D/A", Value: fmt.Sprintf("%d/%d/%d", p.Stats.Kills, p.Stats.Deaths, p.Stats.Assists), Inline: true},
					{Name: "Mode", Value: match.Metadata.Mode, Inline: true},
				},
			}
			s.ChannelMessageSendEmbed(m.ChannelID, embed)
			return
		}
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("No recent competitive matches found."))
}

func CmdStats(s *discordgo.Session, m *discordgo.MessageCreate) {
	reg, ok := database.GetTrackedPlayer(m.GuildID, m.Author.ID)
	if !ok {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("You're not registered in this server. Use `!register` first!"))
		return
	}

	matches, err := riot.GetRecentMatches(reg.RiotName, reg.RiotTag, reg.Region)
	if err != nil || len(matches) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Could not fetch your match history."))
		return
	}

	wins, count := 0, 0
	kills, deaths, assists := 0, 0, 0
	for i := range matches {
		match := &matches[i]
		if !config.Tracker.IsModeAllowed(match.Metadata.Mode) {
			continue
		}
		for _, p := range match.Players.AllPlayers {
			if !strings.EqualFold(p.Name, reg.RiotName) || !strings.EqualFold(p.Tag, reg.RiotTag) {
				continue
			}
			count++
			kills += p.Stats.Kills
			deaths += p.Stats.Deaths
			assists += p.Stats.Assists
			if match.TeamOf(p.Team).HasWon {
				wins++
			}
			break
		}
		if count >= 5 {
			break
		}
	}

	if count == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("No recent competitive matches found."))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Recent Competitive Stats for %s#%s", reg.RiotName, reg.RiotTag),
		Color: utils.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Last %d Comp Games", count), Value: fmt.Sprintf("%dW - %dL", wins, count-wins), Inline: true},
			{Name: "Total K/D/A", Value: fmt.Sprintf("%d/%d/%d", kills, deaths, assists), Inline: true},
			{Name: "Avg K/D", Value: fmt.Sprintf("%.1f/%.1f", float64(kills)/float64(count), float64(deaths)/float64(count)), Inline: true},
		},
	}
	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}

func CmdTracking(s *discordgo.Session, m *discordgo.MessageCreate) {
	sessions := trk.ActiveSessions()

	var sb strings.Builder
	for _, sess := range sessions {
		if sess.GuildID != m.GuildID {
			continue
		}
		sb.WriteString(fmt.Sprintf("<@%s> — playing since <t:%d:R>\n", sess.UserID, sess.StartedAt.Unix()))
	}

	if sb.Len() == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed("Live Sessions", "Nobody is playing right now."))
		return
	}
	s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed("Live Sessions", sb.String()))
}
