package utils

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Paleta do bot: resultado de partida e moeda
const (
	ColorGold  = 0xFFD700 // settlements, leaderboard, saldo
	ColorGreen = 0x00FF00 // vitória
	ColorRed   = 0xFF0000 // derrota, erros
	ColorBlue  = 0x0000FF // informativos
)

// ResultColor returns the embed color for a (possibly mixed) group outcome.
func ResultColor(won, mixed bool) int {
	if mixed {
		return ColorGold
	}
	if won {
		return ColorGreen
	}
	return ColorRed
}

// ScoreLine formats the rounds-won score in the announcement style.
func ScoreLine(red, blue int) string {
	return fmt.Sprintf("🔴 %d - %d 🔵", red, blue)
}

// TeamEmoji maps a match team name to its colored marker.
func TeamEmoji(team string) string {
	if strings.EqualFold(team, "red") {
		return "🔴"
	}
	return "🔵"
}

// PlayerStatLine formats one player's result row: outcome marker, team,
// agent and K/D/A with the derived ratio (deaths floored at 1).
func PlayerStatLine(won bool, team, character string, kills, deaths, assists int) string {
	resultEmoji := "💀"
	if won {
		resultEmoji = "🏆"
	}
	d := deaths
	if d < 1 {
		d = 1
	}
	kda := float64(kills+assists) / float64(d)
	return fmt.Sprintf("%s %s **%s** | K/D/A: **%d/%d/%d** (KDA: %.2f)",
		resultEmoji, TeamEmoji(team), character, kills, deaths, assists, kda)
}

// MatchEmbed is the base announcement embed: title sized to the group,
// map/mode/score fields, per-player rows appended by the caller.
func MatchEmbed(players int, color int, mapName, mode string, redScore, blueScore int) *discordgo.MessageEmbed {
	title := "🎮 Valorant Match Complete!"
	if players > 1 {
		title = fmt.Sprintf("🎮 Squad Match Complete! (%d players)", players)
	}
	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Map", Value: mapName, Inline: true},
			{Name: "Mode", Value: mode, Inline: true},
			{Name: "Score", Value: ScoreLine(redScore, blueScore), Inline: true},
		},
	}
}

// SettlementEmbed is the payout summary posted after a pool settles.
func SettlementEmbed(subject, outcome string, pot int, symbol, payoutLines string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🏆 Bets Settled!",
		Description: fmt.Sprintf("<@%s>'s match ended in a **%s**.\nPot: **%d %s**\n\n%s",
			subject, outcome, pot, symbol, payoutLines),
		Color: ColorGold,
	}
}

func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Error",
		Description: description,
		Color:       ColorRed,
	}
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ " + title,
		Description: description,
		Color:       ColorGreen,
	}
}

func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "ℹ️ " + title,
		Description: description,
		Color:       ColorBlue,
	}
}

func GoldEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 " + title,
		Description: description,
		Color:       ColorGold,
	}
}
