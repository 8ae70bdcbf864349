package commands

import (
	"fmt"
	"strconv"
	"strings"

	"valobet/internal/database"
	"valobet/pkg/config"
	"valobet/pkg/utils"

	"github.com/bwmarrin/discordgo"
)

func CmdDaily(s *discordgo.Session, m *discordgo.MessageCreate) {
	userID := m.Author.ID
	info := database.GetDailyStreakInfo(userID)

	if !info.CanClaim {
		discordTime := fmt.Sprintf("<t:%d:R>", info.NextDaily.Unix())
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(fmt.Sprintf("You already collected your daily reward! Come back %s.", discordTime)))
		return
	}

	info, err := database.ClaimDaily(userID)
	if err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error claiming daily reward."))
		return
	}

	// Adiciona as moedas
	err = database.AddCoins(userID, info.Reward)
	if err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error adding coins."))
		return
	}

	streakText := ""
	if info.Streak > 0 {
		streakText = fmt.Sprintf("\n\n🔥 **Streak: %d days**", info.Streak)
	}
	if info.MaxStreak > 0 {
		streakText += fmt.Sprintf("\n🏆 Max Streak: %d", info.MaxStreak)
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Daily Collected!",
		fmt.Sprintf("You received **%d %s**!%s", info.Reward, config.Bot.CurrencyName, streakText)))
}

func CmdBalance(s *discordgo.Session, m *discordgo.MessageCreate) {
	balance := database.GetBalance(m.Author.ID)
	s.ChannelMessageSendEmbed(m.ChannelID, utils.GoldEmbed("Balance",
		fmt.Sprintf("<@%s> has **%d %s**", m.Author.ID, balance, config.Bot.CurrencyName)))
}

func CmdPay(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 || len(m.Mentions) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Usage: `!pay @user <amount>`"))
		return
	}

	target := m.Mentions[0]
	if target.ID == m.Author.ID {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("You can't pay yourself."))
		return
	}

	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Invalid amount."))
		return
	}

	if err := database.TransferCoins(m.Author.ID, target.ID, amount); err != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Insufficient funds."))
		return
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Transfer Complete!",
		fmt.Sprintf("<@%s> sent **%d %s** to <@%s>", m.Author.ID, amount, config.Bot.CurrencyName, target.ID)))
}

func CmdLeaderboard(s *discordgo.Session, m *discordgo.MessageCreate) {
	users, err := database.GetLeaderboard(10)
	if err != nil || len(users) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Could not fetch the leaderboard."))
		return
	}

	var sb strings.Builder
	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		prefix := fmt.Sprintf("**%d.**", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s <@%s> — **%d %s**\n", prefix, u.ID, u.Balance, config.Bot.CurrencySymbol))
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.GoldEmbed("Leaderboard", sb.String()))
}

func CmdHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	help := strings.Join([]string{
		"**Economy**",
		"`!daily` — collect your daily reward",
		"`!balance` — check your balance",
		"`!pay @user <amount>` — send coins",
		"`!leaderboard` — top balances",
		"",
		"**Valorant Tracking**",
		"`!register <Name#TAG> [region]` — track your Competitive games",
		"`!unregister` — stop tracking",
		"`!lastmatch` — your last competitive match",
		"`!stats` — recent competitive summary",
		"`!tracking` — who is playing right now",
		"`!setchannel` — set the announcement channel (admin)",
		"",
		"**Betting**",
		"`!bet @player <win|loss> <amount>` — bet on a live session",
		"`!pool @player` — current pool and odds",
	}, "\n")
	s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed(config.Bot.BotName+" Commands", help))
}
