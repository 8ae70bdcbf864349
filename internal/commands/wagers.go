package commands

import (
	"fmt"
	"strconv"
	"strings"

	"valobet/internal/wager"
	"valobet/pkg/config"
	"valobet/pkg/utils"

	"github.com/bwmarrin/discordgo"
)

// CmdBet places a wager on a tracked player's open pool.
func CmdBet(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 3 || len(m.Mentions) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			"Usage: `!bet @player <win|loss> <amount>`\nExample: `!bet @Player win 100`"))
		return
	}

	subject := m.Mentions[0]

	side, ok := wager.ParseSide(strings.ToLower(args[1]))
	if !ok {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Pick a side: `win` or `loss`."))
		return
	}

	amount, err := strconv.Atoi(args[2])
	if err != nil || amount < config.Economy.MinWager {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			fmt.Sprintf("Invalid amount (min %d %s).", config.Economy.MinWager, config.Bot.CurrencySymbol)))
		return
	}

	err = wagers.Place(m.GuildID, subject.ID, m.Author.ID, side, amount)
	switch err {
	case nil:
	case wager.ErrNoPool:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			fmt.Sprintf("<@%s> doesn't have an open betting pool. Pools open when a tracked player starts playing.", subject.ID)))
		return
	case wager.ErrPoolClosed:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("The betting window for this match already closed."))
		return
	case wager.ErrInvalidAmount:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Bet amount must be positive."))
		return
	case wager.ErrInsufficientBalance:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Insufficient balance! Check yours with `!balance`."))
		return
	case wager.ErrDuplicateWager:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("You already have a bet on this pool. One bet per pool."))
		return
	default:
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Error placing bet."))
		return
	}

	s.ChannelMessageSendEmbed(m.ChannelID, utils.SuccessEmbed("Bet Placed!",
		fmt.Sprintf("You bet **%d %s** on <@%s> **%s**-ing their match.",
			amount, config.Bot.CurrencySymbol, subject.ID, side)))
}

// CmdPool shows the current pool and odds for a tracked player.
func CmdPool(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(m.Mentions) == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed("Usage: `!pool @player`"))
		return
	}

	subject := m.Mentions[0]
	view, ok := wagers.View(m.GuildID, subject.ID)
	if !ok {
		s.ChannelMessageSendEmbed(m.ChannelID, utils.ErrorEmbed(
			fmt.Sprintf("<@%s> doesn't have an open betting pool.", subject.ID)))
		return
	}

	status := fmt.Sprintf("🟢 Open — closes <t:%d:R>", view.ClosesAt.Unix())
	if view.Closed {
		status = "🔒 Closed — waiting for the match result"
	}

	description := fmt.Sprintf(
		"**Status:** %s\n**Pot:** %d %s\n\n**Win** — %d bets, %d %s (odds %s)\n**Loss** — %d bets, %d %s (odds %s)",
		status, view.Total(), config.Bot.CurrencySymbol,
		view.WinBets, view.WinTotal, config.Bot.CurrencySymbol, formatOdds(view.Odds(wager.SideWin)),
		view.LossBets, view.LossTotal, config.Bot.CurrencySymbol, formatOdds(view.Odds(wager.SideLoss)))

	s.ChannelMessageSendEmbed(m.ChannelID, utils.InfoEmbed(
		fmt.Sprintf("🎲 Pool on %s", subject.Username), description))
}

func formatOdds(odds float64) string {
	if odds == 0 {
		return "∞"
	}
	return fmt.Sprintf("%.2fx", odds)
}
