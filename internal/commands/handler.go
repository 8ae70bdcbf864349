package commands

import (
	"strings"

	"valobet/internal/tracker"
	"valobet/internal/valorant"
	"valobet/internal/wager"

	"github.com/bwmarrin/discordgo"
)

var (
	trk    *tracker.Tracker
	wagers *wager.Manager
	riot   *valorant.Client
)

// Setup injects the core collaborators used by the command handlers.
func Setup(t *tracker.Tracker, m *wager.Manager, c *valorant.Client) {
	trk = t
	wagers = m
	riot = c
}

func MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	args := strings.Fields(m.Content)
	command := strings.ToLower(args[0])
	args = args[1:]

	switch command {
	case "!help", "!ajuda":
		CmdHelp(s, m)
	case "!daily":
		CmdDaily(s, m)
	case "!balance", "!saldo", "!coins", "!money":
		CmdBalance(s, m)
	case "!pay", "!transfer", "!pagar":
		CmdPay(s, m, args)
	case "!leaderboard", "!top", "!rank":
		CmdLeaderboard(s, m)
	case "!register", "!registrar":
		CmdRegister(s, m, args)
	case "!unregister":
		CmdUnregister(s, m)
	case "!lastmatch":
		CmdLastMatch(s, m)
	case "!stats":
		CmdStats(s, m)
	case "!tracking", "!sessions":
		CmdTracking(s, m)
	case "!setchannel":
		CmdSetChannel(s, m)
	case "!bet", "!apostar":
		CmdBet(s, m, args)
	case "!pool":
		CmdPool(s, m, args)
	case "!apikey":
		CmdAPIKey(s, m, args)
	case "!webhook":
		CmdWebhook(s, m, args)
	}
}
