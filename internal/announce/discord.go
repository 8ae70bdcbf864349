package announce

import (
	"fmt"
	"strings"
	"time"

	"valobet/internal/database"
	"valobet/internal/tracker"
	"valobet/internal/wager"
	"valobet/internal/webhook"
	"valobet/pkg/config"
	"valobet/pkg/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord posts match announcements and settlement results to each guild's
// configured channel. It implements tracker.Sink.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{session: s}
}

func (d *Discord) channelFor(guildID string) string {
	channelID, err := database.GetAnnounceChannel(guildID)
	if err != nil {
		return ""
	}
	return channelID
}

// AnnounceMatch posts one embed for the whole group.
func (d *Discord) AnnounceMatch(a *tracker.Announcement) error {
	channelID := d.channelFor(a.GuildID)
	if channelID == "" {
		return nil
	}

	overallWon := a.Players[0].Won
	mixedTeams := false
	for _, p := range a.Players[1:] {
		if p.Won != overallWon {
			mixedTeams = true
			break
		}
	}

	embed := utils.MatchEmbed(len(a.Players), utils.ResultColor(overallWon, mixedTeams),
		a.Map, a.Mode, a.RedScore, a.BlueScore)
	embed.Timestamp = time.Now().Format(time.RFC3339)

	riotIDs := make([]string, 0, len(a.Players))
	mentions := make([]string, 0, len(a.Players))
	for _, p := range a.Players {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s#%s", p.RiotName, p.RiotTag),
			Value:  utils.PlayerStatLine(p.Won, p.Team, p.Character, p.Kills, p.Deaths, p.Assists),
			Inline: false,
		})
		riotIDs = append(riotIDs, fmt.Sprintf("%s#%s", p.RiotName, p.RiotTag))
		mentions = append(mentions, fmt.Sprintf("<@%s>", p.UserID))
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: strings.Join(riotIDs, ", ")}

	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: strings.Join(mentions, " "),
		Embed:   embed,
	})
	return err
}

// AnnounceSettlement posts the payout lines of one settled pool and fires
// each bettor's webhook.
func (d *Discord) AnnounceSettlement(guildID string, res *wager.Result) error {
	for _, p := range res.Payouts {
		webhook.SendSettlementNotification(p.UserID, res.Subject, string(res.Outcome), p.Payout, p.Profit)
	}

	channelID := d.channelFor(guildID)
	if channelID == "" {
		return nil
	}

	var sb strings.Builder
	for _, p := range res.Payouts {
		if p.Profit >= 0 {
			sb.WriteString(fmt.Sprintf("<@%s>: +%d %s (bet %d on %s)\n",
				p.UserID, p.Profit, config.Bot.CurrencySymbol, p.Stake, p.Side))
		} else {
			sb.WriteString(fmt.Sprintf("<@%s>: %d %s (bet %d on %s)\n",
				p.UserID, p.Profit, config.Bot.CurrencySymbol, p.Stake, p.Side))
		}
	}

	embed := utils.SettlementEmbed(res.Subject, string(res.Outcome), res.Total,
		config.Bot.CurrencySymbol, sb.String())

	_, err := d.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
