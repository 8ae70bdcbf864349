package events

import (
	"log"
	"strings"
	"sync"

	"valobet/internal/tracker"

	"github.com/bwmarrin/discordgo"
)

var (
	trk *tracker.Tracker

	// Última atividade conhecida por guild:user (o gateway não manda o
	// estado anterior)
	playing   = make(map[string]bool)
	playingMu sync.Mutex
)

// Setup wires the tracker into the presence and voice handlers.
func Setup(t *tracker.Tracker) {
	trk = t
}

// PresenceUpdate detects Valorant activity starting and stopping. A start
// opens a tracking session; a stop is only recorded here, the poller owns
// session resolution.
func PresenceUpdate(s *discordgo.Session, p *discordgo.PresenceUpdate) {
	if trk == nil || p.User == nil {
		return
	}
	guildID := p.GuildID
	userID := p.User.ID
	key := guildID + ":" + userID

	now := hasValorantActivity(p.Activities)

	playingMu.Lock()
	was := playing[key]
	if now {
		playing[key] = true
	} else {
		delete(playing, key)
	}
	playingMu.Unlock()

	if now && !was {
		locationID := currentVoiceChannel(s, guildID, userID)
		log.Printf("[PRESENCE] %s started playing Valorant in guild %s (VC: %q)", userID, guildID, locationID)
		// StartSession faz I/O (baseline fetch), não bloquear o handler
		go trk.StartSession(guildID, userID, locationID)
	} else if !now && was {
		log.Printf("[PRESENCE] %s stopped playing Valorant in guild %s", userID, guildID)
	}
}

func hasValorantActivity(activities []*discordgo.Activity) bool {
	for _, a := range activities {
		if a != nil && strings.Contains(strings.ToLower(a.Name), "valorant") {
			return true
		}
	}
	return false
}

// currentVoiceChannel queries the gateway state for the user's voice channel.
func currentVoiceChannel(s *discordgo.Session, guildID, userID string) string {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}
