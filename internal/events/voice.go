package events

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// VoiceStateUpdate keeps the location-group hint of open sessions current so
// announcements can reflect where the squad was sitting.
func VoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if trk == nil {
		return
	}
	if !trk.HasSession(v.GuildID, v.UserID) {
		return
	}
	trk.SetLocation(v.GuildID, v.UserID, v.ChannelID)
	log.Printf("[VOICE] %s moved to VC %q", v.UserID, v.ChannelID)
}
