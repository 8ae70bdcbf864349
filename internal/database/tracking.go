package database

import (
	"database/sql"
	"time"

	"valobet/pkg/config"
)

// SaveTrackedPlayer registra (ou atualiza) o Riot ID de um usuário no servidor
func SaveTrackedPlayer(p TrackedPlayer) error {
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now()
	}
	if config.DBType == "postgres" {
		query := `INSERT INTO tracked_players (guild_id, user_id, riot_name, riot_tag, region, registered_at)
				  VALUES ($1, $2, $3, $4, $5, $6)
				  ON CONFLICT(guild_id, user_id) DO UPDATE
				  SET riot_name = $3, riot_tag = $4, region = $5, registered_at = $6`
		_, err := DB.Exec(query, p.GuildID, p.UserID, p.RiotName, p.RiotTag, p.Region, p.RegisteredAt)
		return err
	}
	query := `INSERT INTO tracked_players (guild_id, user_id, riot_name, riot_tag, region, registered_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(guild_id, user_id) DO UPDATE
			  SET riot_name = ?, riot_tag = ?, region = ?, registered_at = ?`
	_, err := DB.Exec(query, p.GuildID, p.UserID, p.RiotName, p.RiotTag, p.Region, p.RegisteredAt,
		p.RiotName, p.RiotTag, p.Region, p.RegisteredAt)
	return err
}

// GetTrackedPlayer retorna o registro de um usuário no servidor, se existir
func GetTrackedPlayer(guildID, userID string) (TrackedPlayer, bool) {
	var p TrackedPlayer
	var registeredAt sql.NullTime
	query := prepareQuery(`SELECT guild_id, user_id, riot_name, riot_tag, region, registered_at
						   FROM tracked_players WHERE guild_id = ? AND user_id = ?`)
	err := DB.QueryRow(query, guildID, userID).Scan(
		&p.GuildID, &p.UserID, &p.RiotName, &p.RiotTag, &p.Region, &registeredAt)
	if err != nil {
		return TrackedPlayer{}, false
	}
	if registeredAt.Valid {
		p.RegisteredAt = registeredAt.Time
	}
	return p, true
}

// DeleteTrackedPlayer remove o registro de um usuário no servidor
func DeleteTrackedPlayer(guildID, userID string) error {
	query := prepareQuery("DELETE FROM tracked_players WHERE guild_id = ? AND user_id = ?")
	_, err := DB.Exec(query, guildID, userID)
	return err
}

// SetAnnounceChannel define o canal de anúncios de um servidor
func SetAnnounceChannel(guildID, channelID string) error {
	if config.DBType == "postgres" {
		query := `INSERT INTO guild_settings (guild_id, announce_channel_id) VALUES ($1, $2)
				  ON CONFLICT(guild_id) DO UPDATE SET announce_channel_id = $2`
		_, err := DB.Exec(query, guildID, channelID)
		return err
	}
	query := `INSERT INTO guild_settings (guild_id, announce_channel_id) VALUES (?, ?)
			  ON CONFLICT(guild_id) DO UPDATE SET announce_channel_id = ?`
	_, err := DB.Exec(query, guildID, channelID, channelID)
	return err
}

// GetAnnounceChannel retorna o canal de anúncios configurado para um servidor
func GetAnnounceChannel(guildID string) (string, error) {
	var channelID sql.NullString
	query := prepareQuery("SELECT announce_channel_id FROM guild_settings WHERE guild_id = ?")
	err := DB.QueryRow(query, guildID).Scan(&channelID)
	if err != nil {
		return "", err
	}
	return channelID.String, nil
}
