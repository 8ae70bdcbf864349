package valorant

import "strings"

// Account é a resposta de /valorant/v1/account
type Account struct {
	PUUID  string `json:"puuid"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
	Region string `json:"region"`
}

// Match é uma partida completa retornada por /valorant/v3/matches
type Match struct {
	Metadata Metadata `json:"metadata"`
	Players  Players  `json:"players"`
	Teams    Teams    `json:"teams"`
}

type Metadata struct {
	MatchID string `json:"matchid"`
	Map     string `json:"map"`
	Mode    string `json:"mode"`
}

type Players struct {
	AllPlayers []MatchPlayer `json:"all_players"`
}

type MatchPlayer struct {
	Name      string      `json:"name"`
	Tag       string      `json:"tag"`
	Team      string      `json:"team"`
	Character string      `json:"character"`
	Stats     PlayerStats `json:"stats"`
}

type PlayerStats struct {
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
}

type Teams struct {
	Red  Team `json:"red"`
	Blue Team `json:"blue"`
}

type Team struct {
	HasWon    bool `json:"has_won"`
	RoundsWon int  `json:"rounds_won"`
}

// TeamOf retorna os dados do time ("red" ou "blue") dentro da partida
func (m *Match) TeamOf(teamName string) Team {
	if strings.EqualFold(teamName, "red") {
		return m.Teams.Red
	}
	return m.Teams.Blue
}
