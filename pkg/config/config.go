package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

type EconomyConfig struct {
	DailyBaseAmount int `json:"daily_base_amount"`
	DailyMaxAmount  int `json:"daily_max_amount"`
	MinWager        int `json:"min_wager"`
}

type TrackerConfig struct {
	PollIntervalSeconds int      `json:"poll_interval_seconds"`
	GroupWaitSeconds    int      `json:"group_wait_seconds"`
	BetWindowSeconds    int      `json:"bet_window_seconds"`
	AllowedModes        []string `json:"allowed_modes"`
	DefaultRegion       string   `json:"default_region"`
}

type DatabaseConfig struct {
	Type string `json:"type"` // "sqlite" ou "postgres"
}

type GeneralConfig struct {
	BotName         string         `json:"bot_name"`
	CurrencyName    string         `json:"currency_name"`
	CurrencySymbol  string         `json:"currency_symbol"`
	EnableAPI       bool           `json:"enable_api"`
	ApiPort         string         `json:"api_port"`
	AllowedChannels []string       `json:"allowed_channels"`
	Database        DatabaseConfig `json:"database"`
}

var (
	Economy    EconomyConfig
	Tracker    TrackerConfig
	Bot        GeneralConfig
	DBType     string
	ConnString string
)

func Load() {
	loadJSON("economy.json", &Economy)
	loadJSON("tracker.json", &Tracker)
	loadJSON("config.json", &Bot)

	applyTrackerDefaults()

	// Configurar database defaults
	setupDatabaseConfig()
}

func applyTrackerDefaults() {
	if Tracker.PollIntervalSeconds <= 0 {
		Tracker.PollIntervalSeconds = 90
	}
	if Tracker.GroupWaitSeconds <= 0 {
		Tracker.GroupWaitSeconds = 30
	}
	if Tracker.BetWindowSeconds <= 0 {
		Tracker.BetWindowSeconds = 300
	}
	if len(Tracker.AllowedModes) == 0 {
		Tracker.AllowedModes = []string{"Competitive"}
	}
	if Tracker.DefaultRegion == "" {
		Tracker.DefaultRegion = "na"
	}
	if Economy.MinWager <= 0 {
		Economy.MinWager = 10
	}
}

func setupDatabaseConfig() {
	// DB_TYPE do .env sobrescreve o config.json
	DBType = os.Getenv("DB_TYPE")
	if DBType == "" {
		DBType = Bot.Database.Type
	}
	if DBType == "" {
		DBType = "sqlite"
	}

	switch DBType {
	case "postgres":
		ConnString = buildPostgresConnectionString()
	case "sqlite":
		fallthrough
	default:
		// Caminho do SQLite vem do .env ou usa default
		ConnString = os.Getenv("SQLITE_PATH")
		if ConnString == "" {
			ConnString = "./valobet.db"
		}
		DBType = "sqlite"
	}
}

func buildPostgresConnectionString() string {
	// Usar a DATABASE_URL completa se disponível (funciona com pgx)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		log.Println("Using DATABASE_URL from environment")
		return dbURL
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		log.Fatal("DB_HOST is required for PostgreSQL. Set it in .env file or use DATABASE_URL")
	}

	portStr := os.Getenv("DB_PORT")
	port := 5432
	if portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		log.Fatal("DB_USER is required for PostgreSQL. Set it in .env file")
	}

	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		log.Fatal("DB_PASSWORD is required for PostgreSQL. Set it in .env file")
	}

	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "postgres"
	}

	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "require"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func loadJSON(filename string, target interface{}) {
	file, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("Error reading %s: %v", filename, err)
	}

	err = json.Unmarshal(file, target)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", filename, err)
	}
}

// IsChannelAllowed checks if a channel ID is in the allowed channels list
// Returns true if the list is empty (all channels allowed) or if the channel is in the list
func (c *GeneralConfig) IsChannelAllowed(channelID string) bool {
	if len(c.AllowedChannels) == 0 {
		return true
	}
	for _, id := range c.AllowedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// IsModeAllowed checks a match mode against the tracked mode allow-list.
func (t *TrackerConfig) IsModeAllowed(mode string) bool {
	for _, m := range t.AllowedModes {
		if strings.EqualFold(m, mode) {
			return true
		}
	}
	return false
}
