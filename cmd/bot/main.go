package main

import (
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"valobet/internal/announce"
	"valobet/internal/api"
	"valobet/internal/commands"
	"valobet/internal/database"
	"valobet/internal/events"
	"valobet/internal/tracker"
	"valobet/internal/valorant"
	"valobet/internal/wager"
	"valobet/pkg/config"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

// ledgerStore liga o wager.Ledger ao banco
type ledgerStore struct{}

func (ledgerStore) Balance(userID string) int {
	return database.GetBalance(userID)
}

func (ledgerStore) Credit(userID string, amount int) error {
	return database.AddCoins(userID, amount)
}

func (ledgerStore) Debit(userID string, amount int) error {
	return database.RemoveCoins(userID, amount)
}

// registrationStore liga o tracker.RegistrationStore ao banco
type registrationStore struct{}

func (registrationStore) Get(guildID, userID string) (tracker.Registration, bool) {
	p, ok := database.GetTrackedPlayer(guildID, userID)
	if !ok {
		return tracker.Registration{}, false
	}
	return tracker.Registration{Name: p.RiotName, Tag: p.RiotTag, Region: p.Region}, true
}

func main() {
	_ = godotenv.Load()

	// Load Configuration
	config.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN not found in environment variables")
	}

	database.Initialize()
	defer database.DB.Close()

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatal("Error creating Discord session: ", err)
	}

	// Core wiring
	riot := valorantClient()
	wagers := wager.NewManager(ledgerStore{}, rand.New(rand.NewSource(time.Now().UnixNano())))
	trk := tracker.New(riot, registrationStore{}, wagers, announce.NewDiscord(dg), tracker.Options{
		PollInterval: time.Duration(config.Tracker.PollIntervalSeconds) * time.Second,
		GroupWait:    time.Duration(config.Tracker.GroupWaitSeconds) * time.Second,
		BetWindow:    time.Duration(config.Tracker.BetWindowSeconds) * time.Second,
		AllowedModes: config.Tracker.AllowedModes,
	})

	commands.Setup(trk, wagers, riot)
	events.Setup(trk)

	// Start API Server
	if config.Bot.EnableAPI {
		go api.Start(wagers)
	} else {
		log.Println("API is disabled in config.json")
	}

	// Register Handlers
	dg.AddHandler(commands.MessageCreate)
	dg.AddHandler(events.PresenceUpdate)
	dg.AddHandler(events.VoiceStateUpdate)

	// Identify Intent
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildPresences | discordgo.IntentsGuildVoiceStates | discordgo.IntentsMessageContent

	// Open Websocket
	err = dg.Open()
	if err != nil {
		log.Fatal("Error opening connection: ", err)
	}

	trk.Start()

	log.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	trk.Stop()
	dg.Close()
}

func valorantClient() *valorant.Client {
	return valorant.NewClient(os.Getenv("VALORANT_API_KEY"))
}
