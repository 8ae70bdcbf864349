package webhook

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"valobet/internal/database"
)

type Payload struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Amount    int       `json:"amount"`
	Profit    int       `json:"profit"`
	Timestamp time.Time `json:"timestamp"`
}

// SendSettlementNotification fires a bettor's webhook after their wager is
// settled. Failures are logged and dropped.
func SendSettlementNotification(userID, subject, outcome string, payout, profit int) {
	url, err := database.GetWebhook(userID)
	if err != nil || url == "" {
		return // No webhook configured
	}

	payload := Payload{
		Event:     "wager_settled",
		UserID:    userID,
		Subject:   subject,
		Outcome:   outcome,
		Amount:    payout,
		Profit:    profit,
		Timestamp: time.Now(),
	}

	// Send asynchronously
	go func(targetURL string, p Payload) {
		jsonBytes, _ := json.Marshal(p)

		client := http.Client{
			Timeout: 5 * time.Second,
		}

		resp, err := client.Post(targetURL, "application/json", bytes.NewBuffer(jsonBytes))
		if err != nil {
			log.Printf("Failed to trigger webhook for user %s: %v", userID, err)
			return
		}
		defer resp.Body.Close()
	}(url, payload)
}

func TestWebhook(url string) error {
	payload := Payload{
		Event:     "test",
		Timestamp: time.Now(),
	}
	jsonBytes, _ := json.Marshal(payload)
	client := http.Client{Timeout: 5 * time.Second}
	_, err := client.Post(url, "application/json", bytes.NewBuffer(jsonBytes))
	return err
}
