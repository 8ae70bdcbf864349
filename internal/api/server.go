package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"valobet/internal/database"
	"valobet/internal/wager"
	"valobet/pkg/config"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
}

type PoolResponse struct {
	GuildID   string    `json:"guild_id"`
	Subject   string    `json:"subject"`
	WinTotal  int       `json:"win_total"`
	LossTotal int       `json:"loss_total"`
	WinBets   int       `json:"win_bets"`
	LossBets  int       `json:"loss_bets"`
	ClosesAt  time.Time `json:"closes_at"`
	Closed    bool      `json:"closed"`
}

var wagers *wager.Manager

func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Missing API Key"})
			return
		}

		userID, err := database.GetUserByAPIKey(key)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid API Key"})
			return
		}

		// Add UserID to header for next handler (simple context passing)
		r.Header.Set("X-User-ID", userID)
		next(w, r)
	}
}

func HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("X-User-ID")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BalanceResponse{
		UserID:  userID,
		Balance: database.GetBalance(userID),
	})
}

func HandlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	views := wagers.ActivePools()
	pools := make([]PoolResponse, 0, len(views))
	for _, v := range views {
		pools = append(pools, PoolResponse{
			GuildID:   v.GuildID,
			Subject:   v.Subject,
			WinTotal:  v.WinTotal,
			LossTotal: v.LossTotal,
			WinBets:   v.WinBets,
			LossBets:  v.LossBets,
			ClosesAt:  v.ClosesAt,
			Closed:    v.Closed,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pools)
}

// Start sobe o servidor HTTP da API
func Start(m *wager.Manager) {
	wagers = m

	http.HandleFunc("/api/me", AuthMiddleware(HandleMe))
	http.HandleFunc("/api/pools", AuthMiddleware(HandlePools))

	port := config.Bot.ApiPort
	if port == "" {
		port = "8080"
	}

	log.Printf("API server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("API server stopped: %v", err)
	}
}
