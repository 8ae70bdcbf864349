package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"valobet/pkg/config"
)

// Initialize inicializa o banco de dados baseado na configuração
func Initialize() {
	var err error

	switch config.DBType {
	case "postgres":
		log.Println("Initializing PostgreSQL database...")
		DB, err = NewPostgres(config.ConnString)
	case "sqlite":
		fallthrough
	default:
		log.Println("Initializing SQLite database...")
		DB, err = NewSQLite(config.ConnString)
	}

	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Printf("Database initialized successfully (type: %s)", config.DBType)
}

// NewSQLite cria e inicializa um banco SQLite
func NewSQLite(connString string) (Database, error) {
	db := NewSQLiteDatabase(connString)
	if err := db.Open(); err != nil {
		return nil, err
	}
	if err := db.CreateTables(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewPostgres cria e inicializa um banco PostgreSQL
func NewPostgres(connString string) (Database, error) {
	db := NewPostgresDatabase(connString)
	if err := db.Open(); err != nil {
		return nil, err
	}
	if err := db.CreateTables(); err != nil {
		return nil, err
	}
	return db, nil
}

// prepareQuery converte uma query com ? para o formato correto do driver
func prepareQuery(query string) string {
	if config.DBType == "postgres" {
		return convertPlaceholders(query)
	}
	return query
}

// convertPlaceholders converte ? placeholders para $N (PostgreSQL)
func convertPlaceholders(query string) string {
	result := ""
	placeholderIndex := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result += fmt.Sprintf("$%d", placeholderIndex)
			placeholderIndex++
		} else {
			result += string(query[i])
		}
	}
	return result
}

// GetBalance retorna o saldo de um usuário com retry em caso de erro
func GetBalance(userID string) int {
	var balance int
	query := prepareQuery("SELECT balance FROM users WHERE id = ?")

	// Tentar até 3 vezes com pequeno delay
	for i := 0; i < 3; i++ {
		err := DB.QueryRow(query, userID).Scan(&balance)
		if err == nil {
			return balance
		}

		if err == sql.ErrNoRows {
			// Usuário não existe, criar com saldo 0
			_, insertErr := DB.Exec(prepareQuery("INSERT INTO users (id, balance) VALUES (?, 0)"), userID)
			if insertErr != nil {
				log.Printf("[GetBalance] Error inserting user %s: %v (attempt %d)", userID, insertErr, i+1)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return 0
		}

		log.Printf("[GetBalance] Error getting balance for %s: %v (attempt %d)", userID, err, i+1)
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("[GetBalance] Failed to get balance for %s after 3 attempts, returning 0", userID)
	return 0
}

// AddCoins adiciona moedas a um usuário
func AddCoins(userID string, amount int) error {
	if config.DBType == "postgres" {
		query := `INSERT INTO users (id, balance) VALUES ($1, $2)
				  ON CONFLICT(id) DO UPDATE SET balance = users.balance + $2`
		_, err := DB.Exec(query, userID, amount)
		return err
	}
	query := "INSERT INTO users (id, balance) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET balance = balance + ?"
	_, err := DB.Exec(query, userID, amount, amount)
	return err
}

// RemoveCoins remove moedas de um usuário. Nunca deixa o saldo negativo: o
// UPDATE é condicional, então debitos concorrentes não passam do saldo —
// quem perder a corrida recebe sql.ErrNoRows.
func RemoveCoins(userID string, amount int) error {
	query := prepareQuery("UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?")
	res, err := DB.Exec(query, amount, userID, amount)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TransferCoins transfere moedas entre usuários
func TransferCoins(fromID, toID string, amount int) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Mesmo UPDATE condicional do RemoveCoins: 0 linhas = saldo insuficiente
	res, err := tx.Exec(prepareQuery("UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?"),
		amount, fromID, amount)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if config.DBType == "postgres" {
		_, err = tx.Exec(`INSERT INTO users (id, balance) VALUES ($1, $2)
						  ON CONFLICT(id) DO UPDATE SET balance = users.balance + $2`,
			toID, amount)
	} else {
		_, err = tx.Exec("INSERT INTO users (id, balance) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET balance = balance + ?",
			toID, amount, amount)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetLeaderboard retorna o ranking de saldos
func GetLeaderboard(limit int) ([]UserBalance, error) {
	query := prepareQuery("SELECT id, balance FROM users ORDER BY balance DESC LIMIT ?")
	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Printf("[LEADERBOARD ERROR] Query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []UserBalance
	for rows.Next() {
		var u UserBalance
		if err := rows.Scan(&u.ID, &u.Balance); err != nil {
			continue
		}
		users = append(users, u)
	}

	return users, nil
}

// DailyStreakInfo contém informações sobre a streak de daily do usuário
type DailyStreakInfo struct {
	Streak    int
	MaxStreak int
	Reward    int
	CanClaim  bool
	NextDaily time.Time
}

func dailyReward(streak int) int {
	base := config.Economy.DailyBaseAmount
	if base <= 0 {
		base = 100
	}
	max := config.Economy.DailyMaxAmount
	if max <= 0 {
		max = 5000
	}
	reward := (streak + 1) * base
	if reward > max {
		reward = max
	}
	return reward
}

// GetDailyStreakInfo retorna informações completas sobre o daily do usuário
func GetDailyStreakInfo(userID string) *DailyStreakInfo {
	info := &DailyStreakInfo{
		CanClaim:  true,
		NextDaily: time.Now(),
	}

	var lastDaily sql.NullTime
	var streak sql.NullInt64
	var maxStreak sql.NullInt64

	query := prepareQuery("SELECT last_daily, daily_streak, max_daily_streak FROM users WHERE id = ?")
	err := DB.QueryRow(query, userID).Scan(&lastDaily, &streak, &maxStreak)

	if err == nil {
		if streak.Valid {
			info.Streak = int(streak.Int64)
		}
		if maxStreak.Valid {
			info.MaxStreak = int(maxStreak.Int64)
		}
		if lastDaily.Valid {
			timeSince := time.Since(lastDaily.Time)
			info.CanClaim = timeSince >= 24*time.Hour
			info.NextDaily = lastDaily.Time.Add(24 * time.Hour)

			// Perde a streak depois de 48 horas sem coletar
			if timeSince > 48*time.Hour {
				info.Streak = 0
			}
		}
	}

	info.Reward = dailyReward(info.Streak)
	return info
}

// ClaimDaily coleta o daily e atualiza a streak
func ClaimDaily(userID string) (*DailyStreakInfo, error) {
	info := GetDailyStreakInfo(userID)

	if !info.CanClaim {
		return info, fmt.Errorf("daily not available yet")
	}

	now := time.Now()

	timeSinceLast := time.Since(info.NextDaily.Add(-24 * time.Hour))
	if timeSinceLast >= 0 && timeSinceLast <= 48*time.Hour {
		info.Streak++
	} else {
		info.Streak = 0
	}

	if info.Streak > info.MaxStreak {
		info.MaxStreak = info.Streak
	}

	info.Reward = dailyReward(info.Streak)

	if config.DBType == "postgres" {
		query := `INSERT INTO users (id, balance, last_daily, daily_streak, max_daily_streak)
				  VALUES ($1, 0, $2, $3, $4)
				  ON CONFLICT(id) DO UPDATE
				  SET last_daily = $2, daily_streak = $3, max_daily_streak = $4`
		if _, err := DB.Exec(query, userID, now, info.Streak, info.MaxStreak); err != nil {
			return info, err
		}
	} else {
		query := `INSERT INTO users (id, balance, last_daily, daily_streak, max_daily_streak)
				  VALUES (?, 0, ?, ?, ?)
				  ON CONFLICT(id) DO UPDATE
				  SET last_daily = ?, daily_streak = ?, max_daily_streak = ?`
		if _, err := DB.Exec(query, userID, now, info.Streak, info.MaxStreak, now, info.Streak, info.MaxStreak); err != nil {
			return info, err
		}
	}

	return info, nil
}

// CreateAPIKey cria uma nova chave de API
func CreateAPIKey(key, userID, name string) error {
	query := prepareQuery("INSERT INTO api_keys (key, user_id, name, created_at) VALUES (?, ?, ?, ?)")
	_, err := DB.Exec(query, key, userID, name, time.Now())
	return err
}

// GetUserByAPIKey retorna o userID de uma chave de API
func GetUserByAPIKey(key string) (string, error) {
	var userID string
	query := prepareQuery("SELECT user_id FROM api_keys WHERE key = ?")
	err := DB.QueryRow(query, key).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

// ListAPIKeys lista todas as chaves de API de um usuário
func ListAPIKeys(userID string) ([]APIKeyStruct, error) {
	query := prepareQuery("SELECT key, name, created_at FROM api_keys WHERE user_id = ?")
	rows, err := DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKeyStruct
	for rows.Next() {
		var k APIKeyStruct
		if err := rows.Scan(&k.Key, &k.Name, &k.CreatedAt); err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// DeleteAPIKey deleta uma chave de API
func DeleteAPIKey(userID, prefix string) error {
	query := prepareQuery("DELETE FROM api_keys WHERE user_id = ? AND key LIKE ?")
	_, err := DB.Exec(query, userID, prefix+"%")
	return err
}

// SetWebhook define a URL de webhook de um usuário
func SetWebhook(userID, url string) error {
	if config.DBType == "postgres" {
		query := `INSERT INTO users (id, balance, webhook_url) VALUES ($1, 0, $2)
				  ON CONFLICT(id) DO UPDATE SET webhook_url = $2`
		_, err := DB.Exec(query, userID, url)
		return err
	}
	query := "INSERT INTO users (id, balance, webhook_url) VALUES (?, 0, ?) ON CONFLICT(id) DO UPDATE SET webhook_url = ?"
	_, err := DB.Exec(query, userID, url, url)
	return err
}

// GetWebhook retorna a URL de webhook de um usuário
func GetWebhook(userID string) (string, error) {
	var url sql.NullString
	query := prepareQuery("SELECT webhook_url FROM users WHERE id = ?")
	err := DB.QueryRow(query, userID).Scan(&url)
	if err != nil {
		return "", err
	}
	return url.String, nil
}
