package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDatabase implementa a interface Database para PostgreSQL usando pgx
type PostgresDatabase struct {
	connString string
	db         *sql.DB
}

// NewPostgresDatabase cria uma nova instância do database PostgreSQL
func NewPostgresDatabase(connString string) *PostgresDatabase {
	return &PostgresDatabase{
		connString: connString,
	}
}

// Open abre a conexão com o banco de dados
func (p *PostgresDatabase) Open() error {
	log.Printf("Connecting to PostgreSQL using pgx driver...")
	log.Printf("Connection string (masked): %s", maskPassword(p.connString))

	db, err := sql.Open("pgx", p.connString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Pool de conexões conservador, funciona com poolers externos
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	p.db = db
	return nil
}

// maskPassword oculta a senha na string de conexão para logs
func maskPassword(connString string) string {
	result := connString
	if idx := strings.Index(result, "://"); idx >= 0 {
		start := idx + 3
		if atIdx := strings.Index(result[start:], "@"); atIdx >= 0 {
			userPass := result[start : start+atIdx]
			if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
				user := userPass[:colonIdx]
				result = result[:start] + user + ":****@" + result[start+atIdx+1:]
			}
		}
	}
	return result
}

// Close fecha a conexão com o banco de dados
func (p *PostgresDatabase) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Ping verifica se a conexão está ativa
func (p *PostgresDatabase) Ping() error {
	if p.db == nil {
		return fmt.Errorf("database not connected")
	}
	return p.db.Ping()
}

// GetDB retorna a instância *sql.DB subjacente
func (p *PostgresDatabase) GetDB() *sql.DB {
	return p.db
}

func (p *PostgresDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return p.db.Query(query, args...)
}

func (p *PostgresDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return p.db.QueryRow(query, args...)
}

func (p *PostgresDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return p.db.Exec(query, args...)
}

func (p *PostgresDatabase) Begin() (*sql.Tx, error) {
	return p.db.Begin()
}

// CreateTables cria as tabelas necessárias para PostgreSQL
func (p *PostgresDatabase) CreateTables() error {
	createUsersSQL := `CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		balance INTEGER DEFAULT 0,
		last_daily TIMESTAMP,
		daily_streak INTEGER DEFAULT 0,
		max_daily_streak INTEGER DEFAULT 0,
		webhook_url TEXT
	);`
	if _, err := p.db.Exec(createUsersSQL); err != nil {
		return err
	}

	createApiTableSQL := `CREATE TABLE IF NOT EXISTS api_keys (
		key TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT,
		created_at TIMESTAMP
	);`
	if _, err := p.db.Exec(createApiTableSQL); err != nil {
		return err
	}

	createTrackedSQL := `CREATE TABLE IF NOT EXISTS tracked_players (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		riot_name TEXT NOT NULL,
		riot_tag TEXT NOT NULL,
		region TEXT NOT NULL,
		registered_at TIMESTAMP,
		PRIMARY KEY (guild_id, user_id)
	);`
	if _, err := p.db.Exec(createTrackedSQL); err != nil {
		return err
	}

	createGuildSettingsSQL := `CREATE TABLE IF NOT EXISTS guild_settings (
		guild_id TEXT NOT NULL PRIMARY KEY,
		announce_channel_id TEXT
	);`
	if _, err := p.db.Exec(createGuildSettingsSQL); err != nil {
		return err
	}

	return nil
}
