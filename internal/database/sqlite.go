package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDatabase implementa a interface Database para SQLite
type SQLiteDatabase struct {
	connString string
	db         *sql.DB
}

// NewSQLiteDatabase cria uma nova instância do database SQLite
func NewSQLiteDatabase(connString string) *SQLiteDatabase {
	return &SQLiteDatabase{
		connString: connString,
	}
}

// Open abre a conexão com o banco de dados
func (s *SQLiteDatabase) Open() error {
	db, err := sql.Open("sqlite3", s.connString)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close fecha a conexão com o banco de dados
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifica se a conexão está ativa
func (s *SQLiteDatabase) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	return s.db.Ping()
}

// GetDB retorna a instância *sql.DB subjacente
func (s *SQLiteDatabase) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.Query(query, args...)
}

func (s *SQLiteDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.db.QueryRow(query, args...)
}

func (s *SQLiteDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.db.Exec(query, args...)
}

func (s *SQLiteDatabase) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

// CreateTables cria as tabelas necessárias para SQLite
func (s *SQLiteDatabase) CreateTables() error {
	createUsersSQL := `CREATE TABLE IF NOT EXISTS users (
		"id" TEXT NOT NULL PRIMARY KEY,
		"balance" INTEGER DEFAULT 0,
		"last_daily" DATETIME,
		"daily_streak" INTEGER DEFAULT 0,
		"max_daily_streak" INTEGER DEFAULT 0,
		"webhook_url" TEXT
	);`
	if _, err := s.db.Exec(createUsersSQL); err != nil {
		return err
	}

	createApiTableSQL := `CREATE TABLE IF NOT EXISTS api_keys (
		"key" TEXT NOT NULL PRIMARY KEY,
		"user_id" TEXT NOT NULL,
		"name" TEXT,
		"created_at" DATETIME
	);`
	if _, err := s.db.Exec(createApiTableSQL); err != nil {
		return err
	}

	createTrackedSQL := `CREATE TABLE IF NOT EXISTS tracked_players (
		"guild_id" TEXT NOT NULL,
		"user_id" TEXT NOT NULL,
		"riot_name" TEXT NOT NULL,
		"riot_tag" TEXT NOT NULL,
		"region" TEXT NOT NULL,
		"registered_at" DATETIME,
		PRIMARY KEY (guild_id, user_id)
	);`
	if _, err := s.db.Exec(createTrackedSQL); err != nil {
		return err
	}

	createGuildSettingsSQL := `CREATE TABLE IF NOT EXISTS guild_settings (
		"guild_id" TEXT NOT NULL PRIMARY KEY,
		"announce_channel_id" TEXT
	);`
	if _, err := s.db.Exec(createGuildSettingsSQL); err != nil {
		return err
	}

	return nil
}
