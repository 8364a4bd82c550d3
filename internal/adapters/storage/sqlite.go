package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteUserStore хранит пользователей в одном файле, для запуска без redis
type SQLiteUserStore struct {
	db *sql.DB
}

func NewSQLiteUserStore(dbPath string) (*SQLiteUserStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bans (
			user_id INTEGER PRIMARY KEY,
			banned_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteUserStore{db: db}, nil
}

func (s *SQLiteUserStore) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (user_id, display_name, username, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.DisplayName, u.Username, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM bans WHERE user_id = ?`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ban: %w", err)
	}
	return true, nil
}

func (s *SQLiteUserStore) SetBanned(ctx context.Context, userID int64, banned bool) error {
	var err error
	if banned {
		_, err = s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO bans (user_id, banned_at) VALUES (?, ?)
		`, userID, time.Now().Unix())
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM bans WHERE user_id = ?`, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to set ban: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) ListBanned(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM bans ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteUserStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *SQLiteUserStore) Close() error {
	return s.db.Close()
}
