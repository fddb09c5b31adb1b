package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// An in-memory sqlite database lives and dies with its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type dialect struct {
	serial    string
	timestamp string
}

var dialects = map[string]dialect{
	DriverPostgres: {serial: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"},
	DriverSQLite:   {serial: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP"},
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{serial}},
		username TEXT NOT NULL DEFAULT '',
		avatar_url TEXT
		)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id {{serial}},
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending','accepted','rejected')),
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
		)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_friend_requests_pending
		ON friend_requests (sender_id, receiver_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS ix_friend_requests_receiver ON friend_requests (receiver_id, status)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		id {{serial}},
		user1_id BIGINT NOT NULL,
		user2_id BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (user1_id, user2_id)
		)`,
	// One friendship per unordered pair, whichever side accepted.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_friendships_pair ON friendships (
		(CASE WHEN user1_id < user2_id THEN user1_id ELSE user2_id END),
		(CASE WHEN user1_id < user2_id THEN user2_id ELSE user1_id END)
		)`,
	`CREATE INDEX IF NOT EXISTS ix_friendships_user2 ON friendships (user2_id)`,
	`CREATE TABLE IF NOT EXISTS follows (
		id {{serial}},
		follower_id BIGINT NOT NULL,
		following_id BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (follower_id, following_id)
		)`,
	`CREATE INDEX IF NOT EXISTS ix_follows_following ON follows (following_id)`,
	`CREATE TABLE IF NOT EXISTS blocks (
		id {{serial}},
		blocker_id BIGINT NOT NULL,
		blocked_id BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (blocker_id, blocked_id)
		)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id {{serial}},
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_messages_pair ON messages (sender_id, receiver_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id {{serial}},
		user_id BIGINT NOT NULL,
		sender_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		reference_id BIGINT NOT NULL DEFAULT 0,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_notifications_user ON notifications (user_id)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id {{serial}},
		user_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_user ON posts (user_id)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		id {{serial}},
		post_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (post_id, user_id)
		)`,
	`CREATE TABLE IF NOT EXISTS post_comments (
		id {{serial}},
		post_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_post_comments_post ON post_comments (post_id)`,
	`CREATE TABLE IF NOT EXISTS post_shares (
		id {{serial}},
		post_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		recipient_id BIGINT NOT NULL,
		created_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_post_shares_post ON post_shares (post_id)`,
	`CREATE TABLE IF NOT EXISTS stories (
		id {{serial}},
		user_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		expires_at {{timestamp}} NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS ix_stories_expires ON stories (expires_at)`,
}

func runMigrations(ctx context.Context, db *sqlx.DB, driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q", driver)
	}
	r := strings.NewReplacer("{{serial}}", d.serial, "{{timestamp}}", d.timestamp)

	for _, q := range migrations {
		if _, err := db.ExecContext(ctx, r.Replace(q)); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
