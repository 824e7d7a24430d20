// Package storage is the backend's relational store: users and the
// server-side mirror of each user's goals. It performs no allocation
// computation, that stays client-side.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Goal is the persisted mirror row. ClientID is the planner-assigned goal
// id and is unique across the table; the numeric ID is the backend's own
// primary key.
type Goal struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	ClientID     string  `json:"clientId"`
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
	TimeFrame    int64   `json:"timeFrame"`
	Progress     float64 `json:"progress"`
}

type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, runs migrations and returns a
// ready repository.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&exists); err != nil {
		return User{}, fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return User{}, ErrUsernameTaken
	}

	u := User{Username: username, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id, created_at`,
		username, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// UpsertGoal inserts or replaces the mirror row identified by clientID.
func (r *Repository) UpsertGoal(ctx context.Context, g Goal) (Goal, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO goals (user_id, client_id, name, target_amount, time_frame, progress)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET
		     name = excluded.name,
		     target_amount = excluded.target_amount,
		     time_frame = excluded.time_frame,
		     progress = excluded.progress,
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		g.UserID, g.ClientID, g.Name, g.TargetAmount, g.TimeFrame, g.Progress).Scan(&g.ID)
	if err != nil {
		return Goal{}, fmt.Errorf("upsert goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal mirrored",
		"goal_id", g.ID, "client_id", g.ClientID, "user_id", g.UserID)
	return g, nil
}

func (r *Repository) ListGoalsByUser(ctx context.Context, userID int64) ([]Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, client_id, name, target_amount, time_frame, progress
		 FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.ClientID, &g.Name,
			&g.TargetAmount, &g.TimeFrame, &g.Progress); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// DeleteGoal removes a goal by backend id, scoped to its owner. Returns
// ErrNotFound when no owned row matched.
func (r *Repository) DeleteGoal(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGoalByClientID removes the mirror row for a planner goal id. Absent
// rows are a no-op: the mirror delete is idempotent like the planner's.
func (r *Repository) DeleteGoalByClientID(ctx context.Context, userID int64, clientID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE user_id = ? AND client_id = ?`, userID, clientID); err != nil {
		return fmt.Errorf("delete goal by client id: %w", err)
	}
	return nil
}
