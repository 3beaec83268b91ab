// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package credential is the hub's user/session store: registration,
// login, bearer token resolution, and patchbay access grants, backed by
// DuckDB.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/applebiter/jackdaw/internal/config"
	"github.com/applebiter/jackdaw/internal/logging"
	"github.com/applebiter/jackdaw/internal/metrics"
)

// Errors returned by Store methods. Callers map these to HTTP status
// codes at the API boundary.
var (
	ErrNameTaken        = errors.New("credential: name already registered")
	ErrInvalidName      = errors.New("credential: name must not be empty")
	ErrInvalidPassword  = errors.New("credential: password does not meet requirements")
	ErrInvalidCredentials = errors.New("credential: invalid name or password")
	ErrUserNotFound     = errors.New("credential: user not found")
	ErrSessionNotFound  = errors.New("credential: session not found")
)

const sessionTokenBytes = 32

// User is an account registered with the hub.
type User struct {
	ID                string
	Name              string
	Email             string
	CreatedAt         time.Time
	IsOwner           bool
	HasPatchbayAccess bool
}

// Session is an issued bearer token tying a client to a User.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// Store is the DuckDB-backed credential store.
type Store struct {
	db         *sql.DB
	bcryptCost int
}

// New opens (creating if necessary) the DuckDB file at cfg.Path and
// ensures the users/sessions schema exists.
func New(cfg *config.DatabaseConfig, bcryptCost int) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, bcryptCost: bcryptCost}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			digest BLOB NOT NULL,
			email TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_owner BOOLEAN NOT NULL DEFAULT FALSE,
			has_patchbay_access BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register creates a new account. The first account ever registered is
// elected owner and is granted patchbay access automatically; this
// election is performed inside the same transaction as the insert so two
// concurrent first registrations can never both become owner.
func (s *Store) Register(ctx context.Context, name, password, email string) (*User, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(password) < 8 {
		return nil, ErrInvalidPassword
	}

	digest, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	isOwner := count == 0

	user := &User{
		ID:                uuid.New().String(),
		Name:              name,
		Email:             email,
		CreatedAt:         time.Now(),
		IsOwner:           isOwner,
		HasPatchbayAccess: isOwner,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, digest, email, created_at, is_owner, has_patchbay_access)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, digest, user.Email, user.CreatedAt, user.IsOwner, user.HasPatchbayAccess,
	)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	metrics.RecordAuthAttempt("register", true)
	logging.Info().Str("user", user.Name).Bool("owner", isOwner).Msg("registered new account")
	return user, nil
}

// Login verifies name/password and issues a new bearer session token.
// Tokens do not expire.
func (s *Store) Login(ctx context.Context, name, password string) (*Session, error) {
	var (
		id     string
		digest []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, digest FROM users WHERE name = ?`, name).Scan(&id, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordAuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !verifyPassword(digest, password) {
		metrics.RecordAuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &Session{Token: token, UserID: id, CreatedAt: time.Now()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		session.Token, session.UserID, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.RecordAuthAttempt("login", true)
	metrics.ActiveSessions.Inc()
	return session, nil
}

// Resolve maps a bearer token to the User that holds it.
func (s *Store) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.created_at, u.is_owner, u.has_patchbay_access
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, token)

	var (
		u     User
		email sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &email, &u.CreatedAt, &u.IsOwner, &u.HasPatchbayAccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	u.Email = email.String
	return &u, nil
}

// Grant sets whether userID holds patchbay access. Only the owner may
// call this successfully through the API layer; the store itself does
// not enforce that, it only persists the flag.
func (s *Store) Grant(ctx context.Context, userID string, hasAccess bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET has_patchbay_access = ? WHERE id = ?`, hasAccess, userID)
	if err != nil {
		return fmt.Errorf("failed to update patchbay access: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm update: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetByID fetches a user by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at, is_owner, has_patchbay_access
		FROM users WHERE id = ?`, id)

	var (
		u     User
		email sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &email, &u.CreatedAt, &u.IsOwner, &u.HasPatchbayAccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	u.Email = email.String
	return &u, nil
}

// ListUsers returns every registered account, ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, created_at, is_owner, has_patchbay_access
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var (
			u     User
			email sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &email, &u.CreatedAt, &u.IsOwner, &u.HasPatchbayAccess); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Email = email.String
		users = append(users, &u)
	}
	return users, rows.Err()
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashPassword bcrypt-hashes password, pre-hashing with SHA-256 first when
// it exceeds bcrypt's 72-byte input limit so long passwords are not
// silently truncated.
func hashPassword(password string, cost int) ([]byte, error) {
	input := []byte(password)
	if len(input) > 72 {
		sum := sha256.Sum256(input)
		input = []byte(base64.StdEncoding.EncodeToString(sum[:]))
	}
	return bcrypt.GenerateFromPassword(input, cost)
}

func verifyPassword(digest []byte, password string) bool {
	input := []byte(password)
	if len(input) > 72 {
		sum := sha256.Sum256(input)
		input = []byte(base64.StdEncoding.EncodeToString(sum[:]))
	}
	return bcrypt.CompareHashAndPassword(digest, input) == nil
}

func isUniqueViolation(err error) bool {
	// duckdb-go surfaces constraint violations as plain errors without a
	// typed sentinel; match on the driver's message text.
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "constraint")
}
