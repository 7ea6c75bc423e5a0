package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"collab_notes/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`
	// Exact-case lookup: BINARY comparison overrides the column's NOCASE collation.
	selectUserByUsernameSQL     = `SELECT id, username, password_hash FROM users WHERE username = ? COLLATE BINARY`
	selectUserByUsernameFoldSQL = `SELECT id, username, password_hash FROM users WHERE username = ? COLLATE NOCASE`
)

// Create inserts a new user row.
func (r *UserRepository) Create(u models.User) error {
	if _, err := r.db.Exec(insertUserSQL, u.ID, u.Username, u.PasswordHash); err != nil {
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return nil
}

// GetByUsername fetches a user by exact-case username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne(selectUserByUsernameSQL, username)
}

// GetByUsernameFold fetches a user by case-insensitive username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsernameFold(username string) (*models.User, error) {
	return r.getOne(selectUserByUsernameFoldSQL, username)
}

func (r *UserRepository) getOne(query, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(query, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &u, nil
}
