package repository

import (
	"context"
	"database/sql"

	"collab_notes/internal/models"
	"collab_notes/internal/repository/db"
)

// Users owns user identities: created on registration, never updated or deleted.
type Users interface {
	Create(u models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByUsernameFold(username string) (*models.User, error)
}

// Notes owns the note collection and is its single writer.
type Notes interface {
	List(ctx context.Context) ([]models.Note, error)
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Insert(ctx context.Context, n models.Note) error
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type Repository struct {
	Users Users
	Notes Notes
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Users: NewUserRepository(sqlDB),
		Notes: NewNoteRepository(sqlDB),
	}
}

// InitDB opens the backing SQLite database and bootstraps the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
