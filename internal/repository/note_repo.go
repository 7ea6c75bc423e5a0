package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"collab_notes/internal/models"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Ensure implementation of Notes interface at compile time.
var _ Notes = (*NoteRepository)(nil)

const (
	// seq ordering preserves insertion order for snapshots.
	selectNotesSQL       = `SELECT id, content, author_id FROM notes ORDER BY seq`
	selectNoteByIDSQL    = `SELECT id, content, author_id FROM notes WHERE id = ?`
	insertNoteSQL        = `INSERT INTO notes (id, content, author_id) VALUES (?, ?, ?)`
	updateNoteContentSQL = `UPDATE notes SET content = ? WHERE id = ?`
	deleteNoteSQL        = `DELETE FROM notes WHERE id = ?`
)

// List returns all notes in insertion order.
func (r *NoteRepository) List(ctx context.Context) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, selectNotesSQL)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.AuthorID); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note rows: %w", err)
	}
	return notes, nil
}

// GetByID fetches a note by id. Returns (nil, nil) if not found.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	err := r.db.QueryRowContext(ctx, selectNoteByIDSQL, id).Scan(&n.ID, &n.Content, &n.AuthorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select note %q: %w", id, err)
	}
	return &n, nil
}

// Insert appends a new note.
func (r *NoteRepository) Insert(ctx context.Context, n models.Note) error {
	if _, err := r.db.ExecContext(ctx, insertNoteSQL, n.ID, n.Content, n.AuthorID); err != nil {
		return fmt.Errorf("insert note %q: %w", n.ID, err)
	}
	return nil
}

// UpdateContent replaces a note's content in place, preserving id and author.
func (r *NoteRepository) UpdateContent(ctx context.Context, id, content string) error {
	if _, err := r.db.ExecContext(ctx, updateNoteContentSQL, content, id); err != nil {
		return fmt.Errorf("update note %q: %w", id, err)
	}
	return nil
}

// Delete removes a note by id.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteNoteSQL, id); err != nil {
		return fmt.Errorf("delete note %q: %w", id, err)
	}
	return nil
}
