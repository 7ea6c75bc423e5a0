package service

import (
	"context"
	"fmt"
	"sync"

	"collab_notes/internal/models"
	"collab_notes/internal/repository"

	"github.com/google/uuid"
)

// SnapshotPublisher receives the full note list after every successful mutation.
// Publish must not block; slow consumers are the publisher's problem.
type SnapshotPublisher interface {
	Publish(snapshot []models.Note)
}

// NotesService owns the note collection semantics: validation, ownership
// and the publish-after-mutation contract.
type NotesService struct {
	// mu serializes mutations. Each mutation, the re-list and the publish run
	// under it, so every published snapshot reflects state at-or-after the
	// mutation that triggered it.
	mu        sync.Mutex
	noteRepo  repository.Notes
	publisher SnapshotPublisher
}

func NewNotesService(noteRepo repository.Notes, publisher SnapshotPublisher) *NotesService {
	return &NotesService{noteRepo: noteRepo, publisher: publisher}
}

// List returns the public projection of all notes in insertion order.
// Reads take no lock; single mutations are never observable half-applied.
func (s *NotesService) List(ctx context.Context) ([]models.Note, error) {
	return s.noteRepo.List(ctx)
}

// Create appends a note owned by authorID.
func (s *NotesService) Create(ctx context.Context, authorID, content string) (models.Note, error) {
	if content == "" {
		return models.Note{}, fmt.Errorf("content required: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.Note{
		ID:       uuid.NewString(),
		Content:  content,
		AuthorID: authorID,
	}
	if err := s.noteRepo.Insert(ctx, n); err != nil {
		return models.Note{}, err
	}
	s.broadcast(ctx)
	return n, nil
}

// Update replaces a note's content. Only the author may update; id and
// author attribution are preserved.
func (s *NotesService) Update(ctx context.Context, id, requesterID, content string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.requireOwned(ctx, id, requesterID)
	if err != nil {
		return models.Note{}, err
	}
	if content == "" {
		return models.Note{}, fmt.Errorf("content required: %w", ErrInvalidInput)
	}

	if err := s.noteRepo.UpdateContent(ctx, id, content); err != nil {
		return models.Note{}, err
	}
	n.Content = content
	s.broadcast(ctx)
	return *n, nil
}

// Delete removes a note. Only the author may delete. The removed note is
// returned as confirmation.
func (s *NotesService) Delete(ctx context.Context, id, requesterID string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.requireOwned(ctx, id, requesterID)
	if err != nil {
		return models.Note{}, err
	}

	if err := s.noteRepo.Delete(ctx, id); err != nil {
		return models.Note{}, err
	}
	s.broadcast(ctx)
	return *n, nil
}

// requireOwned loads a note and enforces the ownership precondition.
// Callers must hold s.mu.
func (s *NotesService) requireOwned(ctx context.Context, id, requesterID string) (*models.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("note %q: %w", id, ErrNotFound)
	}
	if n.AuthorID != requesterID {
		return nil, ErrForbidden
	}
	return n, nil
}

// broadcast pushes the refreshed list to the publisher. A failed re-list is
// swallowed: the mutation already succeeded and subscribers self-heal on the
// next snapshot. Callers must hold s.mu.
func (s *NotesService) broadcast(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	notes, err := s.noteRepo.List(ctx)
	if err != nil {
		return
	}
	s.publisher.Publish(notes)
}
