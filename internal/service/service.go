package service

import (
	"context"

	"collab_notes/internal/models"
	"collab_notes/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (models.User, error)
	GenerateToken(username, password string) (string, models.User, error)
	ParseToken(accessToken string) (string, error)
}

// Notes exposes the note collection: public reads, owner-gated mutations.
type Notes interface {
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, authorID, content string) (models.Note, error)
	Update(ctx context.Context, id, requesterID, content string) (models.Note, error)
	Delete(ctx context.Context, id, requesterID string) (models.Note, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Notes
	Authorization
}

// NewService wires the repository layer into concrete services. The publisher
// is notified after every successful note mutation.
func NewService(repos *repository.Repository, publisher SnapshotPublisher, signingKey string) *Service {
	return &Service{
		Notes:         NewNotesService(repos.Notes, publisher),
		Authorization: NewAuthService(repos.Users, signingKey),
	}
}
