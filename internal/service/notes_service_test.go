package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"collab_notes/internal/models"
)

// fakeNoteRepo is a thread-safe in-memory repository.Notes for service tests.
type fakeNoteRepo struct {
	mu    sync.Mutex
	notes []models.Note
}

func (f *fakeNoteRepo) List(ctx context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Note, len(f.notes))
	copy(out, f.notes)
	return out, nil
}

func (f *fakeNoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNoteRepo) Insert(ctx context.Context, n models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeNoteRepo) UpdateContent(ctx context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Content = content
			return nil
		}
	}
	return nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

// recordingPublisher captures every published snapshot.
type recordingPublisher struct {
	mu        sync.Mutex
	snapshots [][]models.Note
}

func (p *recordingPublisher) Publish(snapshot []models.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
}

func (p *recordingPublisher) last(t *testing.T) []models.Note {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		t.Fatal("expected at least one published snapshot")
	}
	return p.snapshots[len(p.snapshots)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

func newNotesFixture() (*NotesService, *fakeNoteRepo, *recordingPublisher) {
	repo := &fakeNoteRepo{}
	pub := &recordingPublisher{}
	return NewNotesService(repo, pub), repo, pub
}

func TestNotesService_Create_AppendsAndBroadcasts(t *testing.T) {
	svc, _, pub := newNotesFixture()
	ctx := context.Background()

	n, err := svc.Create(ctx, "author-1", "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == "" {
		t.Error("expected a generated id")
	}
	if n.AuthorID != "author-1" || n.Content != "hello" {
		t.Errorf("unexpected note: %+v", n)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0] != n {
		t.Fatalf("expected list to contain exactly the created note, got %+v", list)
	}

	snap := pub.last(t)
	if len(snap) != 1 || snap[0] != n {
		t.Fatalf("expected broadcast snapshot containing the note, got %+v", snap)
	}
}

func TestNotesService_Create_EmptyContent(t *testing.T) {
	svc, _, pub := newNotesFixture()

	if _, err := svc.Create(context.Background(), "author-1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if pub.count() != 0 {
		t.Fatalf("no snapshot should be published on a failed mutation, got %d", pub.count())
	}
}

func TestNotesService_Update_ReplacesContentPreservingIdentity(t *testing.T) {
	svc, _, pub := newNotesFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "author-1", "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, "author-1", "hi")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || updated.AuthorID != created.AuthorID {
		t.Fatalf("id/author must be preserved, got %+v", updated)
	}
	if updated.Content != "hi" {
		t.Fatalf("expected content 'hi', got %q", updated.Content)
	}

	snap := pub.last(t)
	if len(snap) != 1 || snap[0].Content != "hi" {
		t.Fatalf("expected snapshot with updated content, got %+v", snap)
	}
}

func TestNotesService_Update_Errors(t *testing.T) {
	svc, _, _ := newNotesFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "author-1", "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name        string
		id          string
		requesterID string
		content     string
		wantErr     error
	}{
		{"not_found", "missing-id", "author-1", "x", ErrNotFound},
		{"forbidden_other_user", created.ID, "author-2", "x", ErrForbidden},
		{"empty_content", created.ID, "author-1", "", ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, tc.id, tc.requesterID, tc.content); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	// Failed updates leave the note unchanged.
	list, _ := svc.List(ctx)
	if len(list) != 1 || list[0].Content != "hello" {
		t.Fatalf("note should be unchanged after failed updates, got %+v", list)
	}
}

func TestNotesService_Delete_RemovesAndReturnsNote(t *testing.T) {
	svc, _, pub := newNotesFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "author-1", "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := svc.Delete(ctx, created.ID, "author-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != created {
		t.Fatalf("expected removed note to echo the created one, got %+v", removed)
	}

	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", list)
	}
	if snap := pub.last(t); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after delete, got %+v", snap)
	}
}

func TestNotesService_Delete_Errors(t *testing.T) {
	svc, _, _ := newNotesFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "author-1", "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Delete(ctx, "missing-id", "author-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Delete(ctx, created.ID, "author-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("note should survive failed deletes, got %+v", list)
	}
}

func TestNotesService_ConcurrentCreates_NoLostWrites(t *testing.T) {
	svc, _, _ := newNotesFixture()
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Create(ctx, "author", "note"); err != nil {
				t.Errorf("Create: %v", err)
			}
		}(i)
	}
	wg.Wait()

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != writers {
		t.Fatalf("expected %d notes, got %d", writers, len(list))
	}
	seen := make(map[string]bool, writers)
	for _, n := range list {
		if seen[n.ID] {
			t.Fatalf("duplicate note id %q", n.ID)
		}
		seen[n.ID] = true
	}
}
