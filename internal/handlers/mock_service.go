package handlers

import (
	"context"
	"net/http"

	"collab_notes/internal/hub"
	"collab_notes/internal/models"
	"collab_notes/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpUser  models.User
	signUpErr   error
	genToken    string
	genUser     models.User
	genTokenErr error
	parseID     string
	parseErr    error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (models.User, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpUser, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, models.User, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genToken, m.genUser, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockNotes struct {
	listResp  []models.Note
	listErr   error
	createdN  models.Note
	createErr error
	updatedN  models.Note
	updateErr error
	deletedN  models.Note
	deleteErr error

	lastAuthorID    string
	lastContent     string
	lastNoteID      string
	lastRequesterID string
}

func (m *mockNotes) List(ctx context.Context) ([]models.Note, error) {
	return m.listResp, m.listErr
}
func (m *mockNotes) Create(ctx context.Context, authorID, content string) (models.Note, error) {
	m.lastAuthorID = authorID
	m.lastContent = content
	return m.createdN, m.createErr
}
func (m *mockNotes) Update(ctx context.Context, id, requesterID, content string) (models.Note, error) {
	m.lastNoteID = id
	m.lastRequesterID = requesterID
	m.lastContent = content
	return m.updatedN, m.updateErr
}
func (m *mockNotes) Delete(ctx context.Context, id, requesterID string) (models.Note, error) {
	m.lastNoteID = id
	m.lastRequesterID = requesterID
	return m.deletedN, m.deleteErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, hub.NewHub(nil), nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
