package service

import (
	"fmt"
	"strings"
	"time"

	"collab_notes/internal/models"
	"collab_notes/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is the absolute lifetime of an issued token.
const tokenTTL = 2 * time.Hour

// AuthService handles user registration, credential verification and tokens.
type AuthService struct {
	userRepo   repository.Users
	signingKey []byte
}

func NewAuthService(repo repository.Users, signingKey string) *AuthService {
	return &AuthService{userRepo: repo, signingKey: []byte(signingKey)}
}

// SignUp hashes the password and creates a new user.
// Usernames are unique under case-insensitive comparison.
func (s *AuthService) SignUp(username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, fmt.Errorf("username and password required: %w", ErrInvalidInput)
	}

	existing, err := s.userRepo.GetByUsernameFold(username)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, ErrConflict
	}

	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(u); err != nil {
		// NOCASE unique index is the backstop for a check-then-insert race.
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}
	return u, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateToken validates credentials and returns a signed JWT plus the user.
// Lookup is exact-case; every failure mode returns the same generic error.
func (s *AuthService) GenerateToken(username, password string) (string, models.User, error) {
	if username == "" || password == "" {
		return "", models.User{}, fmt.Errorf("username and password required: %w", ErrInvalidInput)
	}

	u, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", models.User{}, err
	}
	if u == nil {
		return "", models.User{}, ErrUnauthenticated
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", models.User{}, ErrUnauthenticated
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, *u, nil
}

// ParseToken parses a JWT and returns the embedded userID.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrUnauthenticated
	}
	return claims.UserID, nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.signingKey)
}
