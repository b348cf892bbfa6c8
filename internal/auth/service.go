package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kechei-store/warehouse-api/internal/shared"
)

// UserFinder looks up accounts for authentication.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// SessionMirror keeps a Postgres record of every login for audit. The
// Redis token remains the source of truth for authentication.
type SessionMirror interface {
	InsertSession(ctx context.Context, session Session) error
	RevokeSession(ctx context.Context, tokenHash string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     UserFinder
	tokens   *TokenStore
	sessions SessionMirror
}

// NewService constructs a new Service.
func NewService(repo UserFinder, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// SetSessionMirror attaches the optional Postgres session mirror.
func (s *Service) SetSessionMirror(sessions SessionMirror) {
	s.sessions = sessions
}

// Login validates the credentials and issues a bearer token. Unknown users,
// inactive accounts and wrong passwords all map to ErrInvalidCredentials so
// responses do not leak which part failed.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, shared.Principal{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	})
	if err != nil {
		return "", nil, err
	}

	if s.sessions != nil {
		now := time.Now().UTC()
		if err := s.sessions.InsertSession(ctx, Session{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			TokenHash: tokenFingerprint(token),
			CreatedAt: now,
			ExpiresAt: now.Add(s.tokens.TTL()),
		}); err != nil {
			return "", nil, err
		}
	}
	return token, user, nil
}

// Logout revokes the bearer token and stamps its session mirror row.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	if s.sessions != nil && token != "" {
		return s.sessions.RevokeSession(ctx, tokenFingerprint(token))
	}
	return nil
}

// Resolve maps a bearer token back to its principal.
func (s *Service) Resolve(ctx context.Context, token string) (*shared.Principal, error) {
	return s.tokens.Resolve(ctx, token)
}
