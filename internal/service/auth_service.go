package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learningtime/internal/models"
	"learningtime/internal/security"
	"learningtime/internal/validation"
)

const sessionIssuer = "learningtime"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("account is not allowed")
)

type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// AuthService issues signed session tokens and decides whether a
// session may use the app
type AuthService struct {
	signingKey      []byte
	allowList       security.AllowList
	sessionDuration time.Duration
	now             func() time.Time
}

// NewAuthService creates a new auth service. The signing key is derived
// from sessionSecret; allowedEmails is the comma separated allow-list.
func NewAuthService(sessionSecret, allowedEmails string, sessionDuration time.Duration) (*AuthService, error) {
	key, err := security.DeriveKey(sessionSecret, security.PurposeSessionToken)
	if err != nil {
		return nil, fmt.Errorf("session signing key: %w", err)
	}

	return &AuthService{
		signingKey:      key,
		allowList:       security.ParseAllowList(allowedEmails),
		sessionDuration: sessionDuration,
		now:             time.Now,
	}, nil
}

// AllowList returns the parsed allow-list
func (s *AuthService) AllowList() security.AllowList {
	return s.allowList
}

// Permits reports whether email passes the allow-list
func (s *AuthService) Permits(email string) bool {
	return s.allowList.Permits(email)
}

// IssueSession creates a signed session token for a signed-in user
func (s *AuthService) IssueSession(user models.User) (*models.Session, error) {
	user.Email = strings.TrimSpace(user.Email)
	if err := validation.ValidateEmail(user.Email); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.sessionDuration)
	claims := sessionClaims{
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        security.NewID(),
			Subject:   user.Subject,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return &models.Session{
		ID:        claims.ID,
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseSession verifies a session token. Any failure is reported as
// ErrUnauthenticated.
func (s *AuthService) ParseSession(token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.ID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: incomplete session", ErrUnauthenticated)
	}

	return &models.Session{
		ID:    claims.ID,
		Token: token,
		User: models.User{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authorize checks a session token against the allow-list. It returns
// ErrUnauthenticated without a valid session and ErrForbidden when the
// session's email is not allowed.
func (s *AuthService) Authorize(token string) (*models.Session, error) {
	session, err := s.ParseSession(token)
	if err != nil {
		return nil, err
	}
	if !s.allowList.Permits(session.User.Email) {
		return session, ErrForbidden
	}
	return session, nil
}
