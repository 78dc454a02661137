package auth

import (
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the token payload issued by the API's login endpoint.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session holds the bearer token for the signed-in user and the handle
// extracted from it. The client is not the token's verifier (it holds no
// signing key) so the claims are parsed unverified; the API rejects
// tampered tokens on every call regardless.
type Session struct {
	mu     sync.RWMutex
	token  string
	handle string
}

// NewSession parses the token and returns a session bound to it.
func NewSession(token string) (*Session, error) {
	handle, err := handleFromToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{token: token, handle: handle}, nil
}

func handleFromToken(token string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	handle := claims.Username
	if handle == "" {
		handle = claims.Subject
	}
	if handle == "" {
		return "", errors.New("token carries no username")
	}
	return handle, nil
}

// Token returns the raw bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentHandle returns the signed-in user's handle. The second return is
// false once the session has been cleared (logout).
func (s *Session) CurrentHandle() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle, s.handle != ""
}

// Clear drops the token and handle, e.g. after the API answers 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.handle = ""
}
