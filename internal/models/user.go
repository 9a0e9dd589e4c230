package models

import "time"

// User represents the signed-in account carried by a session
type User struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// DisplayName returns the name, falling back to the email
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session represents an authenticated session
type Session struct {
	ID        string
	Token     string
	User      User
	ExpiresAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
