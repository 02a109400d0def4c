package auth

import (
	"errors"
	"fmt"

	"authserver/pkg/credentials"
	"authserver/pkg/session"
)

var (
	// ErrMissingFields is pure input validation; no state is touched.
	ErrMissingFields = errors.New("missing fields")

	// ErrAuthFailed never says which of account/secret was wrong.
	ErrAuthFailed = errors.New("invalid credentials")
)

type ServiceInterface interface {
	Login(account, secret, clientIP string) (*session.Session, bool, error)
	Check(account, token string) (*session.Status, error)
	Touch(account, token string) error
	Logout(account, token string) error
}

type Service struct {
	Creds    credentials.Checker
	Sessions session.Store
}

func NewService(creds credentials.Checker, sessions session.Store) *Service {
	return &Service{Creds: creds, Sessions: sessions}
}

// Login verifies the credentials and starts a fresh session, revoking a
// live one if present. The evicted flag reports that a duplicate login
// ended an earlier session; it is a normal outcome, not an error.
func (s *Service) Login(account, secret, clientIP string) (*session.Session, bool, error) {
	if account == "" || secret == "" {
		return nil, false, ErrMissingFields
	}

	ok, err := s.Creds.Verify(account, secret)
	if err != nil {
		return nil, false, fmt.Errorf("verify %q: %w", account, err)
	}
	if !ok {
		return nil, false, ErrAuthFailed
	}

	return s.Sessions.Start(account, clientIP)
}

func (s *Service) Check(account, token string) (*session.Status, error) {
	if account == "" {
		return nil, ErrMissingFields
	}
	return s.Sessions.Check(account, token)
}

func (s *Service) Touch(account, token string) error {
	if account == "" {
		return ErrMissingFields
	}
	return s.Sessions.Touch(account, token)
}

func (s *Service) Logout(account, token string) error {
	if account == "" {
		return ErrMissingFields
	}
	return s.Sessions.End(account, token)
}
