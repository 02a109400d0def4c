package session

import (
	"errors"
	"time"
)

// TTL is the maximum gap between a session's last activity and now for
// it to still count as live. Fixed at two hours.
const TTL = 2 * time.Hour

var (
	// ErrExpired covers both "never logged in" and "timed out"; the two
	// are deliberately indistinguishable to callers.
	ErrExpired = errors.New("session expired")

	// ErrWrongSession means a live session exists for the account but the
	// presented token is not its current token.
	ErrWrongSession = errors.New("wrong session")

	ErrAlreadyLoggedOut = errors.New("already logged out")
)

// Session is the single record an account may hold. SourceIP is kept for
// audit only and never consulted in authorization decisions.
type Session struct {
	Token    string
	SourceIP string
	LastSeen time.Time
}

// Status is the result of a successful Check. Matched is meaningful only
// when Presented is true.
type Status struct {
	Remaining time.Duration
	Presented bool
	Matched   bool
}

// Store holds at most one live session per account. A token argument is
// optional everywhere: empty means "do not compare".
type Store interface {
	Start(account, sourceIP string) (sess *Session, evicted bool, err error)
	Check(account, token string) (*Status, error)
	Touch(account, token string) error
	End(account, token string) error
}
