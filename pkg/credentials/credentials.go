package credentials

import (
	"crypto/subtle"
	"errors"
)

// ErrUnavailable means the backing table could not be loaded. It is a
// distinct condition from a credential mismatch and must never be
// reported to clients as "invalid credentials".
var ErrUnavailable = errors.New("credential source unavailable")

// Source yields the stored secret for an account. Implementations are
// read-mostly: Reload may block on I/O, Secret must not.
type Source interface {
	Secret(account string) (secret string, ok bool, err error)
	Reload() error
}

// Checker is what the service layer depends on.
type Checker interface {
	Verify(account, presentedSecret string) (bool, error)
}

type Verifier struct {
	Source Source
}

func NewVerifier(source Source) *Verifier {
	return &Verifier{Source: source}
}

// Verify reports whether account exists and its stored secret equals
// presentedSecret exactly. Empty inputs never authenticate. Comparison
// is constant-time; the stored secret is otherwise taken literally.
func (v *Verifier) Verify(account, presentedSecret string) (bool, error) {
	if account == "" || presentedSecret == "" {
		return false, nil
	}

	stored, ok, err := v.Source.Secret(account)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if len(stored) != len(presentedSecret) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presentedSecret)) == 1, nil
}
