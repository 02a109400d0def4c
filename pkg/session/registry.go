package session

import (
	"sync"
	"time"

	"authserver/pkg/generator"
)

// Registry is the in-memory implementation of Store. A single mutex
// serializes every operation; there is no cross-account invariant, so
// finer locking buys nothing. Expired records are pruned lazily by the
// operation that observes them — there is no internal sweeper, so memory
// grows with the number of accounts whose last session was never touched
// again (see Sweep).
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      TTL,
		now:      time.Now,
	}
}

// expired reports whether s is past its TTL at instant t. A record
// exactly at the boundary is still live.
func (r *Registry) expired(s *Session, t time.Time) bool {
	return t.Sub(s.LastSeen) > r.ttl
}

// Start creates a fresh session for account, revoking any live one it
// finds. An already-expired record is pruned silently and does not count
// as an eviction. On return the account holds exactly one live session:
// the one returned.
func (r *Registry) Start(account, sourceIP string) (*Session, bool, error) {
	token, err := generator.NewSessionToken()
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now()
	evicted := false
	if cur, ok := r.sessions[account]; ok {
		if r.expired(cur, t) {
			delete(r.sessions, account)
		} else {
			delete(r.sessions, account)
			evicted = true
		}
	}

	sess := &Session{
		Token:    token,
		SourceIP: sourceIP,
		LastSeen: t,
	}
	r.sessions[account] = sess
	return sess, evicted, nil
}

// Check inspects the account's session without refreshing it. When a
// token is presented the status additionally reports whether it is the
// current one, which lets a superseded client tell takeover apart from
// plain expiry.
func (r *Registry) Check(account, token string) (*Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.sessions[account]
	if !ok {
		return nil, ErrExpired
	}

	t := r.now()
	if r.expired(cur, t) {
		delete(r.sessions, account)
		return nil, ErrExpired
	}

	st := &Status{Remaining: r.ttl - t.Sub(cur.LastSeen)}
	if token != "" {
		st.Presented = true
		st.Matched = token == cur.Token
	}
	return st, nil
}

// Touch refreshes the session's last activity, extending its life by a
// full TTL. A presented token must match the current one.
func (r *Registry) Touch(account, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.sessions[account]
	if !ok {
		return ErrExpired
	}

	t := r.now()
	if r.expired(cur, t) {
		delete(r.sessions, account)
		return ErrExpired
	}

	if token != "" && token != cur.Token {
		return ErrWrongSession
	}

	cur.LastSeen = t
	return nil
}

// End deletes the account's session, expired or not. A presented token
// must match. Once the account holds no record, End keeps returning
// ErrAlreadyLoggedOut.
func (r *Registry) End(account, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.sessions[account]
	if !ok {
		return ErrAlreadyLoggedOut
	}

	if token != "" && token != cur.Token {
		return ErrWrongSession
	}

	delete(r.sessions, account)
	return nil
}

// Sweep removes every expired record and returns how many it dropped.
// It is an operational add-on for long-running deployments; correctness
// never depends on it being called.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now()
	dropped := 0
	for account, cur := range r.sessions {
		if r.expired(cur, t) {
			delete(r.sessions, account)
			dropped++
		}
	}
	return dropped
}
