package credentials

import (
	"database/sql"
	"fmt"
	"sync"
)

// MySQLSource keeps the account table in a database. Reload pulls the
// whole table into memory in one query; lookups never hit the DB.
type MySQLSource struct {
	DB *sql.DB

	mu    sync.RWMutex
	table map[string]string
}

func NewMySQLSource(db *sql.DB) *MySQLSource {
	return &MySQLSource{DB: db}
}

func (s *MySQLSource) Reload() error {
	rows, err := s.DB.Query("SELECT email, code FROM accounts")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer rows.Close()

	table := map[string]string{}
	for rows.Next() {
		var email, code string
		if err := rows.Scan(&email, &code); err != nil {
			return fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		table[email] = code
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}

func (s *MySQLSource) Secret(account string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return "", false, ErrUnavailable
	}
	secret, ok := s.table[account]
	return secret, ok, nil
}
