// Package history keeps a bounded per-user list of executed queries, buffered
// in memory and written to disk in the background.
package history

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of entries kept per user when none is set.
const DefaultLimit = 50

// ErrInvalidUser is returned for user identifiers that cannot name a file.
var ErrInvalidUser = errors.New("invalid user identifier")

var userPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,127}$`)

// ValidateUser checks that user is usable as a storage key.
func ValidateUser(user string) error {
	if !userPattern.MatchString(user) || strings.Contains(user, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return nil
}

// Entry is one executed query.
type Entry struct {
	ID       uuid.UUID `json:"id"`
	Query    string    `json:"query"`
	Executed time.Time `json:"executed"`
}

// History is a user's query list, newest first.
type History struct {
	User    string  `json:"user"`
	Entries []Entry `json:"entries"`
}

// Add records query as the newest entry. An earlier entry with the same
// query text is moved to the front instead of repeated. The list is then
// cut to limit entries.
func (h *History) Add(query string, at time.Time, limit int) Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query = strings.TrimSpace(query)

	entries := make([]Entry, 0, len(h.Entries)+1)
	e := Entry{ID: uuid.New(), Query: query, Executed: at.UTC()}
	entries = append(entries, e)
	for _, old := range h.Entries {
		if old.Query != query {
			entries = append(entries, old)
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	h.Entries = entries
	return e
}

// Find returns the entry with the given ID.
func (h *History) Find(id uuid.UUID) (Entry, bool) {
	for _, e := range h.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Clone returns a deep copy.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	c := &History{User: h.User}
	if h.Entries != nil {
		c.Entries = append([]Entry(nil), h.Entries...)
	}
	return c
}
