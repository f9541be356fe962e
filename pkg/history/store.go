package history

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFlushInterval is how often Run writes the queue to storage.
const DefaultFlushInterval = 30 * time.Second

// Store is a write-back cache in front of a Storage. Writes land in an
// in-memory queue keyed by user; Flush drains the queue into the storage.
// Reads see queued and in-flight histories before falling back to storage.
type Store struct {
	storage Storage
	limit   int
	log     logrus.FieldLogger
	onFlush func(err error, queued int)
	now     func() time.Time

	mu       sync.Mutex // guards queue and inflight
	queue    map[string]*History
	inflight map[string]*History

	flushMu sync.Mutex // one flush at a time
	addMu   sync.Mutex // serializes read-modify-write in Add
}

// Option configures a Store.
type Option func(*Store)

// WithLimit bounds the entries kept per user.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithFlushObserver registers fn to run after every flush with its error
// and the number of histories still queued.
func WithFlushObserver(fn func(err error, queued int)) Option {
	return func(s *Store) { s.onFlush = fn }
}

// NewStore creates a store writing to storage.
func NewStore(storage Storage, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		storage:  storage,
		limit:    DefaultLimit,
		log:      discard,
		now:      time.Now,
		queue:    make(map[string]*History),
		inflight: make(map[string]*History),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store queues h for writing, replacing any queued version.
func (s *Store) Store(h *History) error {
	if err := ValidateUser(h.User); err != nil {
		return err
	}
	s.mu.Lock()
	s.queue[h.User] = h.Clone()
	s.mu.Unlock()
	return nil
}

// Get returns the user's latest history: queued, then in flight, then stored.
func (s *Store) Get(user string) (*History, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	h, ok := s.queue[user]
	if !ok {
		h, ok = s.inflight[user]
	}
	s.mu.Unlock()
	if ok {
		s.log.WithField("user", user).Debug("history served from queue")
		return h.Clone(), nil
	}
	return s.storage.Load(user)
}

// Add appends query to the user's history and queues the result.
func (s *Store) Add(user, query string) (Entry, error) {
	s.addMu.Lock()
	defer s.addMu.Unlock()

	h, err := s.Get(user)
	if err != nil {
		return Entry{}, err
	}
	e := h.Add(query, s.now(), s.limit)
	return e, s.Store(h)
}

// Queued returns the number of histories waiting to be written.
func (s *Store) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush writes every queued history. The queue lock is held only to pick
// the next history, never during I/O. A history that fails to save is
// queued again unless a newer version arrived meanwhile.
func (s *Store) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	var (
		errs    []error
		written int
		failed  = make(map[string]*History)
	)
	for {
		h := s.next()
		if h == nil {
			break
		}
		if err := s.storage.Save(h); err != nil {
			// stays in flight so reads keep seeing it
			errs = append(errs, err)
			failed[h.User] = h
			continue
		}
		delete(failed, h.User)
		s.mu.Lock()
		delete(s.inflight, h.User)
		s.mu.Unlock()
		written++
	}

	s.mu.Lock()
	for user, h := range failed {
		delete(s.inflight, user)
		if _, newer := s.queue[user]; !newer {
			s.queue[user] = h
		}
	}
	queued := len(s.queue)
	s.mu.Unlock()

	err := errors.Join(errs...)
	log := s.log.WithField("written", written).WithField("queued", queued)
	if err != nil {
		log.WithError(err).Warn("history flush failed")
	} else if written > 0 {
		log.Debug("history flushed")
	}
	if s.onFlush != nil {
		s.onFlush(err, queued)
	}
	return err
}

// next moves one queued history to the in-flight set.
func (s *Store) next() *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	for user, h := range s.queue {
		delete(s.queue, user)
		s.inflight[user] = h
		return h
	}
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more so
// nothing queued is lost on shutdown.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.Flush()
		case <-ticker.C:
			// failures stay queued for the next tick
			_ = s.Flush()
		}
	}
}
