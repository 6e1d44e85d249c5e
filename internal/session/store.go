// Package session holds the single "current user" record and lets the
// presentation layer observe changes to it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/storage"
)

type EventKind string

const (
	EventStarted EventKind = "started"
	EventUpdated EventKind = "updated"
	EventEnded   EventKind = "ended"
)

// Event describes a change of the stored session. Session is nil for
// EventEnded and a private copy otherwise.
type Event struct {
	Kind     EventKind
	Username string
	Session  *models.Session
}

// Observer is called synchronously after the change has been persisted, with
// the store's write lock held; it must not mutate the store.
type Observer func(ctx context.Context, ev Event)

// MutateFunc edits a copy of the current session. Returning an error
// discards the copy.
type MutateFunc func(s *models.Session) error

// Store is the session slot. All writers go through one mutex so that
// read-modify-write cycles issued by this process never interleave.
type Store struct {
	repo storage.Repository
	log  logging.Logger

	mu sync.Mutex

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextID    int
}

func NewStore(repo storage.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{repo: repo, log: log, observers: make(map[int]Observer)}
}

func validate(s *models.Session) error {
	if s.Username == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if s.LoginTime == 0 {
		return fmt.Errorf("%w: login time is required", common.ErrValidation)
	}
	return nil
}

// Start replaces any stored session with s.
func (st *Store) Start(ctx context.Context, s models.Session) error {
	if err := validate(&s); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	raw, err := json.Marshal(&s)
	if err != nil {
		return err
	}
	if err := st.repo.Set(ctx, common.SessionKey, raw); err != nil {
		return err
	}

	st.log.Info(ctx, "session started", "username", s.Username)
	st.emit(ctx, Event{Kind: EventStarted, Username: s.Username, Session: s.Clone()})
	return nil
}

// Current returns the stored session, or nil when nobody is logged in.
func (st *Store) Current(ctx context.Context) (*models.Session, error) {
	raw, err := st.repo.Get(ctx, common.SessionKey)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw []byte) (*models.Session, error) {
	if raw == nil {
		return nil, nil
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", common.SessionKey, err)
	}
	return &s, nil
}

// End removes the stored session. Ending an absent session is a no-op and
// emits nothing.
func (st *Store) End(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var prev *models.Session
	err := st.repo.Update(ctx, common.SessionKey, func(current []byte) ([]byte, error) {
		// an unreadable record is still removed
		prev, _ = decode(current)
		if prev == nil && current != nil {
			prev = &models.Session{}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if prev == nil {
		return nil
	}

	st.log.Info(ctx, "session ended", "username", prev.Username)
	st.emit(ctx, Event{Kind: EventEnded, Username: prev.Username})
	return nil
}

// Update applies fn to a copy of the current session and stores the result.
// It fails with common.ErrNoSession when nobody is logged in. The stored
// record is untouched when fn fails.
func (st *Store) Update(ctx context.Context, fn MutateFunc) (*models.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var next *models.Session
	err := st.repo.Update(ctx, common.SessionKey, func(current []byte) ([]byte, error) {
		cur, err := decode(current)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			return nil, common.ErrNoSession
		}

		draft := cur.Clone()
		if err := fn(draft); err != nil {
			return nil, err
		}
		if err := validate(draft); err != nil {
			return nil, err
		}
		next = draft
		return json.Marshal(draft)
	})
	if err != nil {
		return nil, err
	}

	st.log.Debug(ctx, "session updated", "username", next.Username)
	st.emit(ctx, Event{Kind: EventUpdated, Username: next.Username, Session: next.Clone()})
	return next, nil
}

// Subscribe registers o and returns a function that removes it.
func (st *Store) Subscribe(o Observer) (unsubscribe func()) {
	st.obsMu.Lock()
	id := st.nextID
	st.nextID++
	st.observers[id] = o
	st.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.obsMu.Lock()
			delete(st.observers, id)
			st.obsMu.Unlock()
		})
	}
}

func (st *Store) emit(ctx context.Context, ev Event) {
	st.obsMu.RLock()
	ids := make([]int, 0, len(st.observers))
	for id := range st.observers {
		ids = append(ids, id)
	}
	obs := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		obs = append(obs, st.observers[id])
	}
	st.obsMu.RUnlock()

	for _, o := range obs {
		e := ev
		e.Session = ev.Session.Clone()
		o(ctx, e)
	}
}
