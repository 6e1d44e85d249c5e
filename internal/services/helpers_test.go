package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/credentials"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/storage"
)

var testNow = time.UnixMilli(1_700_000_000_000)

type env struct {
	repo     *storage.MemoryRepository
	creds    *credentials.Store
	sessions *session.Store
	notes    *notify.Recorder
	clock    *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	now := testNow
	e := &env{
		repo:  storage.NewMemoryRepository(),
		notes: &notify.Recorder{},
		clock: &now,
	}
	e.creds = credentials.NewStore(e.repo, credentials.WithClock(e.now))
	e.sessions = session.NewStore(e.repo, nil)
	return e
}

func (e *env) now() time.Time { return *e.clock }

func (e *env) accounts(opts ...AccountOption) AccountService {
	opts = append([]AccountOption{WithAccountClock(e.now)}, opts...)
	return NewAccountService(e.creds, e.sessions, e.notes, nil, opts...)
}

func (e *env) lastNote(t *testing.T) notify.Notification {
	t.Helper()
	n, ok := e.notes.Last()
	if !ok {
		t.Fatal("expected a notification")
	}
	return n
}

func ptr[T any](v T) *T { return &v }
