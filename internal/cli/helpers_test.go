package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/credentials"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/services"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/storage"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app    *App
	out    *bytes.Buffer
	notes  *notify.Recorder
	sleeps []time.Duration
}

// newHarness wires an App over in-memory storage. input feeds the line
// prompts; passwords are stubbed separately with stubPasswords.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	repo := storage.NewMemoryRepository()
	sessions := session.NewStore(repo, nil)
	h := &harness{out: &bytes.Buffer{}, notes: &notify.Recorder{}}
	h.app = &App{
		log:      logging.Nop(),
		accounts: services.NewAccountService(credentials.NewStore(repo), sessions, h.notes, nil, services.WithLocalStore(repo)),
		profile: services.NewProfileService(services.ProfileDeps{
			Sessions: sessions,
			Notifier: h.notes,
			Sleep:    func(d time.Duration) { h.sleeps = append(h.sleeps, d) },
		}),
		notifier: h.notes,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      h.out,
	}
	return h
}

func (h *harness) session(t *testing.T) *models.Session {
	t.Helper()
	s, err := h.app.accounts.Current(context.Background())
	require.NoError(t, err)
	return s
}

func (h *harness) quickLogin(t *testing.T, name string) {
	t.Helper()
	_, err := h.app.accounts.QuickLogin(context.Background(), name)
	require.NoError(t, err)
}

func (h *harness) lastNote(t *testing.T) notify.Notification {
	t.Helper()
	n, ok := h.notes.Last()
	require.True(t, ok, "expected a notification")
	return n
}

// stubPasswords makes getPassword return pws in order and records every
// buffer it hands out.
func stubPasswords(t *testing.T, pws ...string) *[][]byte {
	t.Helper()
	var handed [][]byte
	old := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		b := []byte(pws[0])
		pws = pws[1:]
		handed = append(handed, b)
		return b, nil
	}
	t.Cleanup(func() { getPassword = old })
	return &handed
}
