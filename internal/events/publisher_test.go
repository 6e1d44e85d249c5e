package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestPublisher(t *testing.T) (*Publisher, *mocks.SyncProducer) {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)
	p := NewPublisherWithProducer(mp, "flowcross.sessions", nil)
	p.now = func() time.Time { return fixed }
	return p, mp
}

func expectMessage(want Message) mocks.ValueChecker {
	return func(val []byte) error {
		var got Message
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != want.Type || got.Username != want.Username || !got.At.Equal(want.At) {
			return fmt.Errorf("unexpected message %+v", got)
		}
		if (got.Session == nil) != (want.Session == nil) {
			return fmt.Errorf("session presence mismatch: %+v", got.Session)
		}
		return nil
	}
}

func TestObserve_Published(t *testing.T) {
	p, mp := newTestPublisher(t)
	s := &models.Session{Username: "alice", LoginTime: 1}

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(expectMessage(Message{Type: "started", Username: "alice", At: fixed, Session: s}))
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(expectMessage(Message{Type: "ended", Username: "alice", At: fixed}))

	p.Observe(context.Background(), session.Event{Kind: session.EventStarted, Username: "alice", Session: s})
	p.Observe(context.Background(), session.Event{Kind: session.EventEnded, Username: "alice"})

	require.NoError(t, p.Close())
}

func TestObserve_OmitsAvatarAndVerificationValues(t *testing.T) {
	p, mp := newTestPublisher(t)
	s := &models.Session{
		Username:  "alice",
		LoginTime: 1,
		Avatar:    "data:image/png;base64," + strings.Repeat("A", 2<<20),
		Verification: &models.Verification{
			Phone: true, PhoneNumber: "+19995551234",
			FlowID: true, FlowIDValue: "abc123",
		},
	}

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if len(val) > 1024 {
			return fmt.Errorf("message is %d bytes", len(val))
		}
		for _, secret := range []string{"avatar", "+19995551234", "abc123"} {
			if bytes.Contains(val, []byte(secret)) {
				return fmt.Errorf("message carries %q: %s", secret, val)
			}
		}
		var got Message
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Session == nil || got.Session.Verification == nil ||
			!got.Session.Verification.Phone || !got.Session.Verification.FlowID {
			return fmt.Errorf("channel flags lost: %s", val)
		}
		return nil
	})

	p.Observe(context.Background(), session.Event{Kind: session.EventUpdated, Username: "alice", Session: s})

	assert.Equal(t, "+19995551234", s.Verification.PhoneNumber, "event session is left alone")
	assert.NotEmpty(t, s.Avatar)
	require.NoError(t, p.Close())
}

func TestObserve_FailureIsLoggedOnly(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)

	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.Options{Backend: logging.BackendSlog, Level: "debug"})
	require.NoError(t, err)

	p := NewPublisherWithProducer(mp, "t", log)
	mp.ExpectSendMessageAndFail(errors.New("broker down"))

	assert.NotPanics(t, func() {
		p.Observe(context.Background(), session.Event{Kind: session.EventUpdated, Username: "bob"})
	})
	assert.Contains(t, buf.String(), "publish session event failed")
	assert.Contains(t, buf.String(), "broker down")
	require.NoError(t, p.Close())
}

func TestObserve_WiredToSessionStore(t *testing.T) {
	ctx := context.Background()
	p, mp := newTestPublisher(t)

	st := session.NewStore(storage.NewMemoryRepository(), nil)
	st.Subscribe(p.Observe)

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(expectMessage(Message{Type: "started", Username: "alice", At: fixed, Session: &models.Session{}}))
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(expectMessage(Message{Type: "updated", Username: "alice", At: fixed, Session: &models.Session{}}))
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(expectMessage(Message{Type: "ended", Username: "alice", At: fixed}))

	require.NoError(t, st.Start(ctx, models.Session{Username: "alice", LoginTime: 1}))
	_, err := st.Update(ctx, func(s *models.Session) error { s.Verified = true; return nil })
	require.NoError(t, err)
	require.NoError(t, st.End(ctx))
	require.NoError(t, st.End(ctx))

	require.NoError(t, p.Close())
}
