package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
}

type fakeEntitlements struct {
	premium bool
	err     error
}

func (f fakeEntitlements) HasPremium(context.Context, string) (bool, error) { return f.premium, f.err }

type fakeAvatars struct {
	ref  string
	err  error
	user string
	img  []byte
	// during runs inside Store, before it returns
	during func()
}

func (f *fakeAvatars) Store(_ context.Context, username string, img []byte) (string, error) {
	f.user, f.img = username, img
	if f.during != nil {
		f.during()
	}
	return f.ref, f.err
}

func newProfile(t *testing.T, e *env, d ProfileDeps) (ProfileService, *sleepRecorder) {
	t.Helper()
	sr := &sleepRecorder{}
	d.Sessions = e.sessions
	d.Notifier = e.notes
	if d.Sleep == nil {
		d.Sleep = sr.sleep
	}
	return NewProfileService(d), sr
}

func loggedIn(t *testing.T, e *env) {
	t.Helper()
	require.NoError(t, e.sessions.Start(context.Background(), models.Session{
		Username:  "alice",
		Email:     "a@x.com",
		LoginTime: testNow.UnixMilli(),
	}))
}

func current(t *testing.T, e *env) *models.Session {
	t.Helper()
	s, err := e.sessions.Current(context.Background())
	require.NoError(t, err)
	return s
}

func TestProfile_NoSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, sr := newProfile(t, e, ProfileDeps{})

	calls := map[string]func() error{
		"update":     func() error { _, err := p.UpdateProfile(ctx, ProfileFields{Email: ptr("x@x.com")}); return err },
		"avatar":     func() error { _, err := p.SetDefaultAvatar(ctx); return err },
		"verified":   func() error { _, err := p.SetVerified(ctx, true); return err },
		"channel":    func() error { _, err := p.SetVerificationChannel(ctx, ChannelFlowID, "flow-123"); return err },
		"theme":      func() error { _, err := p.SetTheme(ctx, "forest"); return err },
		"background": func() error { _, err := p.SetBackground(ctx, "black"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), common.ErrNoSession)
		})
	}
	assert.Empty(t, sr.slept, "no latency is simulated for a logged-out user")
	assert.Empty(t, e.notes.All())
}

func TestProfile_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{})

	s, err := p.UpdateProfile(ctx, ProfileFields{Email: ptr("new@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "new@x.com", s.Email)
	assert.Equal(t, "Profile updated!", e.lastNote(t).Title)

	s, err = p.UpdateProfile(ctx, ProfileFields{Username: ptr("alice2")})
	require.NoError(t, err)
	assert.Equal(t, "alice2", s.Username)
	assert.Equal(t, "new@x.com", s.Email)
	assert.Equal(t, testNow.UnixMilli(), s.LoginTime, "login time never changes")

	_, err = p.UpdateProfile(ctx, ProfileFields{Username: ptr("  "), Email: ptr("z@x.com")})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "new@x.com", current(t, e).Email, "failed update applies nothing")
}

func TestProfile_SetAvatarInline(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{})

	s, err := p.SetDefaultAvatar(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.Avatar, "data:image/png;base64,"))
	assert.Equal(t, s.Avatar, current(t, e).Avatar)
	assert.Equal(t, "Avatar updated!", e.lastNote(t).Title)

	_, err = p.SetAvatar(ctx, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = p.SetAvatar(ctx, []byte("plain text is not an image"))
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, s.Avatar, current(t, e).Avatar)
}

func TestProfile_SetAvatarStoreFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)

	fa := &fakeAvatars{err: errors.New("bucket gone")}
	p, _ := newProfile(t, e, ProfileDeps{Avatars: fa})

	_, err := p.SetAvatar(ctx, []byte{1, 2, 3})
	require.ErrorContains(t, err, "bucket gone")
	assert.Equal(t, "alice", fa.user)
	assert.Empty(t, current(t, e).Avatar)

	fa.err, fa.ref = nil, "https://cdn/avatars/alice/1.png"
	s, err := p.SetAvatar(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/avatars/alice/1.png", s.Avatar)
}

func TestProfile_SetAvatarSessionEndsDuringUpload(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)

	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.Options{Level: "debug"})
	require.NoError(t, err)

	fa := &fakeAvatars{ref: "https://cdn/avatars/alice/2.png"}
	fa.during = func() { require.NoError(t, e.sessions.End(ctx)) }
	p, _ := newProfile(t, e, ProfileDeps{Avatars: fa, Logger: log})

	_, err = p.SetAvatar(ctx, []byte{1, 2, 3})
	require.ErrorIs(t, err, common.ErrNoSession)
	assert.Nil(t, current(t, e))
	assert.Contains(t, buf.String(), "avatar orphaned")
	assert.Contains(t, buf.String(), "https://cdn/avatars/alice/2.png")
}

func TestProfile_SetAvatarSessionChangesHands(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)

	fa := &fakeAvatars{ref: "https://cdn/avatars/alice/3.png"}
	fa.during = func() {
		require.NoError(t, e.sessions.Start(ctx, models.Session{Username: "bob", Email: "b@x.com", LoginTime: testNow.UnixMilli()}))
	}
	p, _ := newProfile(t, e, ProfileDeps{Avatars: fa})

	_, err := p.SetAvatar(ctx, []byte{1, 2, 3})
	require.ErrorIs(t, err, common.ErrNoSession)
	s := current(t, e)
	assert.Equal(t, "bob", s.Username)
	assert.Empty(t, s.Avatar, "alice's upload never lands on bob")
}

func TestProfile_SetVerified(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{})

	s, err := p.SetVerified(ctx, true)
	require.NoError(t, err)
	assert.True(t, s.Verified)
	assert.Equal(t, "Account verified!", e.lastNote(t).Title)

	s, err = p.SetVerified(ctx, false)
	require.NoError(t, err)
	assert.False(t, s.Verified)
}

func TestProfile_VerificationChannels(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, sr := newProfile(t, e, ProfileDeps{
		VerifyDelays: map[Channel]time.Duration{ChannelFlowID: time.Millisecond},
	})

	_, err := p.SetVerificationChannel(ctx, ChannelPhone, "12345")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Nil(t, current(t, e).Verification, "phone stays unset")
	assert.Empty(t, sr.slept, "validation happens before the latency")

	s, err := p.SetVerificationChannel(ctx, ChannelPhone, "+19995551234")
	require.NoError(t, err)
	require.NotNil(t, s.Verification)
	assert.True(t, s.Verification.Phone)
	assert.Equal(t, "+19995551234", s.Verification.PhoneNumber)
	assert.Equal(t, "Phone verified", e.lastNote(t).Title)

	_, err = p.SetVerificationChannel(ctx, ChannelFlowID, "abc12")
	require.ErrorIs(t, err, common.ErrValidation)

	s, err = p.SetVerificationChannel(ctx, ChannelFlowID, "abc123")
	require.NoError(t, err)
	assert.True(t, s.Verification.FlowID)
	assert.Equal(t, "abc123", s.Verification.FlowIDValue)
	assert.True(t, s.Verification.Phone, "channels are OR-composed")

	_, err = p.SetVerificationChannel(ctx, ChannelFlowSecurity, "1234567")
	require.ErrorIs(t, err, common.ErrValidation)

	s, err = p.SetVerificationChannel(ctx, ChannelFlowSecurity, "12345678")
	require.NoError(t, err)
	assert.Equal(t, models.Verification{
		Phone: true, FlowID: true, FlowSecurity: true,
		PhoneNumber: "+19995551234", FlowIDValue: "abc123",
	}, *s.Verification)

	_, err = p.SetVerificationChannel(ctx, Channel("email"), "someone@example.com")
	require.ErrorIs(t, err, common.ErrValidation)

	assert.Equal(t, []time.Duration{2 * time.Second, time.Millisecond, 3 * time.Second}, sr.slept)
}

func TestProfile_VerificationLengthCountsCharacters(t *testing.T) {
	tests := []struct {
		name    string
		ch      Channel
		value   string
		wantErr bool
	}{
		{name: "two-byte phone digits", ch: ChannelPhone, value: "ééééé", wantErr: true},
		{name: "cyrillic flow id", ch: ChannelFlowID, value: "ффф", wantErr: true},
		{name: "cyrillic security code", ch: ChannelFlowSecurity, value: "пароль!", wantErr: true},
		{name: "leading space counts", ch: ChannelPhone, value: " 123456789"},
		{name: "six cyrillic letters", ch: ChannelFlowID, value: "фффффф"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t)
			loggedIn(t, e)
			p, sr := newProfile(t, e, ProfileDeps{})

			s, err := p.SetVerificationChannel(ctx, tt.ch, tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				assert.Nil(t, current(t, e).Verification)
				assert.Empty(t, sr.slept)
				return
			}
			require.NoError(t, err)
			switch tt.ch {
			case ChannelPhone:
				assert.Equal(t, tt.value, s.Verification.PhoneNumber, "stored as typed")
			case ChannelFlowID:
				assert.Equal(t, tt.value, s.Verification.FlowIDValue)
			}
		})
	}
}

func TestProfile_VerificationKeepsConcurrentEdits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)

	var p ProfileService
	p, _ = newProfile(t, e, ProfileDeps{
		Sleep: func(time.Duration) {
			// an edit that lands while the verification is pending
			_, err := p.SetBackground(ctx, "black")
			require.NoError(t, err)
		},
	})

	s, err := p.SetVerificationChannel(ctx, ChannelFlowID, "abc123")
	require.NoError(t, err)
	assert.True(t, s.Verification.FlowID)
	assert.Equal(t, "black", s.Background())
}

func TestProfile_SetTheme(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{})

	s, err := p.SetTheme(ctx, "neon")
	require.NoError(t, err)
	assert.Equal(t, "neon", s.Theme())
	assert.Equal(t, `Activated theme "Neon Dreams"`, e.lastNote(t).Description)

	_, err = p.SetTheme(ctx, "rainbow")
	require.ErrorIs(t, err, common.ErrUnknownTheme)
	assert.Equal(t, "neon", current(t, e).Theme())
}

func TestProfile_SetThemePremiumGate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{Entitlements: theme.StaticEntitlements{Premium: false}})

	s, err := p.SetTheme(ctx, "forest")
	require.NoError(t, err)
	assert.Equal(t, "forest", s.Theme())

	_, err = p.SetTheme(ctx, "ocean")
	require.ErrorIs(t, err, common.ErrPremiumRequired)
	assert.Equal(t, "forest", current(t, e).Theme())

	p, _ = newProfile(t, e, ProfileDeps{Entitlements: fakeEntitlements{err: errors.New("billing down")}})
	_, err = p.SetTheme(ctx, "purple")
	require.ErrorContains(t, err, "billing down")
	assert.Equal(t, "forest", current(t, e).Theme())
}

func TestProfile_SetBackground(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loggedIn(t, e)
	p, _ := newProfile(t, e, ProfileDeps{})

	for _, css := range []string{theme.ResolveBackground("cyber-neon"), "", "not even css"} {
		s, err := p.SetBackground(ctx, css)
		require.NoError(t, err)
		assert.Equal(t, css, s.Background())
	}
	assert.Equal(t, notify.Info("Background changed", "New background applied"), e.lastNote(t))
}
