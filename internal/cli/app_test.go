package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/config"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTitle(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.ErrDuplicateAccount, "Registration failed"},
		{common.ErrInvalidCredentials, "Login failed"},
		{common.ErrNoSession, "Authorization required"},
		{fmt.Errorf("x: %w", common.ErrUnknownTheme), "Unknown theme"},
		{common.ErrPremiumRequired, "Premium theme"},
		{common.ErrValidation, "Error"},
		{errors.New("disk on fire"), "Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorTitle(tt.err), tt.err.Error())
	}
}

func TestFail_NotifiesDestructive(t *testing.T) {
	h := newHarness(t, "")
	h.app.Fail(context.Background(), fmt.Errorf("%w: passwords do not match", common.ErrValidation))

	n := h.lastNote(t)
	assert.Equal(t, notify.VariantDestructive, n.Variant)
	assert.Equal(t, "Error", n.Title)
	assert.Contains(t, n.Description, "passwords do not match")
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "")
	assert.Equal(t, "(guest)", h.app.getStatus(ctx))
	assert.False(t, h.app.isLoggedIn(ctx))

	h.quickLogin(t, "alice")
	assert.Equal(t, "(alice)", h.app.getStatus(ctx))
	assert.True(t, h.app.isLoggedIn(ctx))

	require.NoError(t, h.app.Verify(ctx))
	assert.Equal(t, "(alice ✓)", h.app.getStatus(ctx))
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []string
	a := &App{
		log: logging.Nop(),
		closers: []func() error{
			func() error { order = append(order, "storage"); return nil },
			func() error { order = append(order, "events"); return errors.New("broker gone") },
		},
	}
	a.Close()
	assert.Equal(t, []string{"events", "storage"}, order)

	a.Close()
	assert.Len(t, order, 2)
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDSN = filepath.Join(t.TempDir(), "data", "flowcross.db")
	cfg.LogLevel = "error"
	cfg.HashPasswords = true

	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx := context.Background()
	_, err = a.accounts.QuickLogin(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, a.isLoggedIn(ctx))
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDriver = "mongo"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	printed := capturePrints(t)

	h := newHarness(t, "quicklogin alice\nwhoami\ntheme rainbow\nexit\n")
	h.app.Root(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "Welcome to FlowCross")
	assert.Contains(t, out, "alice")
	assert.Contains(t, *printed, "flow> (alice) > ")

	n := h.lastNote(t)
	assert.Equal(t, "Unknown theme", n.Title)
	assert.Equal(t, notify.VariantDestructive, n.Variant)
}

func TestRoot_ResumesSession(t *testing.T) {
	capturePrints(t)

	h := newHarness(t, "")
	h.quickLogin(t, "alice")
	h.app.reader = bufio.NewReader(strings.NewReader(""))
	h.app.Root(context.Background())

	assert.Contains(t, h.out.String(), "Resuming session of alice")
}
