// Package services contains the application services behind the FlowCross
// presentation layer: account flows (register, login, logout) and the
// profile mutator. Services persist through the credential and session
// stores and report success through a notify.Notifier; failures are returned
// to the caller, which decides how to surface them.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/credentials"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/stats"
	"github.com/dmitrijs2005/flowcross/internal/storage"
)

const minPasswordLen = 6

// RegisterInput mirrors the registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate applies the form rules: every field filled in, matching
// confirmation, and a minimum password length.
func (in RegisterInput) Validate() error {
	if !common.NonEmpty(strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), in.Password) {
		return fmt.Errorf("%w: fill in all fields", common.ErrValidation)
	}
	if in.Password != in.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}
	return nil
}

// AccountService defines the login flows used by the CLI.
//
// Contract:
//   - Register: validate the form, store the credential, start a session.
//   - Login: authenticate and start a session.
//   - QuickLogin: start a session for any non-empty username, no password.
//   - Logout: end the session; idempotent.
//   - Current: the active session or nil.
//   - Stats: derived stats of the active session, common.ErrNoSession if none.
//   - Accounts: registered accounts.
//   - Reset: end the session and wipe every locally stored record.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Session, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	QuickLogin(ctx context.Context, username string) (*models.Session, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*models.Session, error)
	Stats(ctx context.Context) (stats.Stats, error)
	Accounts(ctx context.Context) ([]models.Credential, error)
	Reset(ctx context.Context) error
}

type accountService struct {
	creds    *credentials.Store
	sessions *session.Store
	notifier notify.Notifier
	log      logging.Logger
	now      func() time.Time
	rng      *rand.Rand
	local    storage.Repository
}

// AccountOption customises an AccountService.
type AccountOption func(*accountService)

func WithAccountClock(now func() time.Time) AccountOption {
	return func(a *accountService) { a.now = now }
}

// WithStatsRand fixes the jitter source used by Stats.
func WithStatsRand(rng *rand.Rand) AccountOption {
	return func(a *accountService) { a.rng = rng }
}

// WithLocalStore names the repository Reset wipes. It should be the one
// backing both the credential and session stores.
func WithLocalStore(repo storage.Repository) AccountOption {
	return func(a *accountService) { a.local = repo }
}

func NewAccountService(creds *credentials.Store, sessions *session.Store, n notify.Notifier, log logging.Logger, opts ...AccountOption) AccountService {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = logging.Nop()
	}
	a := &accountService{creds: creds, sessions: sessions, notifier: n, log: log, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *accountService) start(ctx context.Context, s models.Session) (*models.Session, error) {
	s.LoginTime = a.now().UnixMilli()
	if err := a.sessions.Start(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *accountService) Register(ctx context.Context, in RegisterInput) (*models.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if err := a.creds.Register(ctx, username, email, in.Password); err != nil {
		return nil, err
	}

	s, err := a.start(ctx, models.Session{Username: username, Email: email})
	if err != nil {
		return nil, fmt.Errorf("registered but could not start session: %w", err)
	}

	a.notifier.Notify(ctx, notify.Info("Registration successful!", fmt.Sprintf("Welcome to FlowCross, %s!", username)))
	return s, nil
}

func (a *accountService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	c, err := a.creds.Authenticate(ctx, username, password)
	if err != nil {
		a.log.Info(ctx, "login rejected", "username", username)
		return nil, err
	}

	s, err := a.start(ctx, models.Session{Username: c.Username, Email: c.Email})
	if err != nil {
		return nil, err
	}

	a.notifier.Notify(ctx, notify.Info("Logged in!", fmt.Sprintf("Welcome, %s!", s.Username)))
	return s, nil
}

func (a *accountService) QuickLogin(ctx context.Context, username string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}

	s, err := a.start(ctx, models.Session{Username: username})
	if err != nil {
		return nil, err
	}

	a.notifier.Notify(ctx, notify.Info("Logged in!", fmt.Sprintf("Welcome, %s!", username)))
	return s, nil
}

func (a *accountService) Logout(ctx context.Context) error {
	if err := a.sessions.End(ctx); err != nil {
		return err
	}
	a.notifier.Notify(ctx, notify.Info("Logged out", "Goodbye!"))
	return nil
}

func (a *accountService) Current(ctx context.Context) (*models.Session, error) {
	return a.sessions.Current(ctx)
}

func (a *accountService) Stats(ctx context.Context) (stats.Stats, error) {
	s, err := a.sessions.Current(ctx)
	if err != nil {
		return stats.Stats{}, err
	}
	if s == nil {
		return stats.Stats{}, common.ErrNoSession
	}
	return stats.Compute(s.LoginTime, a.now(), a.rng), nil
}

func (a *accountService) Accounts(ctx context.Context) ([]models.Credential, error) {
	return a.creds.List(ctx)
}

// Reset logs out and clears local data, accounts included.
func (a *accountService) Reset(ctx context.Context) error {
	if a.local == nil {
		return errors.New("reset: no local store configured")
	}
	if err := a.sessions.End(ctx); err != nil {
		return err
	}
	if err := a.local.Clear(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	a.log.Info(ctx, "local data cleared")
	a.notifier.Notify(ctx, notify.Info("Local data cleared", "All accounts and the session were removed"))
	return nil
}
