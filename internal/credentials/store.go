// Package credentials is the registry of accounts allowed to log in. The
// whole collection lives under one storage key as a JSON array.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/storage"
)

// Store registers and authenticates accounts.
type Store struct {
	repo   storage.Repository
	hasher Hasher
	log    logging.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithHasher replaces the default PlainHasher.
func WithHasher(h Hasher) Option { return func(s *Store) { s.hasher = h } }

// WithClock overrides time.Now for registration timestamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithLogger(l logging.Logger) Option { return func(s *Store) { s.log = l } }

func NewStore(repo storage.Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		hasher: PlainHasher{},
		log:    logging.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func decode(raw []byte) ([]models.Credential, error) {
	if raw == nil {
		return nil, nil
	}
	var list []models.Credential
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", common.CredentialsKey, err)
	}
	return list, nil
}

// Register appends a new account. It fails with common.ErrDuplicateAccount
// when the username or the email is already taken.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	encoded, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.repo.Update(ctx, common.CredentialsKey, func(current []byte) ([]byte, error) {
		list, err := decode(current)
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			if c.Username == username || c.Email == email {
				return nil, common.ErrDuplicateAccount
			}
		}
		list = append(list, models.Credential{
			Username:         username,
			Email:            email,
			Password:         encoded,
			RegistrationTime: s.now().UnixMilli(),
		})
		return json.Marshal(list)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account registered", "username", username)
	return nil
}

// Authenticate returns the account whose username matches exactly and whose
// password verifies, or common.ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.Credential, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Username != username {
			continue
		}
		ok, err := s.hasher.Verify(list[i].Password, password)
		if err != nil {
			s.log.Warn(ctx, "stored password unreadable", "username", username, "error", err)
			return nil, common.ErrInvalidCredentials
		}
		if !ok {
			return nil, common.ErrInvalidCredentials
		}
		c := list[i]
		return &c, nil
	}
	return nil, common.ErrInvalidCredentials
}

// List returns a snapshot of the registered accounts in registration order.
func (s *Store) List(ctx context.Context) ([]models.Credential, error) {
	raw, err := s.repo.Get(ctx, common.CredentialsKey)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}
