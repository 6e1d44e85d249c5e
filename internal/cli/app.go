package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/config"
	"github.com/dmitrijs2005/flowcross/internal/credentials"
	"github.com/dmitrijs2005/flowcross/internal/events"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/services"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/storage"
	"github.com/dmitrijs2005/flowcross/internal/theme"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	accounts services.AccountService
	profile  services.ProfileService
	notifier notify.Notifier
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(os.Stderr, logging.Options{
		Backend: logging.Backend(c.LogBackend),
		Level:   c.LogLevel,
		JSON:    c.LogJSON,
	})
	if err != nil {
		return nil, err
	}

	handle, err := storage.Open(ctx, storage.Options{
		Driver:        storage.Driver(c.StorageDriver),
		DSN:           c.StorageDSN,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisHash:     c.RedisHash,
		Logger:        log,
	})
	if err != nil {
		log.Error(ctx, "error opening storage", "driver", c.StorageDriver, "error", err)
		return nil, err
	}

	a := &App{
		config:   c,
		log:      log,
		notifier: notify.NewWriterNotifier(os.Stdout),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		closers:  []func() error{handle.Close},
	}

	var hasher credentials.Hasher = credentials.PlainHasher{}
	if c.HashPasswords {
		hasher = credentials.Argon2Hasher{}
	}
	creds := credentials.NewStore(handle, credentials.WithHasher(hasher), credentials.WithLogger(log))
	sessions := session.NewStore(handle, log)

	if len(c.KafkaBrokers) > 0 {
		pub, err := events.NewPublisher(c.KafkaBrokers, c.KafkaTopic, log)
		if err != nil {
			// the feed is optional; the account core works without it
			log.Warn(ctx, "session events disabled", "brokers", c.KafkaBrokers, "error", err)
		} else {
			sessions.Subscribe(pub.Observe)
			a.closers = append(a.closers, pub.Close)
		}
	}

	avatars, err := newAvatarStore(ctx, c)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.accounts = services.NewAccountService(creds, sessions, a.notifier, log, services.WithLocalStore(handle))
	a.profile = services.NewProfileService(services.ProfileDeps{
		Sessions:     sessions,
		Avatars:      avatars,
		Entitlements: theme.StaticEntitlements{Premium: c.PremiumStub},
		Notifier:     a.notifier,
		Logger:       log,
		VerifyDelays: map[services.Channel]time.Duration{
			services.ChannelPhone:        c.PhoneVerifyDelay,
			services.ChannelFlowID:       c.FlowIDVerifyDelay,
			services.ChannelFlowSecurity: c.FlowSecurityVerifyDelay,
		},
	})
	return a, nil
}

func newAvatarStore(ctx context.Context, c *config.Config) (services.AvatarStore, error) {
	if c.AvatarBackend != "s3" {
		return services.InlineAvatarStore{}, nil
	}
	return services.NewS3AvatarStore(ctx, services.S3AvatarConfig{
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3Endpoint,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		PublicBaseURL: c.S3PublicBaseURL,
	})
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases storage and the event producer, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	s, err := a.accounts.Current(ctx)
	return err == nil && s != nil
}

// Fail shows err as a destructive notification.
func (a *App) Fail(ctx context.Context, err error) {
	title := errorTitle(err)
	if title == "Error" && !errors.Is(err, common.ErrValidation) {
		a.log.Error(ctx, "command failed", "error", err)
	}
	a.notifier.Notify(ctx, notify.Error(title, err))
}

func errorTitle(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateAccount):
		return "Registration failed"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Login failed"
	case errors.Is(err, common.ErrNoSession):
		return "Authorization required"
	case errors.Is(err, common.ErrUnknownTheme):
		return "Unknown theme"
	case errors.Is(err, common.ErrPremiumRequired):
		return "Premium theme"
	default:
		return "Error"
	}
}
