package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/flowcross/internal/common"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/models"
	"github.com/dmitrijs2005/flowcross/internal/notify"
	"github.com/dmitrijs2005/flowcross/internal/session"
	"github.com/dmitrijs2005/flowcross/internal/theme"
)

// Channel is a verification channel.
type Channel string

const (
	ChannelPhone        Channel = "phone"
	ChannelFlowID       Channel = "flowId"
	ChannelFlowSecurity Channel = "flowSecurity"
)

// minLen is the shortest value each channel accepts.
var minLen = map[Channel]int{
	ChannelPhone:        10,
	ChannelFlowID:       6,
	ChannelFlowSecurity: 8,
}

// DefaultVerifyDelays is the simulated latency of each channel.
var DefaultVerifyDelays = map[Channel]time.Duration{
	ChannelPhone:        2 * time.Second,
	ChannelFlowID:       1500 * time.Millisecond,
	ChannelFlowSecurity: 3 * time.Second,
}

// ProfileFields lists the editable profile fields; nil leaves a field as is.
type ProfileFields struct {
	Username *string
	Email    *string
}

// ProfileService mutates the current session. Every method returns the
// stored record on success and leaves it untouched on failure. Without a
// session they fail with common.ErrNoSession.
type ProfileService interface {
	UpdateProfile(ctx context.Context, f ProfileFields) (*models.Session, error)
	SetAvatar(ctx context.Context, img []byte) (*models.Session, error)
	SetDefaultAvatar(ctx context.Context) (*models.Session, error)
	SetVerified(ctx context.Context, verified bool) (*models.Session, error)
	SetVerificationChannel(ctx context.Context, ch Channel, value string) (*models.Session, error)
	SetTheme(ctx context.Context, themeID string) (*models.Session, error)
	SetBackground(ctx context.Context, css string) (*models.Session, error)
}

// ProfileDeps groups the collaborators of the profile service.
type ProfileDeps struct {
	Sessions     *session.Store
	Avatars      AvatarStore
	Entitlements theme.Entitlements
	Notifier     notify.Notifier
	Logger       logging.Logger

	// VerifyDelays overrides DefaultVerifyDelays per channel.
	VerifyDelays map[Channel]time.Duration
	// Sleep waits out the simulated latency. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

type profileService struct {
	sessions *session.Store
	avatars  AvatarStore
	ent      theme.Entitlements
	notifier notify.Notifier
	log      logging.Logger
	delays   map[Channel]time.Duration
	sleep    func(time.Duration)
}

func NewProfileService(d ProfileDeps) ProfileService {
	p := &profileService{
		sessions: d.Sessions,
		avatars:  d.Avatars,
		ent:      d.Entitlements,
		notifier: d.Notifier,
		log:      d.Logger,
		delays:   make(map[Channel]time.Duration, len(DefaultVerifyDelays)),
		sleep:    d.Sleep,
	}
	if p.avatars == nil {
		p.avatars = InlineAvatarStore{}
	}
	if p.ent == nil {
		p.ent = theme.StaticEntitlements{Premium: true}
	}
	if p.notifier == nil {
		p.notifier = notify.Discard
	}
	if p.log == nil {
		p.log = logging.Nop()
	}
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	for ch, v := range DefaultVerifyDelays {
		p.delays[ch] = v
	}
	for ch, v := range d.VerifyDelays {
		p.delays[ch] = v
	}
	return p
}

// apply runs fn through the session store and announces success.
func (p *profileService) apply(ctx context.Context, fn session.MutateFunc, done func(s *models.Session) notify.Notification) (*models.Session, error) {
	s, err := p.sessions.Update(ctx, fn)
	if err != nil {
		return nil, err
	}
	p.notifier.Notify(ctx, done(s))
	return s, nil
}

func (p *profileService) UpdateProfile(ctx context.Context, f ProfileFields) (*models.Session, error) {
	if f.Username != nil && strings.TrimSpace(*f.Username) == "" {
		return nil, fmt.Errorf("%w: username must not be empty", common.ErrValidation)
	}

	return p.apply(ctx, func(s *models.Session) error {
		if f.Username != nil {
			s.Username = strings.TrimSpace(*f.Username)
		}
		if f.Email != nil {
			s.Email = strings.TrimSpace(*f.Email)
		}
		return nil
	}, func(*models.Session) notify.Notification {
		return notify.Info("Profile updated!", "Your changes have been saved")
	})
}

func (p *profileService) SetAvatar(ctx context.Context, img []byte) (*models.Session, error) {
	cur, err := p.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, common.ErrNoSession
	}

	ref, err := p.avatars.Store(ctx, cur.Username, shrinkAvatar(img))
	if err != nil {
		return nil, err
	}
	p.log.Debug(ctx, "avatar stored", "username", cur.Username, "bytes", len(img))

	// The upload stays outside the session lock. If the session is gone or
	// changes hands meanwhile, the stored object is left behind and logged.
	s, err := p.apply(ctx, func(s *models.Session) error {
		if s.Username != cur.Username {
			return fmt.Errorf("%w: session changed during upload", common.ErrNoSession)
		}
		s.Avatar = ref
		return nil
	}, func(*models.Session) notify.Notification {
		return notify.Info("Avatar updated!", "New profile picture saved")
	})
	if err != nil {
		p.log.Warn(ctx, "avatar orphaned", "username", cur.Username, "ref", orphanRef(ref), "error", err)
		return nil, err
	}
	return s, nil
}

// orphanRef shortens inline data URIs for logging.
func orphanRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return "inline"
	}
	return ref
}

func (p *profileService) SetDefaultAvatar(ctx context.Context) (*models.Session, error) {
	return p.SetAvatar(ctx, DefaultAvatar())
}

func (p *profileService) SetVerified(ctx context.Context, verified bool) (*models.Session, error) {
	return p.apply(ctx, func(s *models.Session) error {
		s.Verified = verified
		return nil
	}, func(*models.Session) notify.Notification {
		if verified {
			return notify.Info("Account verified!", "Your account now carries the verified badge")
		}
		return notify.Info("Verification removed", "The verified badge was removed")
	})
}

// SetVerificationChannel validates value, waits out the channel's simulated
// latency and then marks the channel verified. Other channels are kept.
func (p *profileService) SetVerificationChannel(ctx context.Context, ch Channel, value string) (*models.Session, error) {
	need, ok := minLen[ch]
	if !ok {
		return nil, fmt.Errorf("%w: unknown verification channel %q", common.ErrValidation, ch)
	}
	// lengths are in characters; the value is stored as typed
	if utf8.RuneCountInString(value) < need {
		return nil, fmt.Errorf("%w: %s must be at least %d characters", common.ErrValidation, ch, need)
	}

	cur, err := p.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, common.ErrNoSession
	}

	p.log.Debug(ctx, "verification pending", "channel", string(ch), "delay", p.delays[ch])
	p.sleep(p.delays[ch])

	return p.apply(ctx, func(s *models.Session) error {
		if s.Verification == nil {
			s.Verification = &models.Verification{}
		}
		switch ch {
		case ChannelPhone:
			s.Verification.Phone = true
			s.Verification.PhoneNumber = value
		case ChannelFlowID:
			s.Verification.FlowID = true
			s.Verification.FlowIDValue = value
		case ChannelFlowSecurity:
			s.Verification.FlowSecurity = true
		}
		return nil
	}, func(*models.Session) notify.Notification {
		switch ch {
		case ChannelPhone:
			return notify.Info("Phone verified", fmt.Sprintf("Number %s verified successfully", value))
		case ChannelFlowID:
			return notify.Info("FlowID verified", fmt.Sprintf("FlowID %s verified successfully", value))
		default:
			return notify.Info("FlowSecurity verified", "Security system activated")
		}
	})
}

func (p *profileService) SetTheme(ctx context.Context, themeID string) (*models.Session, error) {
	t, ok := theme.Lookup(themeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownTheme, themeID)
	}

	return p.apply(ctx, func(s *models.Session) error {
		if t.Premium {
			premium, err := p.ent.HasPremium(ctx, s.Username)
			if err != nil {
				return fmt.Errorf("entitlement check failed: %w", err)
			}
			if !premium {
				return fmt.Errorf("%w: theme %q is available to Premium users only", common.ErrPremiumRequired, t.Name)
			}
		}
		if s.Preferences == nil {
			s.Preferences = &models.Preferences{}
		}
		s.Preferences.Theme = t.ID
		return nil
	}, func(*models.Session) notify.Notification {
		return notify.Info("Theme applied!", fmt.Sprintf("Activated theme %q", t.Name))
	})
}

// SetBackground stores css as given; it is not validated.
func (p *profileService) SetBackground(ctx context.Context, css string) (*models.Session, error) {
	return p.apply(ctx, func(s *models.Session) error {
		if s.Preferences == nil {
			s.Preferences = &models.Preferences{}
		}
		s.Preferences.Background = css
		return nil
	}, func(*models.Session) notify.Notification {
		return notify.Info("Background changed", "New background applied")
	})
}
