// Package models defines the records persisted by the FlowCross account core.
// Field names and JSON tags follow the layout used by the web dashboard's
// local storage so records can be exchanged between the two.
package models

import "time"

// Session is the single "current user" record. At most one exists at a time
// and every mutation replaces it wholesale.
type Session struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`

	// LoginTime is the epoch millisecond at which the session was started.
	// Profile mutations never change it; derived stats are seeded from it.
	LoginTime int64 `json:"loginTime"`

	// Avatar holds either an inline data URI or the URL of an uploaded image.
	Avatar   string `json:"avatar,omitempty"`
	Verified bool   `json:"verified,omitempty"`

	Verification *Verification `json:"verification,omitempty"`
	Preferences  *Preferences  `json:"preferences,omitempty"`
}

// Verification carries independent per-channel flags. Channels are
// OR-composed: verifying one never clears another.
type Verification struct {
	Phone        bool   `json:"phone,omitempty"`
	FlowID       bool   `json:"flowId,omitempty"`
	FlowSecurity bool   `json:"flowSecurity,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	FlowIDValue  string `json:"flowIdValue,omitempty"`
}

// Preferences holds the visual settings chosen on the dashboard.
type Preferences struct {
	Background string `json:"background,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Verification != nil {
		v := *s.Verification
		c.Verification = &v
	}
	if s.Preferences != nil {
		p := *s.Preferences
		c.Preferences = &p
	}
	return &c
}

// LoginAt converts LoginTime to a time.Time.
func (s *Session) LoginAt() time.Time {
	return time.UnixMilli(s.LoginTime)
}

// Theme returns the selected theme id, or "" when none was chosen.
func (s *Session) Theme() string {
	if s.Preferences == nil {
		return ""
	}
	return s.Preferences.Theme
}

// Background returns the selected background, or "" when none was chosen.
func (s *Session) Background() string {
	if s.Preferences == nil {
		return ""
	}
	return s.Preferences.Background
}
