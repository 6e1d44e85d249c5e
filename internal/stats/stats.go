// Package stats derives the cosmetic activity figures shown on the account
// dashboard. Everything is computed from the session's login time; nothing
// is stored.
package stats

import (
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/common"
)

const (
	maxXP       = 9999
	activeAfter = 7
)

type Status string

const (
	StatusNewbie Status = "newbie"
	StatusActive Status = "active"
)

// Stats is one observation of the derived figures.
type Stats struct {
	DaysActive    int
	Downloads     int
	HoursPlayed   int
	Favorites     int
	XP            int
	LevelProgress int
	// Weekly is Monday..Sunday activity in percent.
	Weekly [7]int
	Status Status

	// Jittered on every observation.
	DailyUsage     int // hours, 1..12
	WeeklyProgress int // percent, 0..100
	LoginStreak    int // days, 0..30
}

// DaysSince returns whole days elapsed between loginTime (epoch ms) and now.
// A login time in the future yields 0.
func DaysSince(loginTime int64, now time.Time) int {
	d := (now.UnixMilli() - loginTime) / common.MillisPerDay
	if d < 0 {
		return 0
	}
	return int(d)
}

// Compute derives Stats. A nil rng uses the global math/rand/v2 source.
func Compute(loginTime int64, now time.Time, rng *rand.Rand) Stats {
	d := DaysSince(loginTime, now)
	rawXP := 150*d + 1247

	s := Stats{
		DaysActive:    d,
		Downloads:     15*d + 247,
		HoursPlayed:   2*d + 42,
		Favorites:     d + 89,
		XP:            min(rawXP, maxXP),
		LevelProgress: min((rawXP%1000)/10, 100),
		Weekly:        weekly(d),
		Status:        StatusNewbie,
	}
	if d > activeAfter {
		s.Status = StatusActive
	}

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	s.DailyUsage = 1 + intN(12)
	s.WeeklyProgress = intN(101)
	s.LoginStreak = intN(31)
	return s
}

func weekly(d int) [7]int {
	base := 5 * d
	bars := [7]int{
		65 + base%20,
		45 + base%25,
		78 + base%15,
		90 - base%30,
		67 + base%18,
		89 - base%22,
		76 + base%24,
	}
	for i, v := range bars {
		bars[i] = max(0, min(v, 100))
	}
	return bars
}
