// Package domain holds planet types independent of transport or storage
package domain

import (
	"time"

	"gitplanet/internal/core/achievement"
	"gitplanet/internal/core/palette"
	"gitplanet/internal/core/titles"
)

// Identity names the GitHub account a reconcile runs for
// UserID may be zero when only the login is known
type Identity struct {
	UserID int64
	Login  string
}

// Record is the persisted planet, one per GitHub user id
type Record struct {
	UserID        int64
	Username      string
	Color         string
	SizeFactor    float64
	Name          string
	MainLanguage  string
	TotalCommits  int
	WeeklyCommits int
	LanguageBytes map[string]int64
	Achievements  achievement.State
	Inventory     titles.Inventory
	ActiveTitle   titles.Active
	Visits        int64
	ReconciledAt  time.Time
}

// View is the public read model of a planet
type View struct {
	Username         string            `json:"username" example:"octocat"`
	MainLanguage     string            `json:"mainLanguage" example:"Go"`
	PlanetColor      string            `json:"planetColor" example:"#00add8"`
	LanguageBytes    map[string]int64  `json:"languageBytes"`
	TotalCommits     int               `json:"totalCommits" example:"120"`
	WeeklyCommits    int               `json:"weeklyCommits" example:"10"`
	PlanetSizeFactor float64           `json:"planetSizeFactor" example:"1.83"`
	PlanetName       string            `json:"planetName" example:"静かな青い星の見習い"`
	Achievements     achievement.State `json:"achievements"`
	UnlockedTitles   titles.Inventory  `json:"unlockedTitles"`
	ActiveTitle      titles.Active     `json:"activeTitle"`
	Visits           int64             `json:"visits" example:"3"`
	ReconciledAt     time.Time         `json:"reconciledAt"`
}

// ViewOf renders r for readers
// a planet without commits or language data shows as Unknown and neutral gray
func ViewOf(r Record) View {
	v := View{
		Username:         r.Username,
		MainLanguage:     r.MainLanguage,
		PlanetColor:      r.Color,
		LanguageBytes:    r.LanguageBytes,
		TotalCommits:     r.TotalCommits,
		WeeklyCommits:    r.WeeklyCommits,
		PlanetSizeFactor: r.SizeFactor,
		PlanetName:       r.Name,
		Achievements:     r.Achievements,
		UnlockedTitles:   r.Inventory,
		ActiveTitle:      r.ActiveTitle,
		Visits:           r.Visits,
		ReconciledAt:     r.ReconciledAt,
	}
	if v.LanguageBytes == nil {
		v.LanguageBytes = map[string]int64{}
	}
	if v.Achievements == nil {
		v.Achievements = achievement.State{}
	}
	if r.TotalCommits == 0 || len(r.LanguageBytes) == 0 {
		v.MainLanguage = palette.Unknown
		v.PlanetColor = palette.NeutralGray
	}
	return v
}

// Stale is a planet due for a refresh
type Stale struct {
	UserID       int64
	Username     string
	ReconciledAt time.Time
}
