// Package metrics turns a raw GitHub activity snapshot into normalized planet statistics
package metrics

import (
	"math"
	"time"

	"gitplanet/internal/core/palette"
)

// WeeklyWindow is the trailing window counted as weekly activity
const WeeklyWindow = 7 * 24 * time.Hour

// LanguageEdge is one language entry of a repository
type LanguageEdge struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Repository is a repository the user owns or contributed to
type Repository struct {
	Name       string         `json:"name"`
	Stargazers int            `json:"stargazers"`
	Languages  []LanguageEdge `json:"languages"`
}

// ContributionDay is one cell of the contribution calendar
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Snapshot is the raw activity of one user as reported upstream
type Snapshot struct {
	UserID             int64             `json:"user_id"`
	Login              string            `json:"login"`
	Owned              []Repository      `json:"owned"`
	Contributed        []Repository      `json:"contributed"`
	Calendar           []ContributionDay `json:"calendar"`
	TotalContributions int               `json:"total_contributions"`
	AccountCreatedAt   time.Time         `json:"account_created_at"`
	StarredCount       int               `json:"starred_count"`
}

// Stats is the normalized view of a Snapshot
type Stats struct {
	MainLanguage             string           `json:"main_language"`
	LanguageBytes            map[string]int64 `json:"language_bytes"`
	TotalCommits             int              `json:"total_commits"`
	WeeklyCommits            int              `json:"weekly_commits"`
	TotalStars               int              `json:"total_stars"`
	LanguagesCount           int              `json:"languages_count"`
	HasExternalContributions bool             `json:"has_external_contributions"`
	AccountCreatedAt         time.Time        `json:"account_created_at"`
}

// Aggregate computes Stats from s as of now
func Aggregate(s Snapshot, now time.Time) Stats {
	out := Stats{
		LanguageBytes:            make(map[string]int64),
		HasExternalContributions: len(s.Contributed) > 0,
		AccountCreatedAt:         s.AccountCreatedAt,
		TotalCommits:             max(0, s.TotalContributions),
		TotalStars:               max(0, s.StarredCount),
	}

	// first seen order drives the main language tie break
	var order []string
	add := func(repos []Repository) {
		for _, r := range repos {
			for _, e := range r.Languages {
				if e.Name == "" {
					continue
				}
				if _, seen := out.LanguageBytes[e.Name]; !seen {
					order = append(order, e.Name)
				}
				out.LanguageBytes[e.Name] += max(0, e.Size)
			}
		}
	}
	add(s.Owned)
	add(s.Contributed)

	for _, r := range s.Owned {
		out.TotalStars += max(0, r.Stargazers)
	}

	out.MainLanguage = palette.Unknown
	var best int64 = -1
	for _, lang := range order {
		if b := out.LanguageBytes[lang]; b > best {
			best = b
			out.MainLanguage = lang
		}
	}

	out.LanguagesCount = len(out.LanguageBytes)
	out.WeeklyCommits = Weekly(s.Calendar, now)
	return out
}

// Weekly sums the calendar days on or after now minus WeeklyWindow
func Weekly(days []ContributionDay, now time.Time) int {
	cutoff := now.Add(-WeeklyWindow)
	total := 0
	for _, d := range days {
		if !d.Date.Before(cutoff) {
			total += max(0, d.Count)
		}
	}
	return total
}

// SizeFactor maps commits to a planet scale in [1, 2] rounded to two decimals
func SizeFactor(totalCommits int) float64 {
	c := math.Max(1, float64(totalCommits))
	f := 1 + math.Min(1, math.Log10(c)/2.5)
	return math.Round(f*100) / 100
}

// AccountAgeDays returns the elapsed days since created, rounded up
func AccountAgeDays(created, now time.Time) int {
	if created.IsZero() || !now.After(created) {
		return 0
	}
	return int(math.Ceil(now.Sub(created).Hours() / 24))
}
