package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gitplanet/internal/core/metrics"
	perr "gitplanet/internal/platform/errors"
)

// repoPage bounds how many repositories of each kind feed the aggregation
const repoPage = 100

const activityQuery = `query($login: String!, $first: Int!) {
  user(login: $login) {
    databaseId
    login
    createdAt
    starredRepositories { totalCount }
    repositories(first: $first, ownerAffiliations: OWNER, isFork: false, orderBy: {field: PUSHED_AT, direction: DESC}) {
      nodes { ...repo }
    }
    repositoriesContributedTo(first: $first, includeUserRepositories: false, contributionTypes: [COMMIT, PULL_REQUEST]) {
      nodes { ...repo }
    }
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks { contributionDays { date contributionCount } }
      }
    }
  }
}
fragment repo on Repository {
  nameWithOwner
  stargazerCount
  languages(first: 20, orderBy: {field: SIZE, direction: DESC}) {
    edges { size node { name } }
  }
}`

type gqlRepo struct {
	NameWithOwner  string `json:"nameWithOwner"`
	StargazerCount int    `json:"stargazerCount"`
	Languages      struct {
		Edges []struct {
			Size int64 `json:"size"`
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"languages"`
}

type gqlUser struct {
	DatabaseID          int64     `json:"databaseId"`
	Login               string    `json:"login"`
	CreatedAt           time.Time `json:"createdAt"`
	StarredRepositories struct {
		TotalCount int `json:"totalCount"`
	} `json:"starredRepositories"`
	Repositories struct {
		Nodes []gqlRepo `json:"nodes"`
	} `json:"repositories"`
	RepositoriesContributedTo struct {
		Nodes []gqlRepo `json:"nodes"`
	} `json:"repositoriesContributedTo"`
	ContributionsCollection struct {
		ContributionCalendar struct {
			TotalContributions int `json:"totalContributions"`
			Weeks              []struct {
				ContributionDays []struct {
					Date              string `json:"date"`
					ContributionCount int    `json:"contributionCount"`
				} `json:"contributionDays"`
			} `json:"weeks"`
		} `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

type gqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type activityResponse struct {
	Data struct {
		User *gqlUser `json:"user"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// Activity fetches the raw activity snapshot of login
// token may be empty, the service pool is used then
// every failure is an upstream error so callers can abort before writing
func (c *Client) Activity(ctx context.Context, login, token string) (metrics.Snapshot, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return metrics.Snapshot{}, perr.InvalidArgf("github login is required")
	}
	payload, err := json.Marshal(map[string]any{
		"query":     activityQuery,
		"variables": map[string]any{"login": login, "first": repoPage},
	})
	if err != nil {
		return metrics.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeJSON, "github encode query")
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		url:    c.opts.GraphQLURL,
		body:   payload,
		token:  token,
		accept: "application/json",
	})
	if err != nil {
		return metrics.Snapshot{}, asUpstream(err, login)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("github close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return metrics.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "github read activity for %s", login)
	}
	var out activityResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return metrics.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "github decode activity for %s", login)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		if e.Type == "NOT_FOUND" {
			return metrics.Snapshot{}, perr.NotFoundf("github user %s not found", login)
		}
		return metrics.Snapshot{}, perr.Upstreamf("github graphql error for %s: %s", login, e.Message)
	}
	if out.Data.User == nil {
		return metrics.Snapshot{}, perr.Upstreamf("github returned no user for %s", login)
	}
	return toSnapshot(*out.Data.User), nil
}

// asUpstream keeps auth and not found codes and folds the rest into upstream
func asUpstream(err error, login string) error {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeUnauthorized, perr.ErrorCodeNotFound, perr.ErrorCodeUpstream, perr.ErrorCodeTooManyRequests:
		return err
	}
	return perr.Wrapf(err, perr.ErrorCodeUpstream, "github activity for %s", login)
}

func toSnapshot(u gqlUser) metrics.Snapshot {
	cal := u.ContributionsCollection.ContributionCalendar
	s := metrics.Snapshot{
		UserID:             u.DatabaseID,
		Login:              u.Login,
		Owned:              toRepos(u.Repositories.Nodes),
		Contributed:        toRepos(u.RepositoriesContributedTo.Nodes),
		TotalContributions: cal.TotalContributions,
		AccountCreatedAt:   u.CreatedAt,
		StarredCount:       u.StarredRepositories.TotalCount,
	}
	for _, w := range cal.Weeks {
		for _, d := range w.ContributionDays {
			day, err := time.Parse(time.DateOnly, d.Date)
			if err != nil {
				continue
			}
			s.Calendar = append(s.Calendar, metrics.ContributionDay{Date: day, Count: d.ContributionCount})
		}
	}
	return s
}

func toRepos(nodes []gqlRepo) []metrics.Repository {
	out := make([]metrics.Repository, 0, len(nodes))
	for _, n := range nodes {
		r := metrics.Repository{Name: n.NameWithOwner, Stargazers: n.StargazerCount}
		for _, e := range n.Languages.Edges {
			r.Languages = append(r.Languages, metrics.LanguageEdge{Name: e.Node.Name, Size: e.Size})
		}
		out = append(out, r)
	}
	return out
}
