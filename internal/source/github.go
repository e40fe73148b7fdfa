package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/rest"
)

const githubAPIBase = "https://api.github.com"

var githubCommitsPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/commits(/[^/]+)?/?$`)

// GitHub resolves commit-list URLs to the latest commit in the repository.
type GitHub struct {
	api *rest.Client
	log *logger.Logger
}

// NewGitHub creates a GitHub client against the public API.
func NewGitHub() *GitHub {
	return newGitHub(githubAPIBase)
}

func newGitHub(baseURL string) *GitHub {
	return &GitHub{
		api: rest.New(rest.Config{BaseURL: baseURL}),
		log: logger.WithComponent("source.github"),
	}
}

type githubCommit struct {
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// Fetch returns info about the latest commit of the repository the URL
// points to. Only commit-list URLs are accepted.
func (g *GitHub) Fetch(ctx context.Context, url string, filters []string) (Info, error) {
	match := githubCommitsPattern.FindStringSubmatch(url)
	if match == nil {
		g.log.Warn("unsupported github url", map[string]interface{}{"url": url})
		return nil, apperrors.URLNotSupported(url)
	}
	owner, repo := match[1], match[2]

	params, err := filterParams(filters)
	if err != nil {
		return nil, err
	}

	resp, err := rest.Get[[]githubCommit](ctx, g.api, fmt.Sprintf("/repos/%s/%s/commits", owner, repo), rest.WithQuery(params))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !resp.OK() {
		g.log.Warn("github api error", map[string]interface{}{"status": resp.StatusCode, "owner": owner, "repo": repo})
		return nil, apperrors.Upstream(resp.StatusCode)
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.ResourceNotFound(fmt.Sprintf("нет коммитов в репозитории %s пользователя %s", repo, owner))
	}

	latest := resp.Data[0]
	return Info{
		{Key: "commit message", Value: latest.Commit.Message},
		{Key: "user", Value: latest.Commit.Author.Name},
		{Key: "date", Value: isoToPlain(latest.Commit.Author.Date)},
	}, nil
}

// isoToPlain rewrites "2025-04-01T19:56:41Z" as "2025-04-01 19:56:41".
func isoToPlain(date string) string {
	date = strings.ReplaceAll(date, "T", " ")
	return strings.ReplaceAll(date, "Z", "")
}
