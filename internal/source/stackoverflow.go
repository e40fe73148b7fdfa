package source

import (
	"context"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/rest"
)

const stackExchangeAPIBase = "https://api.stackexchange.com"

var stackQuestionPattern = regexp.MustCompile(`^https://stackoverflow\.com/questions/(\d+)/?.*$`)

// previewLimit caps the activity preview taken from post bodies.
const previewLimit = 200

// StackOverflow resolves question URLs to the latest activity on the
// question: the question itself, its newest answer, or its newest comment.
type StackOverflow struct {
	api *rest.Client
	log *logger.Logger
}

// NewStackOverflow creates a StackOverflow client against the public
// StackExchange API.
func NewStackOverflow() *StackOverflow {
	return newStackOverflow(stackExchangeAPIBase)
}

func newStackOverflow(baseURL string) *StackOverflow {
	return &StackOverflow{
		api: rest.New(rest.Config{BaseURL: baseURL}),
		log: logger.WithComponent("source.stackoverflow"),
	}
}

type stackItems struct {
	Items []stackPost `json:"items"`
}

type stackPost struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	CreationDate int64  `json:"creation_date"`
	Owner        struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

// Fetch returns info about the latest activity on the question the URL
// points to.
func (s *StackOverflow) Fetch(ctx context.Context, url string, filters []string) (Info, error) {
	match := stackQuestionPattern.FindStringSubmatch(url)
	if match == nil {
		s.log.Warn("unsupported stackoverflow url", map[string]interface{}{"url": url})
		return nil, apperrors.URLNotSupported(url)
	}
	questionID := match[1]

	params, err := filterParams(filters)
	if err != nil {
		return nil, err
	}
	params["site"] = "stackoverflow"
	params["filter"] = "withbody"

	question, err := s.fetchFirst(ctx, "/2.3/questions/"+questionID, params)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperrors.ResourceNotFound(fmt.Sprintf("вопрос с id %s не найден", questionID))
	}

	latest := *question
	preview := truncate(question.Body, previewLimit)
	title := question.Title

	// Answers and comments are sorted newest first, so the head of each
	// list is the only candidate for later activity.
	for _, sub := range []string{"/answers", "/comments"} {
		post, err := s.fetchFirst(ctx, "/2.3/questions/"+questionID+sub, map[string]string{
			"site":   "stackoverflow",
			"sort":   "creation",
			"order":  "desc",
			"filter": "withbody",
		})
		if err != nil {
			return nil, err
		}
		if post != nil && post.CreationDate > latest.CreationDate {
			latest = *post
			preview = truncate(post.Body, previewLimit)
		}
	}

	return Info{
		{Key: "title", Value: title},
		{Key: "user", Value: latest.Owner.DisplayName},
		{Key: "date", Value: unixToPlain(latest.CreationDate)},
		{Key: "preview", Value: preview},
	}, nil
}

// fetchFirst returns the first item of a StackExchange listing, or nil when
// the listing is empty.
func (s *StackOverflow) fetchFirst(ctx context.Context, path string, params map[string]string) (*stackPost, error) {
	resp, err := rest.Get[stackItems](ctx, s.api, path, rest.WithQuery(params))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !resp.OK() {
		s.log.Warn("stackexchange api error", map[string]interface{}{"status": resp.StatusCode, "path": path})
		return nil, apperrors.Upstream(resp.StatusCode)
	}
	if len(resp.Data.Items) == 0 {
		return nil, nil
	}
	return &resp.Data.Items[0], nil
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// unixToPlain formats a Unix timestamp as "2006-01-02 15:04:05" in UTC.
func unixToPlain(ts int64) string {
	if ts <= 0 {
		return "Undefined"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}
