package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linktrack/linktrack/internal/apperrors"
)

const githubCommitsBody = `[
	{"commit": {"message": "fix parser", "author": {"name": "octocat", "date": "2025-04-01T19:56:41Z"}}},
	{"commit": {"message": "older", "author": {"name": "someone", "date": "2025-03-30T10:00:00Z"}}}
]`

func TestGitHubFetchLatestCommit(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(githubCommitsBody))
	}))
	defer srv.Close()

	gh := newGitHub(srv.URL)
	info, err := gh.Fetch(context.Background(), "https://github.com/golang/go/commits", []string{"author:octocat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/repos/golang/go/commits" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "author=octocat" {
		t.Errorf("query = %q", gotQuery)
	}

	want := Info{
		{Key: "commit message", Value: "fix parser"},
		{Key: "user", Value: "octocat"},
		{Key: "date", Value: "2025-04-01 19:56:41"},
	}
	if len(info) != len(want) {
		t.Fatalf("got %d fields, want %d", len(info), len(want))
	}
	for i := range want {
		if info[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, info[i], want[i])
		}
	}
}

func TestGitHubFetchURLVariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(githubCommitsBody))
	}))
	defer srv.Close()
	gh := newGitHub(srv.URL)

	accepted := []string{
		"https://github.com/golang/go/commits",
		"https://github.com/golang/go/commits/",
		"https://github.com/golang/go/commits/master",
	}
	for _, url := range accepted {
		if _, err := gh.Fetch(context.Background(), url, nil); err != nil {
			t.Errorf("Fetch(%q) unexpected error: %v", url, err)
		}
	}

	rejected := []string{
		"https://github.com/golang/go",
		"https://github.com/golang/go/pulls",
		"https://github.com/golang",
	}
	for _, url := range rejected {
		if _, err := gh.Fetch(context.Background(), url, nil); !apperrors.Is(err, apperrors.CodeURLNotSupported) {
			t.Errorf("Fetch(%q) error = %v, want URL-not-supported", url, err)
		}
	}
}

func TestGitHubFetchEmptyRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	gh := newGitHub(srv.URL)
	_, err := gh.Fetch(context.Background(), "https://github.com/golang/go/commits", nil)
	if !apperrors.Is(err, apperrors.CodeResourceNotFound) {
		t.Errorf("error = %v, want resource-not-found", err)
	}
}

func TestGitHubFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gh := newGitHub(srv.URL)
	_, err := gh.Fetch(context.Background(), "https://github.com/golang/nosuch/commits", nil)
	if !apperrors.Is(err, apperrors.CodeUpstreamError) {
		t.Errorf("error = %v, want upstream error", err)
	}
}

func TestGitHubFetchBadFilter(t *testing.T) {
	gh := newGitHub("http://unused")
	_, err := gh.Fetch(context.Background(), "https://github.com/golang/go/commits", []string{"no-colon"})
	if !apperrors.Is(err, apperrors.CodeUnsupportedFilter) {
		t.Errorf("error = %v, want unsupported-filter", err)
	}
}
