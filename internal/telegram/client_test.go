package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/scrapper"
)

func TestFormatLinkListEmpty(t *testing.T) {
	if got := formatLinkList(nil); got != "Нет отслеживаемых ссылок" {
		t.Errorf("got %q", got)
	}
}

func TestFormatLinkListGrouping(t *testing.T) {
	links := []model.LinkResponse{
		{URL: "https://github.com/a/b/commits", Tags: []string{"work"}},
		{URL: "https://stackoverflow.com/questions/1", Tags: []string{"work", "go"}},
		{URL: "https://github.com/c/d/commits"},
	}
	got := formatLinkList(links)
	want := "work:\nhttps://github.com/a/b/commits\nhttps://stackoverflow.com/questions/1\n" +
		"go:\nhttps://stackoverflow.com/questions/1\n" +
		"Без тегов:\nhttps://github.com/c/d/commits\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatLinkListTagOrderWithinLink(t *testing.T) {
	// Tags of a single link are visited in sorted order, so group order is
	// deterministic.
	links := []model.LinkResponse{
		{URL: "u", Tags: []string{"zzz", "aaa"}},
	}
	got := formatLinkList(links)
	want := "aaa:\nu\nzzz:\nu\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorDescription(t *testing.T) {
	body := []byte(`{"description": "Чат уже зарегистрирован", "code": "AlreadyRegisteredChatException"}`)
	if got := errorDescription(body, "fallback"); got != "Чат уже зарегистрирован" {
		t.Errorf("got %q", got)
	}
	if got := errorDescription([]byte("not json"), "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	if got := errorDescription([]byte(`{}`), "fallback"); got != "fallback" {
		t.Errorf("empty description: got %q", got)
	}
}

func TestScrapperClientRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/tg-chat/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewScrapperClient(srv.URL, logger.NewDefault("test"))
	if got := c.Register(context.Background(), 42); got != "Вы успешно зарегистрированы!" {
		t.Errorf("got %q", got)
	}
}

func TestScrapperClientRegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"description": "Чат уже зарегистрирован"}`))
	}))
	defer srv.Close()

	c := NewScrapperClient(srv.URL, logger.NewDefault("test"))
	if got := c.Register(context.Background(), 42); got != "Чат уже зарегистрирован" {
		t.Errorf("got %q", got)
	}
}

func TestScrapperClientTrackSendsChatHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(scrapper.ChatIDHeader) != "42" {
			t.Errorf("chat header = %q", r.Header.Get(scrapper.ChatIDHeader))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 42, "url": "https://github.com/a/b/commits"}`))
	}))
	defer srv.Close()

	c := NewScrapperClient(srv.URL, logger.NewDefault("test"))
	got := c.Track(context.Background(), 42, "https://github.com/a/b/commits", nil, nil)
	if got != "Ссылка успешно добавлена." {
		t.Errorf("got %q", got)
	}
}

func TestScrapperClientListFormatsLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"links": [{"id": 42, "url": "u", "tags": ["work"]}], "size": 1}`))
	}))
	defer srv.Close()

	c := NewScrapperClient(srv.URL, logger.NewDefault("test"))
	if got := c.List(context.Background(), 42); got != "work:\nu\n" {
		t.Errorf("got %q", got)
	}
}
