package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

func TestHTTPSenderDeliversBatch(t *testing.T) {
	var received []model.LinkUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != UpdatesPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		var u model.LinkUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			t.Errorf("decode: %v", err)
		}
		received = append(received, u)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, logger.NewDefault("test"))
	updates := []model.LinkUpdate{
		{ID: 1, URL: "a", Description: "d1", TgChatIDs: []int64{1}},
		{ID: 2, URL: "b", Description: "d2", TgChatIDs: []int64{2}},
	}
	if err := sender.Send(context.Background(), updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("delivered %d updates, want 2", len(received))
	}
	if received[0].URL != "a" || received[1].URL != "b" {
		t.Errorf("received = %+v", received)
	}
}

func TestHTTPSenderContinuesAfterRejection(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, logger.NewDefault("test"))
	updates := []model.LinkUpdate{{ID: 1, URL: "a"}, {ID: 2, URL: "b"}}
	err := sender.Send(context.Background(), updates)
	if err == nil {
		t.Fatal("a rejected update must surface as an error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, delivery must continue past failures", calls)
	}
}
