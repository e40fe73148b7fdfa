package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type echo struct {
	Name string `json:"name"`
}

func TestGetDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("accept header = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "value"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := Get[echo](context.Background(), c, "/thing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() || resp.Data.Name != "value" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("query page = %q", got)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("custom header = %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := Get[echo](context.Background(), c, "/",
		WithQuery(map[string]string{"page": "2"}),
		WithHeaders(map[string]string{"X-Custom": "yes"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var got echo
		if err := json.Unmarshal(raw, &got); err != nil || got.Name != "in" {
			t.Errorf("body = %s", raw)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name": "out"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := Post[echo](context.Background(), c, "/", echo{Name: "in"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Name != "out" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestErrorStatusKeepsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"description": "conflict"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := Get[echo](context.Background(), c, "/")
	if err != nil {
		t.Fatalf("status codes must not surface as errors: %v", err)
	}
	if resp.OK() {
		t.Error("409 reported as OK")
	}
	if resp.Data.Name != "" {
		t.Error("data decoded from an error response")
	}
	if string(resp.Body) != `{"description": "conflict"}` {
		t.Errorf("body = %s", resp.Body)
	}
}

func TestEmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := Post[struct{}](context.Background(), c, "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: "100ms"})
	if _, err := Get[echo](context.Background(), c, "/"); err == nil {
		t.Fatal("expected a transport error")
	}
}
