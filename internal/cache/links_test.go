package cache

import (
	"context"
	"testing"

	"github.com/linktrack/linktrack/internal/model"
)

func TestKey(t *testing.T) {
	if got := Key(42); got != "links:42" {
		t.Errorf("got %q", got)
	}
	if got := Key(-1); got != "links:-1" {
		t.Errorf("got %q", got)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *LinkCache
	ctx := context.Background()

	if got := c.Get(ctx, 42); got != nil {
		t.Errorf("Get on nil cache = %v", got)
	}
	// Set and Invalidate must not panic on a nil cache.
	c.Set(ctx, 42, []model.LinkResponse{{ID: 42, URL: "u"}})
	c.Invalidate(ctx, 42)
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache: %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Addr != "localhost:6379" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.TTL = "forever"
	if err := cfg.Validate(); err == nil {
		t.Error("bad ttl must fail")
	}
}
