package telegram

import (
	"reflect"
	"sync"
	"testing"

	"github.com/linktrack/linktrack/internal/logger"
)

func newTestBot() *Bot {
	return &Bot{
		log:    logger.NewDefault("test"),
		states: make(map[int64]*trackState),
	}
}

func TestAdvanceTrackFlow(t *testing.T) {
	b := newTestBot()
	b.states[42] = &trackState{state: stateWaitTags, url: "https://github.com/golang/go/commits"}

	prompt, done := b.advanceTrack(42, "go tools")
	if prompt != filtersPrompt || done != nil {
		t.Fatalf("tags step: got (%q, %v), want filters prompt", prompt, done)
	}

	prompt, done = b.advanceTrack(42, "user:alice")
	if prompt != "" || done == nil {
		t.Fatalf("filters step: got (%q, %v), want finished state", prompt, done)
	}
	if done.url != "https://github.com/golang/go/commits" {
		t.Errorf("url = %q", done.url)
	}
	if !reflect.DeepEqual(done.tags, []string{"go", "tools"}) {
		t.Errorf("tags = %v", done.tags)
	}
	if !reflect.DeepEqual(done.filters, []string{"user:alice"}) {
		t.Errorf("filters = %v", done.filters)
	}
	if len(b.states) != 0 {
		t.Errorf("conversation state not cleared: %v", b.states)
	}
}

func TestAdvanceTrackSkip(t *testing.T) {
	b := newTestBot()
	b.states[42] = &trackState{state: stateWaitTags, url: "https://github.com/a/b/commits"}

	b.advanceTrack(42, "skip")
	_, done := b.advanceTrack(42, "SKIP")
	if done == nil {
		t.Fatal("conversation did not finish")
	}
	if done.tags != nil || done.filters != nil {
		t.Errorf("skip kept values: tags=%v filters=%v", done.tags, done.filters)
	}
}

func TestAdvanceTrackNoConversation(t *testing.T) {
	b := newTestBot()
	if prompt, done := b.advanceTrack(42, "hello"); prompt != "" || done != nil {
		t.Errorf("got (%q, %v), want nothing", prompt, done)
	}
}

func TestAdvanceTrackConcurrentMessages(t *testing.T) {
	b := newTestBot()
	b.states[42] = &trackState{state: stateWaitTags, url: "https://github.com/a/b/commits"}

	var wg sync.WaitGroup
	results := make([]*trackState, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = b.advanceTrack(42, "skip")
		}(i)
	}
	wg.Wait()

	finished := 0
	for _, done := range results {
		if done != nil {
			finished++
		}
	}
	if finished != 1 {
		t.Errorf("conversation finished %d times, want exactly once", finished)
	}
	if len(b.states) != 0 {
		t.Errorf("conversation state not cleared: %v", b.states)
	}
}

func TestSplitTagArgs(t *testing.T) {
	tests := []struct {
		payload string
		tag     string
		url     string
		ok      bool
	}{
		{"work https://github.com/a/b/commits", "work", "https://github.com/a/b/commits", true},
		{"  work   https://github.com/a/b/commits  ", "work", "https://github.com/a/b/commits", true},
		{"work", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range tests {
		tag, url, ok := splitTagArgs(tc.payload)
		if tag != tc.tag || url != tc.url || ok != tc.ok {
			t.Errorf("splitTagArgs(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.payload, tag, url, ok, tc.tag, tc.url, tc.ok)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("empty token must fail validation")
	}
	cfg.Token = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cfg.ScrapperURL == "" || cfg.PollTimeout <= 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
