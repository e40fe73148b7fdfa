// Package scheduler periodically re-checks every tracked link against its
// upstream source and pushes notifications for new activity.
package scheduler

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/notify"
	"github.com/linktrack/linktrack/internal/observability"
	"github.com/linktrack/linktrack/internal/source"
	"github.com/linktrack/linktrack/internal/storage"
)

// ignorePrefix marks filters that suppress updates from a given author.
const ignorePrefix = "ignore:"

// Scheduler pages through all tracked links, fetches fresh activity info,
// and dispatches updates whose event date changed.
type Scheduler struct {
	repo     storage.LinkRepo
	sources  *source.Registry
	sender   notify.Sender
	timers   *timerRegistry
	cfg      Config
	pageSize int
	metrics  *observability.Metrics
	log      *logger.Logger
}

// SetMetrics attaches optional telemetry counters.
func (s *Scheduler) SetMetrics(m *observability.Metrics) { s.metrics = m }

// New creates a scheduler. pageSize controls how many links one iteration
// loads from storage.
func New(repo storage.LinkRepo, sources *source.Registry, sender notify.Sender, cfg Config, pageSize int, log *logger.Logger) (*Scheduler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	slog := log.WithComponent("scheduler")
	return &Scheduler{
		repo:     repo,
		sources:  sources,
		sender:   sender,
		timers:   newTimerRegistry(loc, sender, slog),
		cfg:      cfg,
		pageSize: pageSize,
		log:      slog,
	}, nil
}

// Run executes the check loop until ctx is cancelled. Pages are processed
// back to back; when a page comes back empty the loop resets to the first
// page and sleeps for the idle interval.
func (s *Scheduler) Run(ctx context.Context) error {
	idle, _ := time.ParseDuration(s.cfg.IdleInterval)
	defer s.timers.StopAll()

	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.log.Info("loading links", map[string]interface{}{"page": page, "page_size": s.pageSize})
		links, err := s.repo.AllLinks(ctx, page, s.pageSize)
		if err != nil {
			s.log.WithError(err).Error("loading links failed", map[string]interface{}{"page": page})
			links = nil
		}

		if len(links) == 0 {
			page = 1
			s.log.Info("no links to process, sleeping", map[string]interface{}{"idle": idle.String()})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(idle):
			}
			continue
		}

		s.processBatch(ctx, links)
		page++
	}
}

// processBatch splits the links into chunks, checks each link, and
// dispatches the chunks' updates concurrently.
func (s *Scheduler) processBatch(ctx context.Context, links []model.LinkSnapshot) {
	s.log.Info("processing links", map[string]interface{}{"count": len(links)})

	batches := make([][]model.LinkUpdate, 0, s.cfg.Chunks)
	for _, chunk := range chunkLinks(links, s.cfg.Chunks) {
		var updates []model.LinkUpdate
		for _, link := range chunk {
			update, ok := s.checkLink(ctx, link)
			if ok {
				updates = append(updates, *update)
			}
		}
		if len(updates) > 0 {
			batches = append(batches, updates)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			if err := s.sender.Send(gctx, batch); err != nil {
				return err
			}
			s.metrics.RecordUpdatesSent(gctx, len(batch))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("update dispatch failed")
	}

	s.log.Info("batch processed", map[string]interface{}{"count": len(links)})
}

// checkLink fetches fresh info for one link. It returns an update for
// immediate dispatch, or false when nothing needs to be sent now: no new
// activity, the author is ignored, the chat has a delivery time (the update
// is deferred to that time), or the fetch failed.
func (s *Scheduler) checkLink(ctx context.Context, link model.LinkSnapshot) (*model.LinkUpdate, bool) {
	src, err := s.sources.For(link.URL)
	if err != nil {
		s.log.WithError(err).Error("unsupported tracked link", map[string]interface{}{"link": link.URL})
		s.metrics.RecordLinkCheck(ctx, false, true)
		return nil, false
	}
	info, err := src.Fetch(ctx, link.URL, link.Filters)
	if err != nil {
		s.log.WithError(err).Error("link check failed", map[string]interface{}{"link": link.URL})
		s.metrics.RecordLinkCheck(ctx, false, true)
		return nil, false
	}

	newDate := info.Date()
	if newDate == link.Date || isIgnored(info.Get("user"), link.Filters) {
		s.metrics.RecordLinkCheck(ctx, false, false)
		return nil, false
	}
	s.metrics.RecordLinkCheck(ctx, true, false)

	update := model.LinkUpdate{
		ID:          link.ChatID,
		URL:         link.URL,
		Description: notify.RenderDescription(info),
		TgChatIDs:   []int64{link.ChatID},
	}

	deferred := false
	notifyAt, err := s.repo.NotifyTime(ctx, link.ChatID)
	if err != nil {
		s.log.WithError(err).Error("loading notify time failed", map[string]interface{}{"chat_id": link.ChatID})
	} else if notifyAt != nil {
		s.timers.Schedule(link.LinkID, *notifyAt, []model.LinkUpdate{update})
		deferred = true
	}

	if err := s.repo.UpdateEventDate(ctx, link.LinkID, newDate); err != nil {
		s.log.WithError(err).Error("updating event date failed", map[string]interface{}{"link_id": link.LinkID})
	} else {
		s.log.Info("event date updated", map[string]interface{}{
			"link_id":  link.LinkID,
			"link":     link.URL,
			"old_date": link.Date,
			"new_date": newDate,
		})
	}

	return &update, !deferred
}

// isIgnored reports whether the author matches an ignore filter.
func isIgnored(author string, filters []string) bool {
	for _, f := range filters {
		if strings.HasPrefix(f, ignorePrefix) && strings.TrimPrefix(f, ignorePrefix) == author {
			return true
		}
	}
	return false
}

// chunkLinks splits links into at most n contiguous chunks of roughly equal
// size.
func chunkLinks(links []model.LinkSnapshot, n int) [][]model.LinkSnapshot {
	if len(links) == 0 {
		return nil
	}
	size := len(links) / n
	if size < 1 {
		size = 1
	}
	var chunks [][]model.LinkSnapshot
	for start := 0; start < len(links); start += size {
		end := start + size
		if end > len(links) {
			end = len(links)
		}
		chunks = append(chunks, links[start:end])
	}
	return chunks
}
