// Command linktrack runs the link tracking services: the scrapper API, the
// Telegram bot, and the link check scheduler. Services are selected with
// --services and share one configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/linktrack/linktrack/internal/botapi"
	"github.com/linktrack/linktrack/internal/cache"
	"github.com/linktrack/linktrack/internal/config"
	"github.com/linktrack/linktrack/internal/database"
	"github.com/linktrack/linktrack/internal/kafka"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/notify"
	"github.com/linktrack/linktrack/internal/observability"
	"github.com/linktrack/linktrack/internal/scheduler"
	"github.com/linktrack/linktrack/internal/scrapper"
	"github.com/linktrack/linktrack/internal/server"
	"github.com/linktrack/linktrack/internal/source"
	"github.com/linktrack/linktrack/internal/storage"
	"github.com/linktrack/linktrack/internal/telegram"
	"github.com/linktrack/linktrack/internal/version"
)

const serviceName = "linktrack"

func main() {
	services := flag.String("services", "all", "comma-separated services to start: scrapper, bot, scheduler, or all")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(parseServices(*services)); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, "linktrack:", err)
		os.Exit(1)
	}
}

func parseServices(value string) map[string]bool {
	enabled := make(map[string]bool)
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "all" {
			return map[string]bool{"scrapper": true, "bot": true, "scheduler": true}
		}
		if name != "" {
			enabled[name] = true
		}
	}
	return enabled
}

func run(enabled map[string]bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging, serviceName)
	logger.SetGlobal(log)
	log.Info("starting", map[string]interface{}{
		"version":  version.String(),
		"services": keys(enabled),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := observability.Init(ctx, cfg.Observability, serviceName, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("telemetry shutdown failed")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// The scrapper API and the scheduler share storage, cache, and source
	// clients.
	var (
		repo      storage.LinkRepo
		linkCache *cache.LinkCache
		sources   *source.Registry
	)
	if enabled["scrapper"] || enabled["scheduler"] {
		db, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		repo, err = storage.New(db, log)
		if err != nil {
			return err
		}
		linkCache, err = cache.New(cfg.Cache, log)
		if err != nil {
			return err
		}
		if linkCache != nil {
			defer linkCache.Close()
		}
		sources = source.NewRegistry()
	}

	if enabled["scrapper"] {
		if err := startScrapper(gctx, g, cfg, repo, linkCache, sources, log); err != nil {
			return err
		}
	}
	if enabled["scheduler"] {
		if err := startScheduler(gctx, g, cfg, provider, repo, sources, log); err != nil {
			return err
		}
	}
	if enabled["bot"] {
		if err := startBot(gctx, g, cfg, log); err != nil {
			return err
		}
	}

	return g.Wait()
}

func startScrapper(ctx context.Context, g *errgroup.Group, cfg *config.Config,
	repo storage.LinkRepo, linkCache *cache.LinkCache, sources *source.Registry, log *logger.Logger) error {

	srv := server.New(cfg.Scrapper, log)
	srv.GinEngine().Use(observability.GinMiddleware(serviceName))
	scrapper.New(repo, linkCache, sources, cfg.Database.PageSize, log).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop(context.Background())
	})
	return nil
}

func startScheduler(ctx context.Context, g *errgroup.Group, cfg *config.Config,
	provider *observability.Provider, repo storage.LinkRepo, sources *source.Registry, log *logger.Logger) error {

	sender, err := notify.NewSender(cfg.Notify, cfg.Kafka, log)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(repo, sources, sender, cfg.Scheduler, cfg.Database.PageSize, log)
	if err != nil {
		return err
	}
	metrics, err := observability.NewMetrics(provider)
	if err != nil {
		return err
	}
	sched.SetMetrics(metrics)

	g.Go(func() error {
		return sched.Run(ctx)
	})
	return nil
}

func startBot(ctx context.Context, g *errgroup.Group, cfg *config.Config, log *logger.Logger) error {
	if err := cfg.Telegram.Validate(); err != nil {
		return err
	}

	scrapperClient := telegram.NewScrapperClient(cfg.Telegram.ScrapperURL, log)
	bot, err := telegram.New(cfg.Telegram, scrapperClient, log)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return bot.Run(ctx)
	})

	// Updates arrive over HTTP or Kafka depending on the push transport.
	switch cfg.Notify.Type {
	case notify.TransportHTTP:
		srv := server.New(cfg.Bot, log)
		srv.GinEngine().Use(observability.GinMiddleware(serviceName))
		botapi.New(bot, log).Register(srv.GinEngine())
		if err := srv.Start(ctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			return srv.Stop(context.Background())
		})
	case notify.TransportKafka:
		consumer, err := kafka.NewConsumer(cfg.Kafka, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer consumer.Close()
			return notify.ConsumeUpdates(ctx, consumer, func(ctx context.Context, update model.LinkUpdate) error {
				return bot.SendNotification(update.ID, update.Description)
			}, log)
		})
	}
	return nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
