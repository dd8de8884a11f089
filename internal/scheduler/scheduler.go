// Package scheduler runs the minute-cadence tasks: the global 4:20 trigger
// scan with guild fan-out, pepper drops and scheduled cheers.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/logging"
	"github.com/hazyhour/blazebot/internal/observability/metrics"
	"github.com/hazyhour/blazebot/internal/persona"
	"github.com/hazyhour/blazebot/internal/platform"
	"github.com/hazyhour/blazebot/internal/timezone"
)

// CheerPlayer is the voice coordinator surface the fan-out needs.
type CheerPlayer interface {
	PlayCheer(ctx context.Context, guildID, channelID, category string) error
}

// TriggerEvent is the payload published for each zone fire.
type TriggerEvent struct {
	Zone        string    `json:"zone"`
	City        string    `json:"city"`
	CountryHint string    `json:"country_hint"`
	LocalDate   string    `json:"local_date"`
	DayKey      string    `json:"day_key"`
	FiredAt     time.Time `json:"fired_at"`
}

// EventPublisher delivers trigger events to an external broker. Optional.
type EventPublisher interface {
	PublishTriggerEvent(ctx context.Context, event TriggerEvent) error
}

// Guild settings barely change between ticks; cache them briefly so the
// fan-out does one read per guild per minute at most.
const settingsCacheTTL = time.Minute

// Scheduler drives the periodic tasks off one shared minute ticker.
type Scheduler struct {
	ds        datastore.Interface
	client    platform.Client
	catalog   *timezone.Catalog
	voice     CheerPlayer
	persona   persona.Generator
	metrics   *metrics.SchedulerMetrics
	publisher EventPublisher
	settings  *gocache.Cache
	cfg       conf.SchedulerSettings
	log       *slog.Logger
	rng       func() float64
	tick      time.Duration

	lastPepperDrop time.Time
}

// New creates a scheduler. metrics and publisher may be nil.
func New(ds datastore.Interface, client platform.Client, catalog *timezone.Catalog,
	voice CheerPlayer, gen persona.Generator, m *metrics.SchedulerMetrics,
	publisher EventPublisher, cfg conf.SchedulerSettings) *Scheduler {
	log := logging.ForService("scheduler")
	if log == nil {
		log = slog.Default().With("service", "scheduler")
	}
	return &Scheduler{
		ds:        ds,
		client:    client,
		catalog:   catalog,
		voice:     voice,
		persona:   gen,
		metrics:   m,
		publisher: publisher,
		settings:  gocache.New(settingsCacheTTL, 5*time.Minute),
		cfg:       cfg,
		log:       log,
		rng:       rand.Float64,
		tick:      time.Minute,
	}
}

// Start runs the minute loop until the context is canceled. It blocks, so
// callers run it in a goroutine. A tick already in flight when the context is
// canceled runs to completion before Start returns, which lets callers tear
// down shared dependencies safely once Start has returned.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.log.Info("scheduler started",
		"zones", len(s.catalog.Zones()),
		"global_trigger", s.cfg.GlobalTrigger.Enabled,
		"pepper_drop", s.cfg.PepperDrop.Enabled)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			s.RunTick(ctx, now)
		}
	}
}

// RunTick executes one scheduler tick at the given instant.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) {
	started := time.Now()

	if s.cfg.GlobalTrigger.Enabled {
		s.runGlobalTrigger(ctx, now)
	}
	if s.cfg.PepperDrop.Enabled {
		s.runPepperDrop(ctx, now)
	}
	s.runScheduledCheers(ctx, now)

	if s.metrics != nil {
		s.metrics.TickDuration.Observe(time.Since(started).Seconds())
	}
}

// guildSettings loads settings through the short TTL cache.
func (s *Scheduler) guildSettings(guildID string) (datastore.GuildSettings, error) {
	if cached, ok := s.settings.Get(guildID); ok {
		return cached.(datastore.GuildSettings), nil
	}
	settings, err := s.ds.GetGuildSettings(guildID)
	if err != nil {
		return datastore.GuildSettings{}, err
	}
	s.settings.SetDefault(guildID, settings)
	return settings, nil
}
