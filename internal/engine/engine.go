// Package engine assembles the application components and runs the realtime
// trigger loop until a termination signal arrives.
package engine

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhour/blazebot/internal/audio"
	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/logging"
	"github.com/hazyhour/blazebot/internal/mqtt"
	"github.com/hazyhour/blazebot/internal/observability"
	"github.com/hazyhour/blazebot/internal/observability/metrics"
	"github.com/hazyhour/blazebot/internal/persona"
	"github.com/hazyhour/blazebot/internal/platform"
	"github.com/hazyhour/blazebot/internal/scheduler"
	"github.com/hazyhour/blazebot/internal/securefs"
	"github.com/hazyhour/blazebot/internal/timezone"
	"github.com/hazyhour/blazebot/internal/voice"
)

// RunRealtime wires the datastore, audio catalog, voice coordinator and
// scheduler together and blocks until SIGINT or SIGTERM.
func RunRealtime(settings *conf.Settings) error {
	log := logging.ForService("engine")
	if log == nil {
		log = slog.Default().With("service", "engine")
	}
	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		fileLog, closeLog, err := logging.NewFileLogger(settings.Main.Log, "engine", level)
		if err != nil {
			log.Warn("file logging unavailable, staying on the default handler",
				"path", settings.Main.Log.Path, "error", err)
		} else {
			log = fileLog
			defer func() {
				if err := closeLog(); err != nil {
					slog.Warn("closing engine log file failed", "error", err)
				}
			}()
		}
	}

	components, err := buildComponents(settings, log)
	if err != nil {
		return err
	}
	defer components.close(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.metrics != nil && settings.Metrics.Enabled {
		go func() {
			log.Info("metrics endpoint listening", "listen", settings.Metrics.Listen)
			if err := components.metrics.Serve(settings.Metrics.Listen); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	schedulerDone := make(chan struct{})
	go func() {
		components.scheduler.Start(ctx)
		close(schedulerDone)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig.String())
	cancel()
	// An in-flight tick may still hold the store and audio root; wait for the
	// scheduler to drain before the deferred teardown runs.
	<-schedulerDone
	return nil
}

// components holds everything RunRealtime needs to run and to tear down.
type components struct {
	store     datastore.Interface
	sfs       *securefs.SecureFS
	metrics   *observability.Metrics
	broker    mqtt.Client
	scheduler *scheduler.Scheduler
}

func buildComponents(settings *conf.Settings, log *slog.Logger) (*components, error) {
	store := datastore.New(settings)
	if store == nil {
		return nil, errors.Newf("no database output is enabled").
			Component("engine").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := store.Open(); err != nil {
		return nil, err
	}

	sfs, err := securefs.New(settings.Voice.AudioRoot)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var obs *observability.Metrics
	if settings.Metrics.Enabled {
		obs, err = observability.NewMetrics()
		if err != nil {
			_ = sfs.Close()
			_ = store.Close()
			return nil, err
		}
	}

	catalog := audio.NewCatalog(store, sfs, voiceMetrics(obs))
	if _, err := catalog.SeedBuiltin(); err != nil {
		log.Warn("seeding prebuilt clips failed", "error", err)
	}

	client := newPlatformClient(settings, log)
	coordinator := voice.NewCoordinator(store, client, catalog, voiceMetrics(obs), settings.Voice)

	zones := timezone.NewCatalog(settings.Scheduler.GlobalTrigger.Zones)

	var broker mqtt.Client
	var publisher scheduler.EventPublisher
	if settings.MQTT.Enabled {
		broker = mqtt.NewClient(settings)
		if err := broker.Connect(context.Background()); err != nil {
			// Publishing is best effort; the publisher reconnects on demand.
			log.Warn("initial MQTT connect failed", "error", err)
		}
		publisher = mqtt.NewTriggerPublisher(broker, settings.MQTT.Topic)
	}

	sched := scheduler.New(store, client, zones, coordinator,
		persona.NewCannedGenerator(), schedulerMetrics(obs), publisher,
		settings.Scheduler)

	return &components{
		store:     store,
		sfs:       sfs,
		metrics:   obs,
		broker:    broker,
		scheduler: sched,
	}, nil
}

func (c *components) close(log *slog.Logger) {
	if c.broker != nil {
		c.broker.Disconnect()
	}
	if c.sfs != nil {
		if err := c.sfs.Close(); err != nil {
			log.Warn("closing audio root failed", "error", err)
		}
	}
	if err := c.store.Close(); err != nil {
		log.Warn("closing datastore failed", "error", err)
	}
}

// newPlatformClient returns the real client when a token is configured and
// the logging dry-run client otherwise.
func newPlatformClient(settings *conf.Settings, log *slog.Logger) platform.Client {
	if settings.Platform.Token == "" {
		log.Info("no platform token configured, using dry-run client")
		return platform.NewLogClient(log.With("service", "platform"), nil)
	}
	// A token selects the real chat platform integration, which is linked in
	// by the hosting build. The engine only depends on the interface.
	log.Warn("platform token set but no platform integration is linked, using dry-run client")
	return platform.NewLogClient(log.With("service", "platform"), nil)
}

func voiceMetrics(obs *observability.Metrics) *metrics.VoiceMetrics {
	if obs == nil {
		return nil
	}
	return obs.Voice
}

func schedulerMetrics(obs *observability.Metrics) *metrics.SchedulerMetrics {
	if obs == nil {
		return nil
	}
	return obs.Scheduler
}
