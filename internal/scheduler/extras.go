package scheduler

import (
	"context"
	"time"
)

// runPepperDrop posts a surprise persona event to every announce-enabled
// guild. Drops are gated by the configured interval and then by a chance
// roll, so they stay rare and unpredictable.
func (s *Scheduler) runPepperDrop(ctx context.Context, now time.Time) {
	interval := time.Duration(s.cfg.PepperDrop.IntervalMinutes) * time.Minute
	if !s.lastPepperDrop.IsZero() && now.Sub(s.lastPepperDrop) < interval {
		return
	}
	// The roll consumes the interval either way; a failed roll waits the
	// full interval before the next one.
	s.lastPepperDrop = now
	if s.rng() >= s.cfg.PepperDrop.Chance {
		return
	}

	guilds, err := s.client.Guilds(ctx)
	if err != nil {
		s.log.Error("failed to enumerate guilds for pepper drop", "error", err)
		return
	}

	for _, guild := range guilds {
		settings, err := s.guildSettings(guild.ID)
		if err != nil {
			s.log.Error("failed to load guild settings for pepper drop",
				"guild_id", guild.ID, "error", err)
			continue
		}
		if settings.AnnounceChannelID == "" {
			continue
		}
		line := s.personaLine(ctx, settings.PersonaMode, "pepper_drop")
		if line == "" {
			line = "🌶️ Pepper Drop!"
		}
		if err := s.client.SendMessage(ctx, settings.AnnounceChannelID, line); err != nil {
			s.log.Error("failed to deliver pepper drop",
				"guild_id", guild.ID, "error", err)
			continue
		}
		if s.metrics != nil {
			s.metrics.PepperDrops.Inc()
		}
		if err := s.ds.IncrementMetric(guild.ID, "pepper_drop_events", 1); err != nil {
			s.log.Warn("failed to record pepper drop metric",
				"guild_id", guild.ID, "error", err)
		}
	}
}

// runScheduledCheers delivers recurring cheers whose zone-local wall clock
// matches the current minute.
func (s *Scheduler) runScheduledCheers(ctx context.Context, now time.Time) {
	cheers, err := s.ds.ListEnabledScheduledCheers()
	if err != nil {
		s.log.Error("failed to list scheduled cheers", "error", err)
		return
	}

	for _, cheer := range cheers {
		loc, err := s.catalog.Location(cheer.Timezone)
		if err != nil {
			s.log.Warn("scheduled cheer has an unresolvable timezone",
				"guild_id", cheer.GuildID, "timezone", cheer.Timezone)
			continue
		}
		if now.In(loc).Format("15:04") != cheer.HHMM {
			continue
		}

		message := cheer.Message
		if message == "" {
			message = s.personaLine(ctx, "", "420")
		}
		if err := s.client.SendMessage(ctx, cheer.ChannelID, message); err != nil {
			s.log.Error("failed to deliver scheduled cheer",
				"guild_id", cheer.GuildID, "error", err)
			continue
		}
		if s.metrics != nil {
			s.metrics.ScheduledCheers.Inc()
		}
		if err := s.ds.IncrementMetric(cheer.GuildID, "scheduled_cheers", 1); err != nil {
			s.log.Warn("failed to record scheduled cheer metric",
				"guild_id", cheer.GuildID, "error", err)
		}
	}
}
