package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/platform"
	"github.com/hazyhour/blazebot/internal/timezone"
)

// runGlobalTrigger scans every zone for the 4:20 condition, claims each new
// occurrence in the ledger and fans the won occurrences out to the guilds.
// A ledger write failure skips that zone for this tick; the occurrence stays
// unclaimed and the next tick inside the minute window can retry it.
func (s *Scheduler) runGlobalTrigger(ctx context.Context, now time.Time) {
	hits := s.catalog.Hits(now)
	if len(hits) == 0 {
		return
	}

	var fired []timezone.Hit
	for _, hit := range hits {
		inserted, err := s.ds.MarkTriggered(hit.Zone, hit.DayKey)
		if err != nil {
			if s.metrics != nil {
				s.metrics.LedgerFailures.Inc()
			}
			s.log.Error("trigger ledger write failed",
				"zone", hit.Zone, "day_key", hit.DayKey, "error", err)
			continue
		}
		if !inserted {
			// Already claimed, by this process on an earlier tick or by
			// another instance sharing the database.
			continue
		}
		fired = append(fired, hit)
		if s.metrics != nil {
			s.metrics.TriggerFires.Inc()
		}
		s.log.Info("4:20 trigger fired",
			"zone", hit.Zone, "city", hit.City, "day_key", hit.DayKey)
		s.publishHit(ctx, hit)
	}

	if len(fired) == 0 {
		return
	}
	s.fanOut(ctx, fired)
}

// publishHit sends the fire event to the broker, if one is configured.
func (s *Scheduler) publishHit(ctx context.Context, hit timezone.Hit) {
	if s.publisher == nil {
		return
	}
	event := TriggerEvent{
		Zone:        hit.Zone,
		City:        hit.City,
		CountryHint: hit.CountryHint,
		LocalDate:   hit.LocalDate,
		DayKey:      hit.DayKey,
		FiredAt:     time.Now(),
	}
	if err := s.publisher.PublishTriggerEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish trigger event", "zone", hit.Zone, "error", err)
	}
}

// fanOut delivers the fired occurrences to every opted-in guild. One guild's
// failure never blocks delivery to the others.
func (s *Scheduler) fanOut(ctx context.Context, hits []timezone.Hit) {
	guilds, err := s.client.Guilds(ctx)
	if err != nil {
		s.log.Error("failed to enumerate guilds for fan-out", "error", err)
		return
	}

	for _, guild := range guilds {
		settings, err := s.guildSettings(guild.ID)
		if err != nil {
			if s.metrics != nil {
				s.metrics.FanOutFailures.Inc()
			}
			s.log.Error("failed to load guild settings during fan-out",
				"guild_id", guild.ID, "error", err)
			continue
		}
		if !settings.EnableGlobalTrigger || settings.AnnounceChannelID == "" {
			continue
		}
		s.announceToGuild(ctx, guild, settings, hits)
	}
}

// announceToGuild posts the announcement for each fired zone and, when the
// guild has a voice channel configured, starts the celebration clip.
func (s *Scheduler) announceToGuild(ctx context.Context, guild platform.Guild,
	settings datastore.GuildSettings, hits []timezone.Hit) {
	for _, hit := range hits {
		message := s.announceMessage(ctx, settings.PersonaMode, hit)
		if err := s.client.SendMessage(ctx, settings.AnnounceChannelID, message); err != nil {
			if s.metrics != nil {
				s.metrics.FanOutFailures.Inc()
			}
			s.log.Error("failed to announce trigger to guild",
				"guild_id", guild.ID, "zone", hit.Zone, "error", err)
			continue
		}
		if s.metrics != nil {
			s.metrics.Announcements.Inc()
		}
		if err := s.ds.IncrementMetric(guild.ID, "global_420_announcements", 1); err != nil {
			s.log.Warn("failed to record announcement metric",
				"guild_id", guild.ID, "error", err)
		}
	}

	if settings.VoiceChannelID == "" {
		return
	}
	// Voice autoplay is best effort; a playback failure never fails the
	// announcement that already went out.
	if err := s.voice.PlayCheer(ctx, guild.ID, settings.VoiceChannelID, datastore.CategorySpecial); err != nil {
		s.log.Warn("trigger voice autoplay failed", "guild_id", guild.ID, "error", err)
		return
	}
	if err := s.ds.IncrementMetric(guild.ID, "global_420_voice_autoplays", 1); err != nil {
		s.log.Warn("failed to record autoplay metric", "guild_id", guild.ID, "error", err)
	}
}

// announceMessage renders the celebration text for one fired zone.
func (s *Scheduler) announceMessage(ctx context.Context, mode string, hit timezone.Hit) string {
	header := fmt.Sprintf("🔥 IT IS 4:20 IN %s, %s 🔥",
		strings.ToUpper(hit.City), strings.ToUpper(hit.CountryHint))
	line := s.personaLine(ctx, mode, "420")
	if line == "" {
		return header
	}
	return header + "\n" + line
}

// personaLine asks the persona generator for flavor text. Any failure
// degrades to an empty line rather than blocking the announcement.
func (s *Scheduler) personaLine(ctx context.Context, mode, topic string) string {
	if s.persona == nil {
		return ""
	}
	line, err := s.persona.Line(ctx, mode, topic)
	if err != nil {
		s.log.Debug("persona line generation failed", "topic", topic, "error", err)
		return ""
	}
	return line
}
