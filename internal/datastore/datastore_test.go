package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhour/blazebot/internal/conf"
)

// newTestStore opens an in-memory SQLite store with migrations applied.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMarkTriggeredIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	inserted, err := store.MarkTriggered("America/New_York", "2026-08-28-AM")
	require.NoError(t, err)
	assert.True(t, inserted, "first commit should win the occurrence")

	inserted, err = store.MarkTriggered("America/New_York", "2026-08-28-AM")
	require.NoError(t, err)
	assert.False(t, inserted, "second commit for the same key must be a no-op")

	fired, err := store.WasTriggered("America/New_York", "2026-08-28-AM")
	require.NoError(t, err)
	assert.True(t, fired)

	// The PM occurrence of the same day is a distinct fact.
	fired, err = store.WasTriggered("America/New_York", "2026-08-28-PM")
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestGetGuildSettingsCreatesDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.GetGuildSettings("guild-1")
	require.NoError(t, err)
	assert.Equal(t, "guild-1", settings.GuildID)
	assert.Equal(t, CategoryDefault, settings.AudioCategory)
	assert.InDelta(t, 0.8, settings.VoiceVolume, 1e-9)
	assert.True(t, settings.EnableGlobalTrigger)

	// Mutations survive a round trip.
	settings.EnableGlobalTrigger = false
	settings.AnnounceChannelID = "chan-420"
	require.NoError(t, store.SaveGuildSettings(&settings))

	reloaded, err := store.GetGuildSettings("guild-1")
	require.NoError(t, err)
	assert.False(t, reloaded.EnableGlobalTrigger)
	assert.Equal(t, "chan-420", reloaded.AnnounceChannelID)
}

func TestClipBackupRoundTrip(t *testing.T) {
	store := newTestStore(t)

	guild := "guild-1"
	clip := &CheerClip{
		ID:       "clip-1",
		GuildID:  &guild,
		Category: CategoryDefault,
		Name:     "airhorn",
		Path:     "cheers/airhorn.mp3",
		Weight:   1,
		Source:   SourceUpload,
	}
	require.NoError(t, store.AddClip(clip))

	// No backup captured yet.
	data, err := store.GetClipBackup(clip.Path)
	require.NoError(t, err)
	assert.Nil(t, data)

	payload := []byte{0xff, 0xfb, 0x90, 0x64}
	require.NoError(t, store.SetClipBackup(clip.Path, payload, "audio/mpeg"))

	data, err = store.GetClipBackup(clip.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	stored, err := store.GetClipByPath(clip.Path)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "audio/mpeg", stored.BackupContentType)
	assert.NotNil(t, stored.BackupUpdatedAt)
}

func TestListClipsIncludesSharedRows(t *testing.T) {
	store := newTestStore(t)

	guild := "guild-1"
	other := "guild-2"
	require.NoError(t, store.AddClip(&CheerClip{ID: "a", GuildID: &guild, Category: CategoryDefault, Path: "a.mp3", Weight: 1, Source: SourceUpload}))
	require.NoError(t, store.AddClip(&CheerClip{ID: "b", GuildID: nil, Category: CategoryDefault, Path: "b.mp3", Weight: 1, Source: SourceBuiltin}))
	require.NoError(t, store.AddClip(&CheerClip{ID: "c", GuildID: &other, Category: CategoryDefault, Path: "c.mp3", Weight: 1, Source: SourceUpload}))
	require.NoError(t, store.AddClip(&CheerClip{ID: "d", GuildID: &guild, Category: CategoryCrazy, Path: "d.mp3", Weight: 1, Source: SourceUpload}))

	clips, err := store.ListClips(guild, CategoryDefault)
	require.NoError(t, err)
	require.Len(t, clips, 2)

	// Empty category matches all categories the guild can see.
	clips, err = store.ListClips(guild, "")
	require.NoError(t, err)
	assert.Len(t, clips, 3)
}

func TestIncrementMetricUpserts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.IncrementMetric("guild-1", "global_420_announcements", 1))
	require.NoError(t, store.IncrementMetric("guild-1", "global_420_announcements", 2))
	require.NoError(t, store.IncrementMetric("guild-1", "cheers_voice_played", 1))

	metrics, err := store.GuildMetrics("guild-1")
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "cheers_voice_played", metrics[0].Metric)
	assert.EqualValues(t, 1, metrics[0].Count)
	assert.Equal(t, "global_420_announcements", metrics[1].Metric)
	assert.EqualValues(t, 3, metrics[1].Count)
}

func TestScheduledCheers(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddScheduledCheer(&ScheduledCheer{
		ID: "s1", GuildID: "guild-1", ChannelID: "chan-1",
		Timezone: "Europe/Helsinki", HHMM: "16:20", Message: "ignite", Enabled: true,
	}))
	require.NoError(t, store.AddScheduledCheer(&ScheduledCheer{
		ID: "s2", GuildID: "guild-1", ChannelID: "chan-1",
		Timezone: "UTC", HHMM: "12:00", Message: "off", Enabled: false,
	}))

	cheers, err := store.ListEnabledScheduledCheers()
	require.NoError(t, err)
	require.Len(t, cheers, 1)
	assert.Equal(t, "16:20", cheers[0].HHMM)
}
