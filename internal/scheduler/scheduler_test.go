package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/persona"
	"github.com/hazyhour/blazebot/internal/platform"
	"github.com/hazyhour/blazebot/internal/timezone"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Ignore the go-cache janitor which we can't control
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

// fakePlatform records sent messages and serves a static guild list.
type fakePlatform struct {
	mu       sync.Mutex
	guilds   []platform.Guild
	sent     []sentMessage
	sendErrs map[string]error // keyed by channel id
}

type sentMessage struct {
	channelID string
	content   string
}

func (f *fakePlatform) Guilds(ctx context.Context) ([]platform.Guild, error) {
	return f.guilds, nil
}

func (f *fakePlatform) SendMessage(ctx context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErrs[channelID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

func (f *fakePlatform) JoinVoice(ctx context.Context, guildID, channelID string) (platform.VoiceSession, error) {
	return nil, assert.AnError
}

func (f *fakePlatform) NewPlayer() platform.Player { return nil }

func (f *fakePlatform) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.channelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// fakeVoice records autoplay requests.
type fakeVoice struct {
	mu    sync.Mutex
	calls []string // guild ids
	err   error
}

func (f *fakeVoice) PlayCheer(ctx context.Context, guildID, channelID, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, guildID)
	return f.err
}

// fakePublisher records published trigger events.
type fakePublisher struct {
	mu     sync.Mutex
	events []TriggerEvent
}

func (f *fakePublisher) PublishTriggerEvent(ctx context.Context, event TriggerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

// faultStore wraps a real store and fails ledger writes for chosen zones.
type faultStore struct {
	datastore.Interface
	mu        sync.Mutex
	failZones map[string]bool
}

func (f *faultStore) MarkTriggered(zone, dayKey string) (bool, error) {
	f.mu.Lock()
	fail := f.failZones[zone]
	f.mu.Unlock()
	if fail {
		return false, assert.AnError
	}
	return f.Interface.MarkTriggered(zone, dayKey)
}

func (f *faultStore) setFail(zone string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failZones[zone] = fail
}

// blockingStore parks the first scheduled-cheer listing until released.
type blockingStore struct {
	datastore.Interface
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) ListEnabledScheduledCheers() ([]datastore.ScheduledCheer, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.Interface.ListEnabledScheduledCheers()
}

func newTestStore(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"
	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSchedulerConfig() conf.SchedulerSettings {
	cfg := conf.SchedulerSettings{}
	cfg.GlobalTrigger.Enabled = true
	cfg.PepperDrop.Enabled = false
	cfg.PepperDrop.IntervalMinutes = 45
	cfg.PepperDrop.Chance = 1
	return cfg
}

// optInGuild persists settings that subscribe a guild to announcements.
func optInGuild(t *testing.T, store datastore.Interface, guildID, announceChannel, voiceChannel string) {
	t.Helper()
	settings, err := store.GetGuildSettings(guildID)
	require.NoError(t, err)
	settings.AnnounceChannelID = announceChannel
	settings.VoiceChannelID = voiceChannel
	require.NoError(t, store.SaveGuildSettings(&settings))
}

// utc420 is an instant at which UTC reads 04:20.
var utc420 = time.Date(2026, time.January, 15, 4, 20, 0, 0, time.UTC)

func TestGlobalTriggerAnnouncesOncePerOccurrence(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1", Name: "One"}}}
	voice := &fakeVoice{}
	publisher := &fakePublisher{}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "voice-1")

	s := New(store, client, catalog, voice, persona.NewCannedGenerator(), nil,
		publisher, testSchedulerConfig())

	s.RunTick(context.Background(), utc420)
	s.RunTick(context.Background(), utc420.Add(30*time.Second))

	sent := client.sentTo("chan-1")
	require.Len(t, sent, 1, "a second tick in the same minute must not re-announce")
	assert.Contains(t, sent[0].content, "IT IS 4:20 IN")

	assert.Equal(t, []string{"guild-1"}, voice.calls, "autoplay follows the announcement")
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "UTC", publisher.events[0].Zone)

	triggered, err := store.WasTriggered("UTC", timezone.DayKey(utc420))
	require.NoError(t, err)
	assert.True(t, triggered)
}

func TestGlobalTriggerMorningAndEveningAreDistinct(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1"}}}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "")

	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, testSchedulerConfig())

	s.RunTick(context.Background(), utc420)
	s.RunTick(context.Background(), utc420.Add(12*time.Hour))

	assert.Len(t, client.sentTo("chan-1"), 2, "04:20 and 16:20 are separate occurrences")
}

func TestGlobalTriggerSkipsOptedOutAndUnconfiguredGuilds(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{
		{ID: "guild-out"}, {ID: "guild-bare"}, {ID: "guild-in"},
	}}
	catalog := timezone.NewCatalog([]string{"UTC"})

	optInGuild(t, store, "guild-in", "chan-in", "")

	// guild-out has a channel but has switched the trigger off.
	settings, err := store.GetGuildSettings("guild-out")
	require.NoError(t, err)
	settings.AnnounceChannelID = "chan-out"
	settings.EnableGlobalTrigger = false
	require.NoError(t, store.SaveGuildSettings(&settings))

	// guild-bare keeps its defaults: opted in but no announce channel.

	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, testSchedulerConfig())
	s.RunTick(context.Background(), utc420)

	assert.Empty(t, client.sentTo("chan-out"))
	assert.Len(t, client.sentTo("chan-in"), 1)
}

func TestGlobalTriggerGuildFailureDoesNotBlockOthers(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{
		guilds:   []platform.Guild{{ID: "guild-1"}, {ID: "guild-2"}},
		sendErrs: map[string]error{"chan-1": assert.AnError},
	}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "")
	optInGuild(t, store, "guild-2", "chan-2", "")

	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, testSchedulerConfig())
	s.RunTick(context.Background(), utc420)

	assert.Len(t, client.sentTo("chan-2"), 1, "one guild's failure must not block the next")
}

func TestGlobalTriggerVoiceFailureKeepsAnnouncement(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1"}}}
	voice := &fakeVoice{err: assert.AnError}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "voice-1")

	s := New(store, client, catalog, voice, nil, nil, nil, testSchedulerConfig())
	s.RunTick(context.Background(), utc420)

	assert.Len(t, client.sentTo("chan-1"), 1)

	metrics, err := store.GuildMetrics("guild-1")
	require.NoError(t, err)
	for _, m := range metrics {
		assert.NotEqual(t, "global_420_voice_autoplays", m.Metric,
			"a failed autoplay must not be counted")
	}
}

func TestGlobalTriggerLedgerFailureIsolatesZone(t *testing.T) {
	store := &faultStore{
		Interface: newTestStore(t),
		failZones: map[string]bool{"UTC": true},
	}
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1"}}}
	// London reads 04:20 at the same instant as UTC in January.
	catalog := timezone.NewCatalog([]string{"UTC", "Europe/London"})
	optInGuild(t, store, "guild-1", "chan-1", "")

	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, testSchedulerConfig())
	s.RunTick(context.Background(), utc420)

	sent := client.sentTo("chan-1")
	require.Len(t, sent, 1, "the healthy zone must still announce")
	assert.Contains(t, sent[0].content, "LONDON")

	triggered, err := store.WasTriggered("UTC", timezone.DayKey(utc420))
	require.NoError(t, err)
	assert.False(t, triggered, "a failed ledger write must leave the occurrence unclaimed")

	// With the fault cleared, a later tick inside the minute claims the zone.
	store.setFail("UTC", false)
	s.RunTick(context.Background(), utc420.Add(30*time.Second))
	assert.Len(t, client.sentTo("chan-1"), 2, "the failed zone fires once the ledger recovers")

	triggered, err = store.WasTriggered("UTC", timezone.DayKey(utc420))
	require.NoError(t, err)
	assert.True(t, triggered)
}

func TestPepperDropRespectsIntervalAndChance(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1"}}}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "")

	cfg := testSchedulerConfig()
	cfg.GlobalTrigger.Enabled = false
	cfg.PepperDrop.Enabled = true
	cfg.PepperDrop.IntervalMinutes = 45
	cfg.PepperDrop.Chance = 1

	s := New(store, client, catalog, &fakeVoice{}, persona.NewCannedGenerator(),
		nil, nil, cfg)
	s.rng = func() float64 { return 0 } // roll always passes

	base := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	s.RunTick(context.Background(), base)
	require.Len(t, client.sentTo("chan-1"), 1)

	// Ten minutes later is inside the interval: nothing drops.
	s.RunTick(context.Background(), base.Add(10*time.Minute))
	assert.Len(t, client.sentTo("chan-1"), 1)

	// Past the interval the next roll runs again.
	s.RunTick(context.Background(), base.Add(46*time.Minute))
	assert.Len(t, client.sentTo("chan-1"), 2)
}

func TestPepperDropFailedRollConsumesInterval(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{guilds: []platform.Guild{{ID: "guild-1"}}}
	catalog := timezone.NewCatalog([]string{"UTC"})
	optInGuild(t, store, "guild-1", "chan-1", "")

	cfg := testSchedulerConfig()
	cfg.GlobalTrigger.Enabled = false
	cfg.PepperDrop.Enabled = true
	cfg.PepperDrop.Chance = 0.25

	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, cfg)
	s.rng = func() float64 { return 0.9 } // roll always fails

	base := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	s.RunTick(context.Background(), base)
	s.RunTick(context.Background(), base.Add(time.Minute))
	assert.Empty(t, client.sent)
}

func TestScheduledCheerFiresAtLocalTime(t *testing.T) {
	store := newTestStore(t)
	client := &fakePlatform{}
	catalog := timezone.NewCatalog([]string{"UTC", "Europe/Helsinki"})

	require.NoError(t, store.AddScheduledCheer(&datastore.ScheduledCheer{
		ID: "cheer-1", GuildID: "guild-1", ChannelID: "chan-1",
		Timezone: "Europe/Helsinki", HHMM: "18:00",
		Message: "Evening session.", Enabled: true,
	}))
	require.NoError(t, store.AddScheduledCheer(&datastore.ScheduledCheer{
		ID: "cheer-2", GuildID: "guild-1", ChannelID: "chan-2",
		Timezone: "Europe/Helsinki", HHMM: "18:00", Enabled: false,
	}))

	cfg := testSchedulerConfig()
	cfg.GlobalTrigger.Enabled = false
	s := New(store, client, catalog, &fakeVoice{}, nil, nil, nil, cfg)

	// Helsinki is UTC+2 in January, so 16:00 UTC is 18:00 local.
	now := time.Date(2026, time.January, 15, 16, 0, 0, 0, time.UTC)
	s.RunTick(context.Background(), now)

	sent := client.sentTo("chan-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Evening session.", sent[0].content)
	assert.Empty(t, client.sentTo("chan-2"), "disabled cheers never fire")

	// A different minute does not match.
	s.RunTick(context.Background(), now.Add(time.Minute))
	assert.Len(t, client.sentTo("chan-1"), 1)
}

func TestStartStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	catalog := timezone.NewCatalog([]string{"UTC"})
	s := New(store, &fakePlatform{}, catalog, &fakeVoice{}, nil, nil, nil,
		testSchedulerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestStartFinishesInFlightTickBeforeReturning(t *testing.T) {
	store := &blockingStore{
		Interface: newTestStore(t),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	catalog := timezone.NewCatalog([]string{"UTC"})

	cfg := testSchedulerConfig()
	cfg.GlobalTrigger.Enabled = false
	s := New(store, &fakePlatform{}, catalog, &fakeVoice{}, nil, nil, nil, cfg)
	s.tick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("scheduler never started a tick")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("Start returned while a tick was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after the tick drained")
	}
}
