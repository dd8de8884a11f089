package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/securefs"
)

func newTestCatalog(t *testing.T) (*Catalog, datastore.Interface, *securefs.SecureFS) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"
	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	sfs, err := securefs.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sfs.Close() })

	return NewCatalog(store, sfs, nil), store, sfs
}

func TestListCandidatesBroadensEmptyCategory(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	guild := "guild-1"

	_, err := catalog.AddClip(&guild, datastore.CategoryDefault, "one", "cheers/one.mp3", 1, datastore.SourceUpload)
	require.NoError(t, err)
	_, err = catalog.AddClip(&guild, datastore.CategoryDefault, "three", "cheers/three.mp3", 3, datastore.SourceUpload)
	require.NoError(t, err)

	// No clips in "crazy": the scope broadens to every category.
	candidates, err := catalog.ListCandidates(guild, datastore.CategoryCrazy)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	var weights []float64
	for _, c := range candidates {
		weights = append(weights, c.Weight)
	}
	assert.ElementsMatch(t, []float64{1, 3}, weights)
}

func TestListCandidatesClampsWeights(t *testing.T) {
	catalog, store, _ := newTestCatalog(t)
	guild := "guild-1"

	// Write a zero-weight row directly, bypassing AddClip's clamp.
	require.NoError(t, store.AddClip(&datastore.CheerClip{
		ID: "z", GuildID: &guild, Category: datastore.CategoryDefault,
		Path: "zero.mp3", Weight: 0, Source: datastore.SourceUpload,
	}))

	candidates, err := catalog.ListCandidates(guild, datastore.CategoryDefault)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.GreaterOrEqual(t, candidates[0].Weight, minWeight)
}

func TestEnsureLocalRestoresFromBackup(t *testing.T) {
	catalog, store, sfs := newTestCatalog(t)
	guild := "guild-1"

	clip, err := catalog.AddClip(&guild, datastore.CategoryDefault, "horn", "cheers/horn.mp3", 1, datastore.SourceUpload)
	require.NoError(t, err)

	payload := []byte("mp3 payload")
	require.NoError(t, store.SetClipBackup(clip.Path, payload, "audio/mpeg"))

	abs, err := catalog.EnsureLocal(clip)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sfs.BaseDir(), "cheers", "horn.mp3"), abs)

	restored, readErr := os.ReadFile(abs)
	require.NoError(t, readErr)
	assert.Equal(t, payload, restored)
}

func TestEnsureLocalFailsWithoutBackup(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	guild := "guild-1"

	clip, err := catalog.AddClip(&guild, datastore.CategoryDefault, "gone", "cheers/gone.mp3", 1, datastore.SourceUpload)
	require.NoError(t, err)

	_, err = catalog.EnsureLocal(clip)
	assert.ErrorIs(t, err, errors.ErrFileMissing)
}

func TestEnsureLocalCapturesMissingBackup(t *testing.T) {
	catalog, store, sfs := newTestCatalog(t)
	guild := "guild-1"

	require.NoError(t, sfs.WriteFile("cheers/live.mp3", []byte("live bytes")))
	clip, err := catalog.AddClip(&guild, datastore.CategoryDefault, "live", "cheers/live.mp3", 1, datastore.SourceUpload)
	require.NoError(t, err)

	_, err = catalog.EnsureLocal(clip)
	require.NoError(t, err)

	backup, err := store.GetClipBackup(clip.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("live bytes"), backup)
}

func TestEnsureLocalBlocksTraversal(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)

	clip := &datastore.CheerClip{Path: "../../etc/passwd"}
	_, err := catalog.EnsureLocal(clip)
	assert.ErrorIs(t, err, errors.ErrPathBlocked)
}

func TestSeedBuiltinRegistersNewFiles(t *testing.T) {
	catalog, store, sfs := newTestCatalog(t)

	require.NoError(t, sfs.WriteFile("prebuilt/420_special/blaze.mp3", []byte("a")))
	require.NoError(t, sfs.WriteFile("prebuilt/readme.txt", []byte("not audio")))

	seeded, err := catalog.SeedBuiltin()
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)

	clip, err := store.GetClipByPath(filepath.Join("prebuilt", "420_special", "blaze.mp3"))
	require.NoError(t, err)
	require.NotNil(t, clip)
	assert.Equal(t, datastore.CategorySpecial, clip.Category)
	assert.Equal(t, datastore.SourceBuiltin, clip.Source)
	assert.Nil(t, clip.GuildID)

	// Re-seeding is idempotent.
	seeded, err = catalog.SeedBuiltin()
	require.NoError(t, err)
	assert.Zero(t, seeded)
}
