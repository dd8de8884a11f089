// Package audio manages the cheer clip catalog and the durable backup of
// clip files.
package audio

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/logging"
	"github.com/hazyhour/blazebot/internal/observability/metrics"
	"github.com/hazyhour/blazebot/internal/securefs"
)

// Weights below this are clamped so every cataloged clip stays selectable.
const minWeight = 0.01

// DefaultContentType is assumed for clip payloads without a recorded type.
const DefaultContentType = "audio/mpeg"

// Catalog provides clip listing, registration and backup healing on top of
// the datastore and the sandboxed audio root.
type Catalog struct {
	ds      datastore.Interface
	sfs     *securefs.SecureFS
	metrics *metrics.VoiceMetrics
	log     *slog.Logger
}

// NewCatalog creates a clip catalog. metrics may be nil.
func NewCatalog(ds datastore.Interface, sfs *securefs.SecureFS, m *metrics.VoiceMetrics) *Catalog {
	log := logging.ForService("audio")
	if log == nil {
		log = slog.Default().With("service", "audio")
	}
	return &Catalog{ds: ds, sfs: sfs, metrics: m, log: log}
}

// ListCandidates returns the weighted candidate set for a guild and
// category. When the category has no clips the scope broadens to every
// category rather than failing outright. An empty result is a normal
// outcome the caller must handle.
func (c *Catalog) ListCandidates(guildID, category string) ([]datastore.CheerClip, error) {
	clips, err := c.ds.ListClips(guildID, category)
	if err != nil {
		return nil, err
	}
	if len(clips) == 0 {
		clips, err = c.ds.ListClips(guildID, "")
		if err != nil {
			return nil, err
		}
	}
	for i := range clips {
		if clips[i].Weight < minWeight {
			clips[i].Weight = minWeight
		}
	}
	return clips, nil
}

// AddClip registers a new clip for a guild. A nil guildID makes the clip
// shared. Non-positive weights are clamped.
func (c *Catalog) AddClip(guildID *string, category, name, path string, weight float64, source string) (*datastore.CheerClip, error) {
	rel, err := c.sfs.Relative(path)
	if err != nil {
		return nil, err
	}
	if weight < minWeight {
		weight = minWeight
	}
	clip := &datastore.CheerClip{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Category:  category,
		Name:      name,
		Path:      rel,
		Weight:    weight,
		Source:    source,
		CreatedAt: time.Now(),
	}
	if err := c.ds.AddClip(clip); err != nil {
		return nil, err
	}
	return clip, nil
}

// SeedBuiltin walks the prebuilt directory under the audio root and
// registers any audio file not yet in the catalog as a shared builtin clip
// for the given category subdirectory layout: prebuilt/<category>/<file>.
func (c *Catalog) SeedBuiltin() (int, error) {
	seeded := 0
	root := filepath.Join(c.sfs.BaseDir(), "prebuilt")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // a missing prebuilt tree is not an error
		}
		if d.IsDir() || !isAudioFile(d.Name()) {
			return nil
		}
		rel, err := c.sfs.Relative(path)
		if err != nil {
			return err
		}
		existing, err := c.ds.GetClipByPath(rel)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		category := categoryFromPath(rel)
		clip := &datastore.CheerClip{
			ID:        uuid.NewString(),
			GuildID:   nil,
			Category:  category,
			Name:      strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path:      rel,
			Weight:    1,
			Source:    datastore.SourceBuiltin,
			CreatedAt: time.Now(),
		}
		if err := c.ds.AddClip(clip); err != nil {
			return err
		}
		seeded++
		return nil
	})
	if err != nil {
		return seeded, errors.New(fmt.Errorf("seeding builtin clips: %w", err)).
			Component("audio").
			Category(errors.CategoryAudioFile).
			Build()
	}
	if seeded > 0 {
		c.log.Info("seeded builtin clips", "count", seeded)
	}
	return seeded, nil
}

// categoryFromPath maps prebuilt/<category>/file to a known category,
// defaulting to the default category for flat layouts.
func categoryFromPath(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) >= 3 {
		candidate := parts[1]
		for _, known := range datastore.Categories {
			if candidate == known {
				return candidate
			}
		}
	}
	return datastore.CategoryDefault
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".ogg", ".wav", ".opus":
		return true
	default:
		return false
	}
}
