// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hazyhour/blazebot/internal/conf"
)

// Interface abstracts the underlying database implementation and defines the
// operations the trigger engine and voice coordinator need.
type Interface interface {
	Open() error
	Close() error

	// Guild settings
	GetGuildSettings(guildID string) (GuildSettings, error)
	SaveGuildSettings(settings *GuildSettings) error

	// Clip catalog and backup store
	AddClip(clip *CheerClip) error
	ListClips(guildID, category string) ([]CheerClip, error)
	ListAllClips() ([]CheerClip, error)
	GetClipByPath(path string) (*CheerClip, error)
	GetClipBackup(path string) ([]byte, error)
	SetClipBackup(path string, data []byte, contentType string) error

	// Trigger ledger
	WasTriggered(zone, dayKey string) (bool, error)
	MarkTriggered(zone, dayKey string) (bool, error)

	// Analytics
	IncrementMetric(guildID, metric string, delta int64) error
	GuildMetrics(guildID string) ([]GuildMetric, error)

	// Scheduled cheers
	AddScheduledCheer(cheer *ScheduledCheer) error
	ListEnabledScheduledCheers() ([]ScheduledCheer, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store instance based on the configured output.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// GetGuildSettings returns the settings row for a guild, creating it with
// defaults on first access.
func (ds *DataStore) GetGuildSettings(guildID string) (GuildSettings, error) {
	settings := GuildSettings{GuildID: guildID}
	if err := ds.DB.Where(GuildSettings{GuildID: guildID}).
		Attrs(defaultGuildSettings(guildID)).
		FirstOrCreate(&settings).Error; err != nil {
		return GuildSettings{}, newDatabaseError(err, "getting guild settings", "guild_id", guildID)
	}
	return settings, nil
}

func defaultGuildSettings(guildID string) GuildSettings {
	return GuildSettings{
		GuildID:             guildID,
		AudioCategory:       CategoryDefault,
		VoiceVolume:         0.8,
		PersonaMode:         "party",
		CooldownSeconds:     300,
		EnableGlobalTrigger: true,
		ReverbEnabled:       true,
	}
}

// SaveGuildSettings upserts the full settings row for a guild.
func (ds *DataStore) SaveGuildSettings(settings *GuildSettings) error {
	if err := ds.DB.Save(settings).Error; err != nil {
		return newDatabaseError(err, "saving guild settings", "guild_id", settings.GuildID)
	}
	return nil
}

// AddClip inserts a new clip row.
func (ds *DataStore) AddClip(clip *CheerClip) error {
	if err := ds.DB.Create(clip).Error; err != nil {
		return newDatabaseError(err, "adding clip", "path", clip.Path)
	}
	return nil
}

// ListClips returns the clips visible to a guild: its own rows plus shared
// rows with a nil guild id. An empty category matches every category.
func (ds *DataStore) ListClips(guildID, category string) ([]CheerClip, error) {
	var clips []CheerClip
	query := ds.DB.Where("guild_id = ? OR guild_id IS NULL", guildID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("created_at").Find(&clips).Error; err != nil {
		return nil, newDatabaseError(err, "listing clips", "guild_id", guildID)
	}
	return clips, nil
}

// ListAllClips returns every clip row regardless of owner.
func (ds *DataStore) ListAllClips() ([]CheerClip, error) {
	var clips []CheerClip
	if err := ds.DB.Order("created_at").Find(&clips).Error; err != nil {
		return nil, newDatabaseError(err, "listing all clips")
	}
	return clips, nil
}

// GetClipByPath returns the clip stored under path, or nil if none exists.
func (ds *DataStore) GetClipByPath(path string) (*CheerClip, error) {
	var clip CheerClip
	err := ds.DB.Where("path = ?", path).First(&clip).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, newDatabaseError(err, "getting clip by path", "path", path)
	}
	return &clip, nil
}

// GetClipBackup returns the cached backup payload for a clip path, or nil if
// no backup has been captured yet.
func (ds *DataStore) GetClipBackup(path string) ([]byte, error) {
	var clip CheerClip
	err := ds.DB.Select("backup_data").Where("path = ?", path).First(&clip).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, newDatabaseError(err, "getting clip backup", "path", path)
	}
	if len(clip.BackupData) == 0 {
		return nil, nil
	}
	return clip.BackupData, nil
}

// SetClipBackup attaches or refreshes the backup payload for a clip path.
func (ds *DataStore) SetClipBackup(path string, data []byte, contentType string) error {
	now := time.Now()
	result := ds.DB.Model(&CheerClip{}).Where("path = ?", path).Updates(map[string]any{
		"backup_data":         data,
		"backup_content_type": contentType,
		"backup_updated_at":   &now,
	})
	if result.Error != nil {
		return newDatabaseError(result.Error, "setting clip backup", "path", path)
	}
	return nil
}

// WasTriggered reports whether the (zone, dayKey) fact already exists.
func (ds *DataStore) WasTriggered(zone, dayKey string) (bool, error) {
	var count int64
	err := ds.DB.Model(&TriggerFact{}).
		Where("zone = ? AND day_key = ?", zone, dayKey).
		Count(&count).Error
	if err != nil {
		return false, newDatabaseError(err, "querying trigger ledger", "zone", zone)
	}
	return count > 0, nil
}

// MarkTriggered commits the (zone, dayKey) fact with insert-if-absent
// semantics. It returns true when this call inserted the fact, false when
// the fact already existed. The ON CONFLICT clause makes the claim atomic,
// so concurrent scanners cannot both win the same occurrence.
func (ds *DataStore) MarkTriggered(zone, dayKey string) (bool, error) {
	fact := TriggerFact{Zone: zone, DayKey: dayKey, FiredAt: time.Now()}
	result := ds.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&fact)
	if result.Error != nil {
		return false, newDatabaseError(result.Error, "committing trigger fact", "zone", zone)
	}
	return result.RowsAffected > 0, nil
}

// IncrementMetric adds delta to a named per-guild counter, creating the row
// when absent.
func (ds *DataStore) IncrementMetric(guildID, metric string, delta int64) error {
	row := GuildMetric{GuildID: guildID, Metric: metric, Count: delta}
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "metric"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + ?", delta)}),
	}).Create(&row).Error
	if err != nil {
		return newDatabaseError(err, "incrementing metric", "metric", metric)
	}
	return nil
}

// GuildMetrics returns all counters recorded for a guild, ordered by name.
func (ds *DataStore) GuildMetrics(guildID string) ([]GuildMetric, error) {
	var metrics []GuildMetric
	if err := ds.DB.Where("guild_id = ?", guildID).Order("metric").Find(&metrics).Error; err != nil {
		return nil, newDatabaseError(err, "listing guild metrics", "guild_id", guildID)
	}
	return metrics, nil
}

// AddScheduledCheer inserts a recurring cheer row.
func (ds *DataStore) AddScheduledCheer(cheer *ScheduledCheer) error {
	if err := ds.DB.Create(cheer).Error; err != nil {
		return newDatabaseError(err, "adding scheduled cheer", "guild_id", cheer.GuildID)
	}
	return nil
}

// ListEnabledScheduledCheers returns every enabled recurring cheer.
func (ds *DataStore) ListEnabledScheduledCheers() ([]ScheduledCheer, error) {
	var cheers []ScheduledCheer
	if err := ds.DB.Where("enabled = ?", true).Find(&cheers).Error; err != nil {
		return nil, newDatabaseError(err, "listing scheduled cheers")
	}
	return cheers, nil
}
