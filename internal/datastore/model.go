// model.go: this code defines the data model for the application
package datastore

import "time"

// Clip categories form a closed enumeration; the special occasion category
// is what the global trigger fan-out plays.
const (
	CategoryDefault    = "default"
	CategoryCrazy      = "crazy"
	CategoryKingPepper = "king_pepper"
	CategorySpecial    = "420_special"
)

// Categories lists every known clip category in selection order.
var Categories = []string{CategoryDefault, CategoryCrazy, CategoryKingPepper, CategorySpecial}

// Clip provenance values.
const (
	SourceBuiltin   = "builtin"
	SourceUpload    = "upload"
	SourceGenerated = "generated"
)

// GuildSettings holds per-guild configuration, created lazily with defaults
// on first access.
type GuildSettings struct {
	GuildID             string  `gorm:"primaryKey;size:32"`
	AnnounceChannelID   string  // text channel for 4:20 announcements, empty disables
	VoiceChannelID      string  // voice channel for autoplay, empty disables
	AudioCategory       string  `gorm:"default:default"` // preferred clip category
	VoiceVolume         float64 `gorm:"default:0.8"`
	PersonaMode         string  `gorm:"default:party"` // persona mode for generated text
	CooldownSeconds     int     `gorm:"default:300"`
	EnableGlobalTrigger bool    `gorm:"default:true"` // opt-in flag for the global 4:20 trigger
	DistortionEnabled   bool
	ReverbEnabled       bool `gorm:"default:true"`
	PitchSemitones      int
	UpdatedAt           time.Time
}

// CheerClip represents a weighted, categorized audio asset. BackupData holds
// the last-known binary content so a missing local file can be rehydrated.
type CheerClip struct {
	ID                string  `gorm:"primaryKey;size:36"`
	GuildID           *string `gorm:"index:idx_clips_guild_category;size:32"` // nil means shared across guilds
	Category          string  `gorm:"index:idx_clips_guild_category;size:32"`
	Name              string
	Path              string  `gorm:"uniqueIndex;not null"` // storage path relative to the audio root
	Weight            float64 `gorm:"default:1"`
	Source            string  `gorm:"size:16"` // builtin, upload or generated
	CreatedAt         time.Time
	BackupData        []byte     `gorm:"type:blob"`
	BackupContentType string     `gorm:"size:64"`
	BackupUpdatedAt   *time.Time
}

// TriggerFact records that a zone's 4:20 already fired for a day key. The
// composite primary key gives the ledger its insert-if-absent semantics.
type TriggerFact struct {
	Zone    string    `gorm:"primaryKey;size:64"`
	DayKey  string    `gorm:"primaryKey;size:16"` // local date plus AM/PM marker
	FiredAt time.Time `gorm:"not null"`
}

// GuildMetric is a named per-guild counter, mirrored by the Prometheus
// counters for operator-facing dashboards.
type GuildMetric struct {
	GuildID string `gorm:"primaryKey;size:32"`
	Metric  string `gorm:"primaryKey;size:64"`
	Count   int64  `gorm:"not null;default:0"`
}

// ScheduledCheer is a per-guild recurring announcement at a local wall-clock
// time in a chosen timezone.
type ScheduledCheer struct {
	ID        string `gorm:"primaryKey;size:36"`
	GuildID   string `gorm:"index;size:32"`
	ChannelID string `gorm:"size:32"`
	Timezone  string `gorm:"size:64"`
	HHMM      string `gorm:"size:5"` // local wall-clock time, e.g. "16:20"
	Message   string
	Enabled   bool `gorm:"index;default:true"`
	CreatedAt time.Time
}
