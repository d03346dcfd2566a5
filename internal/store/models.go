package store

import "time"

// HistoryEntry records the last watched position for one title. One row
// per content id, last-write-wins.
type HistoryEntry struct {
	ContentID    string    `gorm:"primaryKey;column:content_id" json:"id"`
	ContentType  string    `gorm:"not null" json:"type"`
	Title        string    `gorm:"not null" json:"title"`
	PosterPath   string    `gorm:"default:''" json:"posterPath"`
	BackdropPath string    `gorm:"default:''" json:"backdropPath"`
	LastSeason   int       `gorm:"default:0" json:"lastSeason,omitempty"`
	LastEpisode  int       `gorm:"default:0" json:"lastEpisode,omitempty"`
	TotalSeasons int       `gorm:"default:0" json:"totalSeasons,omitempty"`
	WatchedAt    time.Time `gorm:"index;default:CURRENT_TIMESTAMP" json:"watchedAt"`
}

// TableName overrides the table name
func (HistoryEntry) TableName() string {
	return "watch_history"
}

// ServerUnlock marks a locked server as opened by the user. Unlocks never
// expire.
type ServerUnlock struct {
	Name       string    `gorm:"primaryKey"`
	UnlockedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (ServerUnlock) TableName() string {
	return "unlocked_servers"
}

// Setting is a key-value row holding JSON blobs such as the preference
// document
type Setting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Setting) TableName() string {
	return "settings"
}

// Preferences is the persisted viewing preference document. The playback
// session reads it at start and never mutates it.
type Preferences struct {
	Quality         string `json:"quality"`
	Region          string `json:"region"`
	DownloadMode    bool   `json:"downloadMode"`
	PerformanceMode bool   `json:"performanceMode"`
}
