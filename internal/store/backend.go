package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/amberpine/flicker/internal/config"
)

// Backend is the durable side of the persistence layer. Production code
// uses the sqlite-backed implementation; tests inject failing or in-memory
// fakes.
type Backend interface {
	UpsertHistory(e HistoryEntry) error
	ListHistory() ([]HistoryEntry, error)
	DeleteHistory(contentID string) error
	ClearHistory() error

	LoadUnlocks() (map[string]bool, error)
	SaveUnlock(name string) error

	LoadBlob(key string) ([]byte, error)
	SaveBlob(key string, data []byte) error

	Close() error
}

// sqlBackend stores everything in a local sqlite database via gorm
type sqlBackend struct {
	db *gorm.DB
}

// OpenSQL opens (and migrates) the sqlite database at the configured path
func OpenSQL(cfg *config.DatabaseConfig) (Backend, error) {
	dbDir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.MaxConnections / 2)
	}

	if cfg.WALMode {
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.AutoMigrate(&HistoryEntry{}, &ServerUnlock{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &sqlBackend{db: db}, nil
}

func (b *sqlBackend) UpsertHistory(e HistoryEntry) error {
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		UpdateAll: true,
	}).Create(&e).Error
}

func (b *sqlBackend) ListHistory() ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := b.db.Order("watched_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch watch history: %w", err)
	}
	return entries, nil
}

func (b *sqlBackend) DeleteHistory(contentID string) error {
	return b.db.Where("content_id = ?", contentID).Delete(&HistoryEntry{}).Error
}

func (b *sqlBackend) ClearHistory() error {
	return b.db.Where("1 = 1").Delete(&HistoryEntry{}).Error
}

func (b *sqlBackend) LoadUnlocks() (map[string]bool, error) {
	var unlocks []ServerUnlock
	if err := b.db.Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch unlocked servers: %w", err)
	}

	result := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		result[u.Name] = true
	}
	return result, nil
}

func (b *sqlBackend) SaveUnlock(name string) error {
	return b.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ServerUnlock{Name: name, UnlockedAt: time.Now()}).Error
}

func (b *sqlBackend) LoadBlob(key string) ([]byte, error) {
	var setting Setting
	err := b.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return []byte(setting.Value), nil
}

func (b *sqlBackend) SaveBlob(key string, data []byte) error {
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&Setting{Key: key, Value: string(data), UpdatedAt: time.Now()}).Error
}

func (b *sqlBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryBackend keeps everything in process memory. It backs degraded
// sessions and serves as the test fake.
type MemoryBackend struct {
	history map[string]HistoryEntry
	unlocks map[string]bool
	blobs   map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		history: make(map[string]HistoryEntry),
		unlocks: make(map[string]bool),
		blobs:   make(map[string][]byte),
	}
}

func (b *MemoryBackend) UpsertHistory(e HistoryEntry) error {
	b.history[e.ContentID] = e
	return nil
}

func (b *MemoryBackend) ListHistory() ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0, len(b.history))
	for _, e := range b.history {
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *MemoryBackend) DeleteHistory(contentID string) error {
	delete(b.history, contentID)
	return nil
}

func (b *MemoryBackend) ClearHistory() error {
	b.history = make(map[string]HistoryEntry)
	return nil
}

func (b *MemoryBackend) LoadUnlocks() (map[string]bool, error) {
	result := make(map[string]bool, len(b.unlocks))
	for k, v := range b.unlocks {
		result[k] = v
	}
	return result, nil
}

func (b *MemoryBackend) SaveUnlock(name string) error {
	b.unlocks[name] = true
	return nil
}

func (b *MemoryBackend) LoadBlob(key string) ([]byte, error) {
	return b.blobs[key], nil
}

func (b *MemoryBackend) SaveBlob(key string, data []byte) error {
	b.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
