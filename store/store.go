// Package store keeps the uplink history of the gateway in a SQLite
// database.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Uplink is one transmit request and its outcome.
type Uplink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Port      uint8     `json:"port"`
	Confirmed bool      `json:"confirmed"`
	Payload   string    `json:"payload"` // hex
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Margin    int       `json:"margin"`   // -1 without link check answer
	Gateways  int       `json:"gateways"` // -1 without link check answer
	RxPort    uint8     `json:"rx_port,omitempty"`
	RxData    string    `json:"rx_data,omitempty"` // hex
}

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("store closed")

// DefaultLimit caps RecentUplinks when no positive limit is given.
const DefaultLimit = 50

// Store persists uplinks. Its methods other than Close may be called
// concurrently.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates its schema. The
// parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Uplink{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveUplink inserts u and fills in its ID and creation time.
func (s *Store) SaveUplink(u *Uplink) error {
	if s.db == nil {
		return ErrClosed
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("failed to save uplink: %w", err)
	}
	return nil
}

// RecentUplinks returns up to limit uplinks, newest first.
func (s *Store) RecentUplinks(limit int) ([]Uplink, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var uplinks []Uplink
	err := s.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&uplinks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uplinks: %w", err)
	}
	return uplinks, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
