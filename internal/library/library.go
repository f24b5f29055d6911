// Package library keeps a SQLite manifest of the files imports have written,
// so later runs can replace or clear them by name.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Faultbox/hytopia-importer/internal/export"
	"github.com/Faultbox/hytopia-importer/internal/logger"
)

// ErrClosed is returned by operations on a closed library.
var ErrClosed = errors.New("library is closed")

// Artifact is one manifest row. Names are unique: recording an artifact under
// an existing name replaces the previous row.
type Artifact struct {
	Name     string `gorm:"primaryKey"`
	Kind     string `gorm:"index"`
	Path     string
	ImportID string `gorm:"index"`
	Created  time.Time
}

// Library is an open manifest database.
type Library struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open opens or creates the manifest at path.
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening library %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Artifact{}); err != nil {
		return nil, fmt.Errorf("migrating library: %w", err)
	}

	l := &Library{db: db, log: logger.Named("library")}
	l.log.Debug("library opened", zap.String("path", path))
	return l, nil
}

// Record stores the artifacts of one import. A file previously recorded under
// the same name at a different path is deleted.
func (l *Library) Record(importID string, arts []export.Artifact) error {
	if l.db == nil {
		return ErrClosed
	}
	now := time.Now()
	return l.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range arts {
			var old Artifact
			err := tx.First(&old, "name = ?", a.Name).Error
			switch {
			case err == nil && old.Path != a.Path:
				l.removeFile(old.Path)
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("looking up %s: %w", a.Name, err)
			}

			row := Artifact{Name: a.Name, Kind: string(a.Kind), Path: a.Path, ImportID: importID, Created: now}
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("recording %s: %w", a.Name, err)
			}
		}
		l.log.Info("artifacts recorded", zap.String("import_id", importID), zap.Int("count", len(arts)))
		return nil
	})
}

// List returns the artifacts whose names start with prefix, sorted by name.
func (l *Library) List(prefix string) ([]Artifact, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	var all []Artifact
	if err := l.db.Order("name").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	// Prefixes are filtered here: '_' is a LIKE wildcard and every prefix has one.
	out := all[:0]
	for _, a := range all {
		if strings.HasPrefix(a.Name, prefix) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Clear deletes the artifacts, and their files, whose names start with any of
// prefixes. With no prefixes everything is cleared.
func (l *Library) Clear(prefixes ...string) (int, error) {
	all, err := l.List("")
	if err != nil {
		return 0, err
	}

	var names []string
	for _, a := range all {
		if !matches(a.Name, prefixes) {
			continue
		}
		l.removeFile(a.Path)
		names = append(names, a.Name)
	}
	if len(names) == 0 {
		return 0, nil
	}
	sort.Strings(names)
	if err := l.db.Where("name IN ?", names).Delete(&Artifact{}).Error; err != nil {
		return 0, fmt.Errorf("clearing artifacts: %w", err)
	}
	l.log.Info("artifacts cleared", zap.Int("count", len(names)))
	return len(names), nil
}

func matches(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func (l *Library) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.log.Warn("could not remove artifact file", zap.String("path", path), zap.Error(err))
	}
}

// Close releases the database.
func (l *Library) Close() error {
	if l.db == nil {
		return nil
	}
	sqlDB, err := l.db.DB()
	l.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
