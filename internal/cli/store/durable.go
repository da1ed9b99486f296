package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Entry — строка таблицы долговременного хранилища.
type Entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName фиксирует имя таблицы.
func (Entry) TableName() string { return "kv_entries" }

// DurableStore — долговременный уровень хранилища поверх GORM.
// По умолчанию это файл SQLite, для DSN вида postgres:// — Postgres.
type DurableStore struct {
	db *gorm.DB
}

var _ KeyValueStore = (*DurableStore)(nil)

// OpenDurable открывает (и при необходимости создаёт) хранилище и выполняет миграцию.
func OpenDurable(dsn string) (*DurableStore, error) {
	if dsn == "" {
		return nil, errors.New("empty durable store dsn")
	}
	var dial gorm.Dialector
	isSQLite := true
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dial = postgres.Open(dsn)
		isSQLite = false
	case strings.HasPrefix(dsn, "file:"):
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	default:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, err
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open durable store: %w", err)
	}
	if isSQLite {
		// одно соединение: параллельные записи иначе получают SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate durable store: %w", err)
	}
	return &DurableStore{db: db}, nil
}

func (s *DurableStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *DurableStore) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *DurableStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error
}

// Close закрывает соединение с БД.
func (s *DurableStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
