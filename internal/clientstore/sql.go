package clientstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yulishop/storefront/pkg/db/models"
	"github.com/yulishop/storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultPollInterval = 2 * time.Second

// SQLStore keeps slots in the client_store_entries table. Every write bumps a
// per-slot version; Poll compares versions against the last ones this store
// saw and reports the rest as external changes.
type SQLStore struct {
	db        *gorm.DB
	namespace string
	interval  time.Duration
	logg      *logger.Logger
	observers observers

	mu   sync.Mutex
	seen map[Key]int64
}

// NewSQLStore baselines the current versions so pre-existing rows are not
// reported as changes on the first poll.
func NewSQLStore(ctx context.Context, db *gorm.DB, namespace string, interval time.Duration, logg *logger.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, fmt.Errorf("namespace required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	s := &SQLStore{
		db:        db,
		namespace: namespace,
		interval:  interval,
		logg:      logg,
		seen:      map[Key]int64{},
	}
	versions, err := s.versions(ctx)
	if err != nil {
		return nil, err
	}
	s.seen = versions
	return s, nil
}

func (s *SQLStore) Get(ctx context.Context, key Key) ([]byte, error) {
	var entry models.ClientStoreEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND slot_key = ?", s.namespace, string(key)).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql get %s: %w", key, err)
	}
	if entry.Deleted {
		return nil, ErrNotFound
	}
	return []byte(entry.Value), nil
}

func (s *SQLStore) Set(ctx context.Context, key Key, value []byte) error {
	return s.write(ctx, key, string(value), false)
}

func (s *SQLStore) Delete(ctx context.Context, key Key) error {
	return s.write(ctx, key, "", true)
}

func (s *SQLStore) OnExternalChange(key Key, handler ChangeHandler) func() {
	return s.observers.add(key, handler)
}

func (s *SQLStore) write(ctx context.Context, key Key, value string, deleted bool) error {
	now := time.Now().UTC()
	entry := models.ClientStoreEntry{
		Namespace: s.namespace,
		SlotKey:   string(key),
		Value:     value,
		Version:   1,
		Deleted:   deleted,
		UpdatedAt: now,
	}

	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "namespace"}, {Name: "slot_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      value,
				"deleted":    deleted,
				"updated_at": now,
				"version":    gorm.Expr("client_store_entries.version + 1"),
			}),
		}).Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.ClientStoreEntry{}).
			Where("namespace = ? AND slot_key = ?", s.namespace, string(key)).
			Select("version").
			Scan(&version).Error
	})
	if err != nil {
		return fmt.Errorf("sql write %s: %w", key, err)
	}

	s.mu.Lock()
	s.seen[key] = version
	s.mu.Unlock()
	return nil
}

func (s *SQLStore) versions(ctx context.Context) (map[Key]int64, error) {
	var rows []models.ClientStoreEntry
	if err := s.db.WithContext(ctx).
		Select("slot_key", "version").
		Where("namespace = ?", s.namespace).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sql list versions: %w", err)
	}
	out := make(map[Key]int64, len(rows))
	for _, row := range rows {
		out[Key(row.SlotKey)] = row.Version
	}
	return out, nil
}

// Poll notifies observers of every slot whose version moved since the last
// write or poll made by this store.
func (s *SQLStore) Poll(ctx context.Context) error {
	current, err := s.versions(ctx)
	if err != nil {
		return err
	}

	var changed []Key
	s.mu.Lock()
	for key, version := range current {
		if s.seen[key] != version {
			s.seen[key] = version
			changed = append(changed, key)
		}
	}
	s.mu.Unlock()

	for _, key := range changed {
		s.observers.notify(ctx, key)
	}
	return nil
}

// Run polls until ctx is cancelled.
func (s *SQLStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Poll(ctx); err != nil && s.logg != nil && ctx.Err() == nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "client store poll failed")
			}
		}
	}
}
