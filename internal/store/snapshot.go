package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
)

const (
	keyTickets   = "tickets"
	keyUsers     = "users"
	keySubjects  = "subjects"
	keyTheme     = "theme"
	keyAIEnabled = "ai_enabled"
)

// SnapshotStore persists the application snapshot and the small settings
// values as JSON blobs in a key-value store, one key per collection.
type SnapshotStore struct {
	kv           KV
	prefix       string
	legacyPrefix string
	logger       *zap.Logger
}

// NewSnapshotStore wraps a KV backend with the snapshot key layout.
func NewSnapshotStore(kv KV, cfg config.StoreConfig, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		kv:           kv,
		prefix:       cfg.KeyPrefix,
		legacyPrefix: cfg.LegacyPrefix,
		logger:       logger,
	}
}

func (s *SnapshotStore) key(name string) string {
	return s.prefix + name
}

func (s *SnapshotStore) legacyKey(name string) string {
	return s.legacyPrefix + name
}

// Load reads the persisted snapshot, migrating legacy-prefixed keys first and
// applying the repair pass. A repaired collection is written back immediately
// so the repair never re-triggers.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := s.migrateLegacyKeys(ctx); err != nil {
		return domain.Snapshot{}, fmt.Errorf("legacy key migration: %w", err)
	}

	snap := domain.Snapshot{
		Tickets:  []domain.Ticket{},
		Users:    []domain.User{},
		Subjects: []domain.Subject{},
	}

	if err := s.readJSON(ctx, s.key(keyTickets), &snap.Tickets); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.readJSON(ctx, s.key(keyUsers), &snap.Users); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.readJSON(ctx, s.key(keySubjects), &snap.Subjects); err != nil {
		return domain.Snapshot{}, err
	}

	repaired, changed := domain.RepairTickets(snap.Tickets)
	snap.Tickets = repaired
	if changed {
		s.logger.Info("repaired legacy tickets on load", zap.Int("count", len(repaired)))
		if err := s.writeJSON(ctx, s.key(keyTickets), snap.Tickets); err != nil {
			return domain.Snapshot{}, err
		}
	}
	return snap, nil
}

// Save writes the full snapshot. Called after every mutation; a failed write
// is reported to the caller, which logs it and carries on.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := s.writeJSON(ctx, s.key(keyTickets), snap.Tickets); err != nil {
		return err
	}
	if err := s.writeJSON(ctx, s.key(keyUsers), snap.Users); err != nil {
		return err
	}
	return s.writeJSON(ctx, s.key(keySubjects), snap.Subjects)
}

// Theme returns the persisted theme, defaulting to "light".
func (s *SnapshotStore) Theme(ctx context.Context) string {
	val, err := s.kv.Get(ctx, s.key(keyTheme))
	if err != nil || len(val) == 0 {
		return "light"
	}
	if string(val) == "dark" {
		return "dark"
	}
	return "light"
}

// SetTheme persists the theme value.
func (s *SnapshotStore) SetTheme(ctx context.Context, theme string) error {
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("store: invalid theme %q", theme)
	}
	return s.kv.Set(ctx, s.key(keyTheme), []byte(theme))
}

// AIEnabled returns the persisted advisory feature flag.
func (s *SnapshotStore) AIEnabled(ctx context.Context) bool {
	val, err := s.kv.Get(ctx, s.key(keyAIEnabled))
	if err != nil {
		return false
	}
	return string(val) == "true"
}

// SetAIEnabled persists the advisory feature flag.
func (s *SnapshotStore) SetAIEnabled(ctx context.Context, enabled bool) error {
	val := "false"
	if enabled {
		val = "true"
	}
	return s.kv.Set(ctx, s.key(keyAIEnabled), []byte(val))
}

// migrateLegacyKeys copies values from the old key prefix once, when the old
// set exists and the new one does not.
func (s *SnapshotStore) migrateLegacyKeys(ctx context.Context) error {
	if s.legacyPrefix == "" || s.legacyPrefix == s.prefix {
		return nil
	}
	legacy, err := s.kv.Get(ctx, s.legacyKey(keyTickets))
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.kv.Get(ctx, s.key(keyTickets)); err == nil {
		return nil
	} else if !errors.Is(err, ErrKeyNotFound) {
		return err
	}

	s.logger.Info("migrating legacy snapshot keys",
		zap.String("from", s.legacyPrefix), zap.String("to", s.prefix))

	if err := s.kv.Set(ctx, s.key(keyTickets), legacy); err != nil {
		return err
	}
	for _, name := range []string{keyUsers, keySubjects, keyTheme} {
		val, err := s.kv.Get(ctx, s.legacyKey(name))
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, s.key(name), val); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnapshotStore) readJSON(ctx context.Context, key string, dest any) error {
	val, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		// A corrupt collection is skipped rather than blocking startup.
		s.logger.Error("corrupt snapshot value ignored", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *SnapshotStore) writeJSON(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, encoded)
}
