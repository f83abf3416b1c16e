// Package preferences keeps small per-user settings in an embedded key-value store.
package preferences

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const lastKitchenPrefix = "user/"

// Store persists preferences in badger. An empty dir keeps everything in memory.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	if strings.TrimSpace(dir) == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{logger: logger}).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences store: %w", err)
	}
	logger.Info("preferences.store.opened", "dir", dir, "in_memory", opts.InMemory)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetLastKitchen records kitchenID as the user's last selected kitchen.
func (s *Store) SetLastKitchen(userID, kitchenID uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(lastKitchenKey(userID), []byte(kitchenID.String()))
	})
}

// LastKitchen returns the stored kitchen, or ok=false when none was recorded.
func (s *Store) LastKitchen(userID uuid.UUID) (id uuid.UUID, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lastKitchenKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, perr := uuid.ParseBytes(val)
			if perr != nil {
				return perr
			}
			id = parsed
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// ClearLastKitchen forgets the user's stored kitchen.
func (s *Store) ClearLastKitchen(userID uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(lastKitchenKey(userID))
	})
}

func lastKitchenKey(userID uuid.UUID) []byte {
	return []byte(lastKitchenPrefix + userID.String() + "/last_kitchen")
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}
