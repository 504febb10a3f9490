package badgercache

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core/schedule"
)

const statusKeyPrefix = "schedule-status:"

type statusEntry struct {
	Status    schedule.DocumentStatus `json:"status"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// StatusStore keeps the last document status chosen for each schedule.
type StatusStore struct {
	db *badger.DB
}

// Open opens (or creates) the store in dir; an empty dir keeps everything in memory.
func Open(dir string) (*StatusStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening status cache")
	}
	return &StatusStore{db: db}, nil
}

func (s *StatusStore) Close() error {
	return s.db.Close()
}

func statusKey(id schedule.ID) []byte {
	return []byte(statusKeyPrefix + id.String())
}

// GetStatus reports false when nothing is stored for id.
func (s *StatusStore) GetStatus(id schedule.ID) (schedule.DocumentStatus, bool, error) {
	var entry statusEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statusKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "reading status of %s", id)
	}
	return entry.Status, true, nil
}

func (s *StatusStore) SetStatus(id schedule.ID, status schedule.DocumentStatus) error {
	jsn, err := json.Marshal(statusEntry{Status: status, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding status")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(statusKey(id), jsn)
	})
	return errors.Wrapf(err, "storing status of %s", id)
}

// Statuses lists every stored status.
func (s *StatusStore) Statuses() (map[schedule.ID]schedule.DocumentStatus, error) {
	out := make(map[schedule.ID]schedule.DocumentStatus)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(statusKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := schedule.ID(string(item.Key())[len(statusKeyPrefix):])
			err := item.Value(func(val []byte) error {
				var entry statusEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				out[id] = entry.Status
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing statuses")
	}
	return out, nil
}
