package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/domectrl/pidreg/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketRegulatorState   = "regulatorState"
	BucketRegulatorHistory = "regulatorHistory"
)

// RegulatorState is the persisted runtime state of a regulator.
// Values that were NaN at save time are stored as nil.
type RegulatorState struct {
	Enabled    bool      `json:"enabled"`
	LastInput  *float64  `json:"lastInput"`
	LastOutput *float64  `json:"lastOutput"`
	SavedAt    time.Time `json:"savedAt"`
}

// HistoryEntry is a single persisted cycle sample.
type HistoryEntry struct {
	Time   time.Time `json:"time"`
	Input  float64   `json:"input"`
	Output float64   `json:"output"`
	Error  float64   `json:"error"`
}

type Persistence interface {
	Init() error

	SaveRegulatorState(reg regulator.Regulator) error
	LoadRegulatorState(regulatorId string) (*RegulatorState, error)
	DeleteRegulatorState(regulatorId string) error

	AddHistoryEntry(regulatorId string, entry HistoryEntry, limit int) error
	LoadHistory(regulatorId string) ([]HistoryEntry, error)
	DeleteHistory(regulatorId string) error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	return &persistence{
		dbPath: dbPath,
	}
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveRegulatorState saves the runtime state of the given regulator to persistence
func (p persistence) SaveRegulatorState(reg regulator.Regulator) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := reg.GetId()

	state := RegulatorState{
		Enabled:    reg.Enabled(),
		LastInput:  nanToNil(reg.LastInput()),
		LastOutput: nanToNil(reg.LastOutput()),
		SavedAt:    time.Now(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketRegulatorState))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		err = b.Put([]byte(key), data)
		return err
	})
}

// LoadRegulatorState loads the runtime state of a regulator from persistence
func (p persistence) LoadRegulatorState(regulatorId string) (*RegulatorState, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := regulatorId

	var state *RegulatorState
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRegulatorState))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &state)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved state for %s: %v", key, err)
			err := b.Delete([]byte(key))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", key, err)
			}
			return nil
		}

		return err
	})

	return state, err
}

func (p persistence) DeleteRegulatorState(regulatorId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := regulatorId

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRegulatorState))
		if b == nil {
			// no state bucket yet
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(key))
	})
}

// AddHistoryEntry appends a cycle sample to the history of the given
// regulator, discarding the oldest entries above the given limit
func (p persistence) AddHistoryEntry(regulatorId string, entry HistoryEntry, limit int) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := regulatorId

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketRegulatorHistory))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}

		var entries []HistoryEntry
		v := b.Get([]byte(key))
		if v != nil {
			err := json.Unmarshal(v, &entries)
			if err != nil {
				// if we cannot read the saved data, start over
				ui.Warning("Unable to unmarshal saved history for %s: %v", key, err)
				entries = nil
			}
		}

		entries = append(entries, entry)
		if limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// LoadHistory loads the cycle sample history of a regulator from persistence
func (p persistence) LoadHistory(regulatorId string) ([]HistoryEntry, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := regulatorId

	var entries []HistoryEntry
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRegulatorHistory))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &entries)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved history for %s: %v", key, err)
			err := b.Delete([]byte(key))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", key, err)
			}
			return nil
		}

		return err
	})

	return entries, err
}

func (p persistence) DeleteHistory(regulatorId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := regulatorId

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRegulatorHistory))
		if b == nil {
			// no history bucket yet
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(key))
	})
}

func nanToNil(value float64) *float64 {
	if math.IsNaN(value) {
		return nil
	}
	return &value
}
