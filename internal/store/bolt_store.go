package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/simerr"
)

// bucketPatterns is the single bbolt bucket this store uses; patterns are
// keyed "companyID/patternID" so List can prefix-scan one company's rows.
var bucketPatterns = []byte("patterns")

// BoltPatternStore is a PatternStore backed by a bbolt database file.
type BoltPatternStore struct {
	db *bbolt.DB
}

// NewBoltPatternStore opens (creating if necessary) a bbolt database at
// path and ensures its bucket exists.
func NewBoltPatternStore(path string) (*BoltPatternStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open pattern store %q: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPatterns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init pattern store bucket: %w", err)
	}
	return &BoltPatternStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltPatternStore) Close() error {
	return s.db.Close()
}

func (s *BoltPatternStore) Save(companyID string, p domain.Pattern) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pattern %s: %w", p.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPatterns).Put(patternKey(companyID, p.ID), data)
	})
}

func (s *BoltPatternStore) Get(companyID, patternID string) (domain.Pattern, error) {
	var p domain.Pattern
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPatterns).Get(patternKey(companyID, patternID))
		if data == nil {
			return &simerr.NotFound{Kind: "pattern", ID: patternID}
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return domain.Pattern{}, err
	}
	return p, nil
}

func (s *BoltPatternStore) List(companyID string) ([]domain.Pattern, error) {
	var out []domain.Pattern
	prefix := []byte(companyID + "/")
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPatterns).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var p domain.Pattern
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal pattern at key %s: %w", k, err)
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

func (s *BoltPatternStore) Delete(companyID, patternID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPatterns)
		key := patternKey(companyID, patternID)
		if b.Get(key) == nil {
			return &simerr.NotFound{Kind: "pattern", ID: patternID}
		}
		return b.Delete(key)
	})
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
