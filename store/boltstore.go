package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/nulsoracles/librevdist-go/account"
)

var (
	bucketState  = []byte("state")
	bucketRounds = []byte("rounds")
)

var keyState = []byte("contract")

// BoltStore wraps a bbolt database for contract state and payout intent
// storage. Every Update commits atomically, which gives the engines their
// all-or-nothing durability.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketRounds} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// roundKey encodes a round id as an 8-byte big-endian key for sorted storage.
func roundKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// SaveState persists the full contract state snapshot.
func (s *BoltStore) SaveState(state *ContractState) error {
	if state == nil {
		return ErrNilParam
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := encodeGob(state)
		if err != nil {
			return fmt.Errorf("boltstore: encode state: %w", err)
		}
		if err := tx.Bucket(bucketState).Put(keyState, data); err != nil {
			return fmt.Errorf("boltstore: put state: %w", err)
		}
		return nil
	})
}

// LoadState returns the last saved snapshot, or ErrNoState.
func (s *BoltStore) LoadState() (*ContractState, error) {
	var state ContractState
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keyState)
		if data == nil {
			return ErrNoState
		}
		if err := decodeGob(data, &state); err != nil {
			return fmt.Errorf("boltstore: decode state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// BeginRound records a new payout intent round and assigns its ID from the
// bucket sequence.
func (s *BoltStore) BeginRound(pool, share *big.Int, members []account.Address) (*Round, error) {
	if pool == nil || share == nil {
		return nil, ErrNilParam
	}
	r := &Round{
		Pool:    new(big.Int).Set(pool),
		Share:   new(big.Int).Set(share),
		Members: append([]account.Address(nil), members...),
		Paid:    make([]bool, len(members)),
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRounds)
		id, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: round sequence: %w", err)
		}
		r.ID = id
		data, err := encodeGob(r)
		if err != nil {
			return fmt.Errorf("boltstore: encode round: %w", err)
		}
		if err := b.Put(roundKey(id), data); err != nil {
			return fmt.Errorf("boltstore: put round: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MarkPaid flags one leg of a round as transferred.
func (s *BoltStore) MarkPaid(id uint64, leg int) error {
	return s.updateRound(id, func(r *Round) error {
		if leg < 0 || leg >= len(r.Paid) {
			return ErrInvalidLeg
		}
		r.Paid[leg] = true
		return nil
	})
}

// CommitRound writes the state snapshot and the round's done flag inside
// one bolt transaction, so both land or neither does.
func (s *BoltStore) CommitRound(state *ContractState, id uint64) error {
	if state == nil {
		return ErrNilParam
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := encodeGob(state)
		if err != nil {
			return fmt.Errorf("boltstore: encode state: %w", err)
		}
		if err := tx.Bucket(bucketState).Put(keyState, data); err != nil {
			return fmt.Errorf("boltstore: put state: %w", err)
		}

		b := tx.Bucket(bucketRounds)
		raw := b.Get(roundKey(id))
		if raw == nil {
			return ErrRoundNotFound
		}
		var r Round
		if err := decodeGob(raw, &r); err != nil {
			return fmt.Errorf("boltstore: decode round: %w", err)
		}
		r.Done = true
		out, err := encodeGob(&r)
		if err != nil {
			return fmt.Errorf("boltstore: encode round: %w", err)
		}
		if err := b.Put(roundKey(id), out); err != nil {
			return fmt.Errorf("boltstore: put round: %w", err)
		}
		return nil
	})
}

// PendingRound returns the newest incomplete round, or ErrRoundNotFound.
func (s *BoltStore) PendingRound() (*Round, error) {
	var round *Round
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRounds).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Round
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("boltstore: decode round: %w", err)
			}
			if !r.Done {
				round = &r
				return nil
			}
		}
		return ErrRoundNotFound
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// updateRound loads, mutates and rewrites a round inside one transaction.
func (s *BoltStore) updateRound(id uint64, mutate func(*Round) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRounds)
		data := b.Get(roundKey(id))
		if data == nil {
			return ErrRoundNotFound
		}
		var r Round
		if err := decodeGob(data, &r); err != nil {
			return fmt.Errorf("boltstore: decode round: %w", err)
		}
		if err := mutate(&r); err != nil {
			return err
		}
		out, err := encodeGob(&r)
		if err != nil {
			return fmt.Errorf("boltstore: encode round: %w", err)
		}
		if err := b.Put(roundKey(id), out); err != nil {
			return fmt.Errorf("boltstore: put round: %w", err)
		}
		return nil
	})
}
