package journal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// bidKeyPrefix namespaces bid records inside the database.
const bidKeyPrefix = "bid/"

// badgerJournal is the BadgerDB implementation of the Journal.
type badgerJournal struct {
	db *badger.DB
}

// NewBadgerJournal opens (or creates) a journal database at dbPath.
// An empty dbPath opens an in-memory database, useful for tests and dry runs.
func NewBadgerJournal(dbPath string) (Journal, error) {
	var opts badger.Options
	if dbPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dbPath)
	}
	// Badger's own logging is disabled to keep the app's logs clean.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerJournal{db: db}, nil
}

func bidKey(tokenID string) []byte {
	return []byte(bidKeyPrefix + tokenID)
}

// RecordBid persists a single bid record, keyed by token ID.
func (j *badgerJournal) RecordBid(rec *Record) error {
	if rec.TokenID == "" {
		return fmt.Errorf("bid record is missing a token ID")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bidKey(rec.TokenID), data)
	})
}

// HasBid reports whether a bid was ever recorded for the token.
func (j *badgerJournal) HasBid(tokenID string) (bool, error) {
	err := j.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(bidKey(tokenID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BidTokenIDs returns every token ID with a recorded bid.
func (j *badgerJournal) BidTokenIDs() ([]string, error) {
	var ids []string
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(bidKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Close gracefully closes the connection to the database.
func (j *badgerJournal) Close() error {
	return j.db.Close()
}
