package history

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/factseek/factseek/internal/model"
)

// Key layout:
//
//	report:<id>                    full report body
//	index:<unixnano>:<id>          summary, small enough to list cheaply
//
// The index key embeds the generation time so a reverse prefix scan yields
// newest-first listing without ever touching report bodies.
const (
	reportPrefix = "report:"
	indexPrefix  = "index:"
)

// BadgerStore is the embedded report store
type BadgerStore struct {
	db *badger.DB
}

// Open opens the store at path. An empty path opens an in-memory store,
// useful for tests and for runs that do not want persistence.
func Open(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Put stores a report and its listing summary in one transaction. A re-check
// of the same id replaces both atomically: last write wins, and the
// claim/verdict pairing can never be half-replaced.
func (s *BadgerStore) Put(report *model.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("put report: missing id")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	summary, err := json.Marshal(report.Summarize())
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Drop the previous index entry when overwriting, so one report
		// never appears twice in a listing.
		if item, err := txn.Get(reportKey(report.ID)); err == nil {
			var old model.Report
			if data, err := item.ValueCopy(nil); err == nil && json.Unmarshal(data, &old) == nil {
				_ = txn.Delete(indexKey(&old))
			}
		}

		if err := txn.Set(reportKey(report.ID), body); err != nil {
			return err
		}
		return txn.Set(indexKey(report), summary)
	})
}

// Get retrieves one report by id, returning ErrNotFound on a miss
func (s *BadgerStore) Get(id string) (*model.Report, error) {
	var report model.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reportKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &report)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns report summaries, newest first, without loading bodies
func (s *BadgerStore) List() ([]model.ReportSummary, error) {
	var summaries []model.ReportSummary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(indexPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last index key
		seek := append([]byte(indexPrefix), 0xff)
		for it.Seek(seek); it.ValidForPrefix([]byte(indexPrefix)); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var summary model.ReportSummary
			if err := json.Unmarshal(data, &summary); err != nil {
				return err
			}
			summaries = append(summaries, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Close releases the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func reportKey(id string) []byte {
	return []byte(reportPrefix + id)
}

func indexKey(report *model.Report) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", indexPrefix, report.GeneratedAt.UnixNano(), report.ID))
}
