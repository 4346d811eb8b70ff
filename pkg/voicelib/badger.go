package voicelib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces voice records so the database can hold other data.
const keyPrefix = "voice:"

// BadgerIndex is an Index backed by BadgerDB v4.
type BadgerIndex struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB index.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	InMemory bool

	// Logger receives badger warnings and errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// OpenBadger opens (or creates) a BadgerDB-backed index.
func OpenBadger(opts BadgerOptions) (*BadgerIndex, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("voicelib: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger: logger.With("component", "badger")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("voicelib: open index: %w", err)
	}
	return &BadgerIndex{db: db}, nil
}

func (b *BadgerIndex) Get(_ context.Context, id string) (*Voice, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("voicelib: get %s: %w", id, err)
	}
	return decodeVoice(val)
}

func (b *BadgerIndex) Put(_ context.Context, v *Voice) error {
	data, err := encodeVoice(v)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+v.ID), data)
	})
}

func (b *BadgerIndex) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// List returns every voice in key order, which is id order.
func (b *BadgerIndex) List(_ context.Context) ([]*Voice, error) {
	var out []*Voice
	prefix := []byte(keyPrefix)
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			v, err := decodeVoice(val)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("voicelib: list: %w", err)
	}
	return out, nil
}

func (b *BadgerIndex) Close() error {
	return b.db.Close()
}

var _ Index = (*BadgerIndex)(nil)

// badgerLogger routes badger output to slog, dropping debug and info
// messages.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(f, v...))
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(f, v...))
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
