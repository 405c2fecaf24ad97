// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package history

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/crc32"
	"sync/atomic"

	dgbadger "github.com/dgraph-io/badger/v4"

	"github.com/vireolabs/cyclegc/internal/history/badger"
)

// ErrCorrupted is returned when a stored entry fails its CRC32 check.
var ErrCorrupted = errors.New("history entry corrupted (CRC mismatch)")

// Store persists Records to an embedded badger/v4 database, one key per
// record under "history:{session}:{seq:016d}".
//
// Value format mirrors the teacher's journal: a CRC32 checksum precedes the
// gob-encoded payload so a truncated write is detected on read rather
// than silently misinterpreted.
type Store struct {
	db      *badger.DB
	session string
	seqNum  atomic.Uint64
}

// Config configures a Store.
type Config struct {
	// Path is the on-disk directory. Ignored when InMemory is set.
	Path string

	// InMemory opens an ephemeral store, useful for tests.
	InMemory bool

	// Session scopes keys so multiple collectors can share one database.
	// Defaults to "default".
	Session string
}

// Open opens a Store per cfg.
func Open(cfg Config) (*Store, error) {
	if cfg.Session == "" {
		cfg.Session = "default"
	}

	bcfg := badger.DefaultConfig()
	bcfg.InMemory = cfg.InMemory
	bcfg.Path = cfg.Path
	if cfg.InMemory {
		bcfg.SyncWrites = false
	}

	db, err := badger.Open(bcfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	s := &Store{db: db, session: cfg.Session}
	if err := s.initSeqNum(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sequence number: %w", err)
	}
	return s, nil
}

func (s *Store) keyPrefix() []byte {
	return []byte(fmt.Sprintf("history:%s:", s.session))
}

func (s *Store) key(seq uint64) []byte {
	return []byte(fmt.Sprintf("history:%s:%016d", s.session, seq))
}

func (s *Store) initSeqNum() error {
	prefix := s.keyPrefix()
	var maxSeq uint64

	err := s.db.WithReadTxn(context.Background(), func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := append(append([]byte(nil), prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		it.Seek(seekKey)

		if it.ValidForPrefix(prefix) {
			key := it.Item().Key()
			var seq uint64
			if _, err := fmt.Sscanf(string(key[len(prefix):]), "%016d", &seq); err == nil {
				maxSeq = seq
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.seqNum.Store(maxSeq)
	return nil
}

func encodeRecord(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}

	crc := crc32.ChecksumIEEE(buf.Bytes())
	out := make([]byte, 4+buf.Len())
	binary.BigEndian.PutUint32(out[:4], crc)
	copy(out[4:], buf.Bytes())
	return out, nil
}

func decodeRecord(data []byte) (Record, error) {
	if len(data) < 5 {
		return Record{}, fmt.Errorf("%w: entry too short", ErrCorrupted)
	}

	storedCRC := binary.BigEndian.Uint32(data[:4])
	payload := data[4:]
	if crc32.ChecksumIEEE(payload) != storedCRC {
		return Record{}, ErrCorrupted
	}

	var rec Record
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("gob decode: %w", err)
	}
	return rec, nil
}

// Append assigns the next sequence number to rec and persists it.
func (s *Store) Append(ctx context.Context, rec Record) (uint64, error) {
	seq := s.seqNum.Add(1)
	rec.SeqNum = seq

	data, err := encodeRecord(rec)
	if err != nil {
		return 0, err
	}

	err = s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		return txn.Set(s.key(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("append history record: %w", err)
	}
	return seq, nil
}

// List returns every stored record in ascending sequence order, silently
// skipping any that fail their CRC check rather than aborting.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	prefix := s.keyPrefix()
	var records []Record

	err := s.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rec, err := decodeRecord(val)
				if err != nil {
					if errors.Is(err, ErrCorrupted) {
						return nil
					}
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	return records, nil
}

// Prune deletes every record except the keepLast most recent ones.
func (s *Store) Prune(ctx context.Context, keepLast int) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	if keepLast < 0 {
		keepLast = 0
	}
	if len(records) <= keepLast {
		return nil
	}

	toDelete := records[:len(records)-keepLast]
	return s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		for _, rec := range toDelete {
			if err := txn.Delete(s.key(rec.SeqNum)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
