package kvstore

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned on a cache miss. Values in here can disappear at
// any time; callers fall back to the durable store.
var ErrNotFound = errors.New("kvstore: not found")

const prefixTTL = 24 * time.Hour

type Store struct {
	db  *badger.DB
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{
		log: log,
	}

	opts := badger.DefaultOptions(dir)
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		s.log.Error("failed to open badger", zap.Error(err))
		return nil, err
	}
	s.db = db

	go func(s *Store) {
		gcTimer := time.NewTicker(time.Hour)
		for range gcTimer.C {
			if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Error("failed to run gc", zap.Error(err))
			}
		}
	}(s)

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (s *Store) get(key string) ([]byte, error) {
	var body []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return body, err
}

// SetOwner records the owner entry for a channel. Purely a read accelerator;
// the temp_channels table stays authoritative.
func (s *Store) SetOwner(cid string, e *OwnerEntry) error {
	enc, err := encodeGob(e)
	if err != nil {
		s.log.Error("failed to encode owner entry", zap.Error(err))
		return err
	}

	key := fmt.Sprintf("voiceowner:%v", cid)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), enc)
	})
}

func (s *Store) GetOwner(cid string) (*OwnerEntry, error) {
	body, err := s.get(fmt.Sprintf("voiceowner:%v", cid))
	if err != nil {
		return nil, err
	}

	var e OwnerEntry
	if err := decodeGob(body, &e); err != nil {
		s.log.Error("failed to decode owner entry", zap.Error(err))
		return nil, err
	}
	return &e, nil
}

func (s *Store) DeleteOwner(cid string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(fmt.Sprintf("voiceowner:%v", cid)))
	})
}

func (s *Store) SetPrefix(gid, prefix string) error {
	key := fmt.Sprintf("prefix:%v", gid)
	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       []byte(key),
			Value:     []byte(prefix),
			ExpiresAt: uint64(time.Now().Add(prefixTTL).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetPrefix(gid string) (string, error) {
	body, err := s.get(fmt.Sprintf("prefix:%v", gid))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *Store) DeletePrefix(gid string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(fmt.Sprintf("prefix:%v", gid)))
	})
}
