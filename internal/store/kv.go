package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// Prefixes for the KV namespaces
var (
	PrefixEntities = []byte("ent:")
	PrefixCursors  = []byte("cur:")
)

// kvState is shared between a store and its transactional views
type kvState struct {
	db       database.Database
	entities database.Database
	cursors  database.Database
	owned    bool

	// txMu serializes transactions
	txMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

type kvStore struct {
	*kvState
	json adapter.JSON

	// pending holds the writes of an open transaction, nil outside one
	pending map[string][]byte
}

// NewKVStore creates a store over a luxfi database. The store takes ownership of db.
func NewKVStore(db database.Database, json adapter.JSON) Store {
	return &kvStore{
		kvState: &kvState{
			db:       db,
			entities: prefixdb.New(PrefixEntities, db),
			cursors:  prefixdb.New(PrefixCursors, db),
			owned:    true,
		},
		json: json,
	}
}

// NewBadgerKVStore opens a BadgerDB database at path
func NewBadgerKVStore(path string, json adapter.JSON) (Store, error) {
	db, err := badgerdb.New(path, nil, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open badgerdb: %w", err)
	}
	return NewKVStore(db, json), nil
}

// NewMemoryKVStore creates an in-memory store
func NewMemoryKVStore(json adapter.JSON) Store {
	return NewKVStore(memdb.New(), json)
}

func entityKey(table, id string) []byte {
	return []byte(table + ":" + id)
}

func (s *kvStore) checkOpen() error {
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *kvStore) Get(ctx context.Context, id string, dst schema.Entity) (bool, error) {
	key := entityKey(dst.TableName(), id)

	var raw []byte
	if v, ok := s.pending[string(key)]; ok {
		raw = v
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if err := s.checkOpen(); err != nil {
			return false, err
		}

		v, err := s.entities.Get(key)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to get %s %s: %w", dst.TableName(), id, err)
		}
		raw = v
	}

	if err := s.json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s %s: %w", dst.TableName(), id, err)
	}
	return true, nil
}

func (s *kvStore) Set(ctx context.Context, entity schema.Entity) error {
	key := entityKey(entity.TableName(), entity.EntityID())
	raw, err := s.json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", entity.TableName(), entity.EntityID(), err)
	}

	if s.pending != nil {
		s.pending[string(key)] = raw
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.entities.Put(key, raw); err != nil {
		return fmt.Errorf("failed to set %s %s: %w", entity.TableName(), entity.EntityID(), err)
	}
	return nil
}

func (s *kvStore) GetAll(ctx context.Context, model schema.Entity, dst any) error {
	prefix := entityKey(model.TableName(), "")
	rows := make(map[string][]byte)

	s.mu.RLock()
	if err := s.checkOpen(); err != nil {
		s.mu.RUnlock()
		return err
	}
	iter := s.entities.NewIteratorWithPrefix(prefix)
	for iter.Next() {
		rows[string(iter.Key())] = slices.Clone(iter.Value())
	}
	iterErr := iter.Error()
	iter.Release()
	s.mu.RUnlock()
	if iterErr != nil {
		return fmt.Errorf("failed to iterate %s: %w", model.TableName(), iterErr)
	}

	byID := make(map[string][]byte, len(rows))
	for k, v := range rows {
		id := k
		if i := strings.Index(k, string(prefix)); i >= 0 {
			id = k[i+len(prefix):]
		}
		byID[id] = v
	}
	for k, v := range s.pending {
		if strings.HasPrefix(k, string(prefix)) {
			byID[k[len(prefix):]] = v
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	values := make([][]byte, 0, len(ids))
	for _, id := range ids {
		values = append(values, byID[id])
	}
	array := append(append([]byte("["), bytes.Join(values, []byte(","))...), ']')
	if err := s.json.Unmarshal(array, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", model.TableName(), err)
	}
	return nil
}

// WithTx buffers writes made by fn and commits them in a single batch
func (s *kvStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pending != nil {
		// already inside a transaction
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &kvStore{
		kvState: s.kvState,
		json:    s.json,
		pending: make(map[string][]byte),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.pending) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	batch := s.entities.NewBatch()
	for k, v := range tx.pending {
		if err := batch.Put([]byte(k), v); err != nil {
			return fmt.Errorf("failed to stage write %s: %w", k, err)
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *kvStore) GetBlockCursor(ctx context.Context, chain domain.Chain) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	v, err := s.cursors.Get([]byte(blockCursorKey(chain)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}
	return blockNumber, nil
}

func (s *kvStore) SetBlockCursor(ctx context.Context, chain domain.Chain, blockNumber uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	value := strconv.FormatUint(blockNumber, 10)
	if err := s.cursors.Put([]byte(blockCursorKey(chain)), []byte(value)); err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}
	return nil
}

func (s *kvStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.owned {
		return s.db.Close()
	}
	return nil
}
