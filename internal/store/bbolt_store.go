package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"overseer/internal/types"
)

var (
	bucketConsole = []byte("console")
	keyIdentity   = []byte("identity")
	keyUIState    = []byte("ui_state")
)

type bboltStateStore struct {
	db *bolt.DB
}

func NewBboltStateStore(path string) (StateStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("state db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketConsole)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltStateStore{db: db}, nil
}

func (s *bboltStateStore) Identity(ctx context.Context) (*types.ClientIdentity, error) {
	identity := &types.ClientIdentity{}
	found, err := s.load(ctx, keyIdentity, identity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return identity, nil
}

func (s *bboltStateStore) SaveIdentity(ctx context.Context, identity *types.ClientIdentity) error {
	if identity == nil {
		return errors.New("identity is required")
	}
	return s.save(ctx, keyIdentity, identity)
}

func (s *bboltStateStore) UIState(ctx context.Context) (*types.UIState, error) {
	state := &types.UIState{FollowTranscript: true}
	if _, err := s.load(ctx, keyUIState, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltStateStore) SaveUIState(ctx context.Context, state *types.UIState) error {
	if state == nil {
		return errors.New("state is required")
	}
	return s.save(ctx, keyUIState, state)
}

func (s *bboltStateStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *bboltStateStore) load(ctx context.Context, key []byte, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketConsole)
		if bucket == nil {
			return nil
		}
		data := bucket.Get(key)
		if len(data) == 0 {
			return nil
		}
		found = true
		return json.Unmarshal(data, out)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *bboltStateStore) save(ctx context.Context, key []byte, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketConsole)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}
