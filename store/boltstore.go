package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libstake-go/ledger"
)

var (
	bucketConfig        = []byte("config")
	bucketCollections   = []byte("collections")
	bucketStakings      = []byte("stakings")
	bucketOwnerStakings = []byte("owner_stakings")
	bucketMeta          = []byte("meta")

	keyConfig        = []byte("config")
	keyNextStakingID = []byte("next_staking_id")
)

// BoltStore persists ledger state in a bbolt database. Each View/Update maps
// onto one bbolt transaction, so a failed Update leaves the file untouched.
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
		for _, name := range [][]byte{bucketConfig, bucketCollections, bucketStakings, bucketOwnerStakings, bucketMeta} {
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

// View runs fn in a read-only bbolt transaction.
func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Update runs fn in a read-write bbolt transaction.
func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// idKey encodes a record id as an 8-byte big-endian key for sorted storage.
func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// ownerPrefix is the owner index prefix: owner || 0x00.
func ownerPrefix(owner string) []byte {
	p := make([]byte, len(owner)+1)
	copy(p, owner)
	return p
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

// boltTx implements Tx over a bbolt transaction.
type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) checkWritable() error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	return nil
}

func (t *boltTx) put(bucket, key []byte, v interface{}) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("boltstore: encode %s: %w", bucket, err)
	}
	if err := t.tx.Bucket(bucket).Put(key, data); err != nil {
		return fmt.Errorf("boltstore: put %s: %w", bucket, err)
	}
	return nil
}

func (t *boltTx) Config() (*ledger.Config, error) {
	data := t.tx.Bucket(bucketConfig).Get(keyConfig)
	if data == nil {
		return nil, ErrConfigNotFound
	}
	var cfg ledger.Config
	if err := decodeGob(data, &cfg); err != nil {
		return nil, fmt.Errorf("boltstore: decode config: %w", err)
	}
	return &cfg, nil
}

func (t *boltTx) PutConfig(cfg *ledger.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config", ErrNilParam)
	}
	return t.put(bucketConfig, keyConfig, cfg)
}

func (t *boltTx) Collection(address string) (*ledger.Collection, error) {
	data := t.tx.Bucket(bucketCollections).Get([]byte(address))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, address)
	}
	var c ledger.Collection
	if err := decodeGob(data, &c); err != nil {
		return nil, fmt.Errorf("boltstore: decode collection: %w", err)
	}
	return &c, nil
}

func (t *boltTx) PutCollection(c *ledger.Collection) error {
	if c == nil {
		return fmt.Errorf("%w: collection", ErrNilParam)
	}
	return t.put(bucketCollections, []byte(c.Address), c)
}

// Collections relies on bbolt's byte-wise key order, which for string keys is
// ascending lexical order.
func (t *boltTx) Collections() ([]*ledger.Collection, error) {
	var out []*ledger.Collection
	err := t.tx.Bucket(bucketCollections).ForEach(func(k, v []byte) error {
		var c ledger.Collection
		if err := decodeGob(v, &c); err != nil {
			return fmt.Errorf("boltstore: decode collection %q: %w", k, err)
		}
		out = append(out, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *boltTx) Staking(id uint64) (*ledger.Staking, error) {
	data := t.tx.Bucket(bucketStakings).Get(idKey(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %d", ErrStakingNotFound, id)
	}
	var s ledger.Staking
	if err := decodeGob(data, &s); err != nil {
		return nil, fmt.Errorf("boltstore: decode staking: %w", err)
	}
	return &s, nil
}

func (t *boltTx) PutStaking(s *ledger.Staking) error {
	if s == nil {
		return fmt.Errorf("%w: staking", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	key := idKey(s.ID)
	if data := t.tx.Bucket(bucketStakings).Get(key); data != nil {
		var prev ledger.Staking
		if err := decodeGob(data, &prev); err != nil {
			return fmt.Errorf("boltstore: decode staking: %w", err)
		}
		if prev.Owner != s.Owner {
			return fmt.Errorf("%w: record %d", ErrOwnerChanged, s.ID)
		}
	}
	if err := t.put(bucketStakings, key, s); err != nil {
		return err
	}

	// Composite key: owner || 0x00 || id for prefix scanning in id order.
	compositeKey := append(ownerPrefix(s.Owner), key...)
	if err := t.tx.Bucket(bucketOwnerStakings).Put(compositeKey, []byte{}); err != nil {
		return fmt.Errorf("boltstore: put owner index: %w", err)
	}
	return nil
}

func (t *boltTx) StakingsByOwner(owner string) ([]*ledger.Staking, error) {
	prefix := ownerPrefix(owner)
	stakings := t.tx.Bucket(bucketStakings)

	var out []*ledger.Staking
	c := t.tx.Bucket(bucketOwnerStakings).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		data := stakings.Get(k[len(prefix):])
		if data == nil {
			continue // stale index entry
		}
		var s ledger.Staking
		if err := decodeGob(data, &s); err != nil {
			return nil, fmt.Errorf("boltstore: decode staking by owner: %w", err)
		}
		out = append(out, &s)
	}
	return out, nil
}

func (t *boltTx) NextStakingID() (uint64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	meta := t.tx.Bucket(bucketMeta)
	var id uint64
	if v := meta.Get(keyNextStakingID); v != nil {
		id = binary.BigEndian.Uint64(v)
	}
	if err := meta.Put(keyNextStakingID, idKey(id+1)); err != nil {
		return 0, fmt.Errorf("boltstore: bump staking id: %w", err)
	}
	return id, nil
}
