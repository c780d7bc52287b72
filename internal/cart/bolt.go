package cart

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var cartsBucket = []byte("carts")

type boltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (or creates) a bbolt file holding one cart per key.
// Carts survive process restarts the same way the browser cart survived
// page reloads.
func NewBoltStorage(path string) (Storage, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create carts bucket: %w", err)
	}

	return &boltStorage{db: db}, nil
}

func (b *boltStorage) Get(key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cartsBucket).Get([]byte(key))
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", key, err)
	}
	return data, nil
}

func (b *boltStorage) Put(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write cart %s: %w", key, err)
	}
	return nil
}

func (b *boltStorage) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", key, err)
	}
	return nil
}

func (b *boltStorage) Close() error {
	return b.db.Close()
}
