package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"
)

var cursorKey = []byte("telegram:update_cursor")

// Cursor keeps the last consumed update id in a pebble database.
type Cursor struct {
	db *pebble.DB
}

func NewCursor(path string) (*Cursor, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("error creating cursor directory: %w", err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("error opening cursor store: %w", err)
	}

	log.Info().Str("path", path).Msg("opened cursor store")

	return &Cursor{db: db}, nil
}

// Load returns the stored cursor, or 0 when nothing was stored yet.
func (c *Cursor) Load() (int64, error) {
	v, closer, err := c.db.Get(cursorKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading cursor: %w", err)
	}
	defer closer.Close()

	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt cursor value of %d bytes", len(v))
	}

	return int64(binary.BigEndian.Uint64(v)), nil
}

func (c *Cursor) Save(cursor int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(cursor))

	if err := c.db.Set(cursorKey, buf, pebble.Sync); err != nil {
		return fmt.Errorf("error writing cursor: %w", err)
	}

	return nil
}

func (c *Cursor) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	return c.db.Close()
}
