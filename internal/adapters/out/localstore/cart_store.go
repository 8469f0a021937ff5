package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cartdom "agrifarm/internal/domain/cart"
)

// namespace matches the record key the web client used.
const namespace = "agrifarm-cart"

// CartStore implements cart.LocalStore on the filesystem: one JSON file
// per buyer holding the single namespaced record {items, timestamp}.
// This is the device-local tier; reads are best-effort by contract (the
// caller degrades to an empty cart on any error).
type CartStore struct {
	dir string
}

// NewCartStore creates the backing directory if needed.
func NewCartStore(dir string) (*CartStore, error) {
	d := strings.TrimSpace(dir)
	if d == "" {
		d = filepath.Join(os.TempDir(), namespace)
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: mkdir %s: %w", d, err)
	}
	return &CartStore{dir: d}, nil
}

func (s *CartStore) path(buyerID string) string {
	// buyer ids are opaque auth uids; keep the filename flat
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, buyerID)
	return filepath.Join(s.dir, namespace+"."+safe+".json")
}

// Load returns (nil, nil) when no record exists.
func (s *CartStore) Load(buyerID string) (*cartdom.LocalRecord, error) {
	raw, err := os.ReadFile(s.path(buyerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var rec cartdom.LocalRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("localstore: corrupt cart record: %w", err)
	}
	return &rec, nil
}

// Save writes the record atomically (temp file + rename) so a crashed
// write never leaves a half-written record to parse on next load.
func (s *CartStore) Save(buyerID string, rec cartdom.LocalRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	dst := s.path(buyerID)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
