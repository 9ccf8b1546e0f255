package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStateRepository keeps session state in an embedded Pebble store under "kind/owner" keys
type PebbleStateRepository struct {
	db *pebble.DB
}

// NewPebbleStateRepository opens (or creates) the store in dir
func NewPebbleStateRepository(dir string) (*PebbleStateRepository, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStateRepository{db: d}, nil
}

// Ensure PebbleStateRepository implements StateRepositoryInterface
var _ StateRepositoryInterface = (*PebbleStateRepository)(nil)

func stateKey(owner, kind string) []byte {
	return []byte(kind + "/" + owner)
}

// Close flushes and closes the store
func (p *PebbleStateRepository) Close() error { return p.db.Close() }

// Load returns the stored payload
func (p *PebbleStateRepository) Load(ctx context.Context, owner, kind string) ([]byte, error) {
	v, closer, err := p.db.Get(stateKey(owner, kind))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	defer closer.Close()

	return append([]byte(nil), v...), nil
}

// Save writes the payload and syncs the WAL
func (p *PebbleStateRepository) Save(ctx context.Context, owner, kind string, payload []byte) error {
	if err := p.db.Set(stateKey(owner, kind), payload, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Delete removes the payload
func (p *PebbleStateRepository) Delete(ctx context.Context, owner, kind string) error {
	if err := p.db.Delete(stateKey(owner, kind), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// Owners lists the owners that have a stored blob of kind
func (p *PebbleStateRepository) Owners(kind string) ([]string, error) {
	prefix := []byte(kind + "/")
	upper := append([]byte(kind), '/'+1)

	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s owners: %w", kind, err)
	}
	defer it.Close()

	var owners []string
	for it.First(); it.Valid(); it.Next() {
		owners = append(owners, string(it.Key()[len(prefix):]))
	}
	return owners, it.Error()
}
