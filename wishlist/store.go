package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"autoparts-storefront/logging"
	"autoparts-storefront/repository"
)

// Store keeps each session's wishlist: product ids in insertion order, no duplicates
type Store struct {
	mu   sync.Mutex
	repo repository.StateRepositoryInterface
}

// NewStore creates a wishlist store persisting through repo
func NewStore(repo repository.StateRepositoryInterface) *Store {
	return &Store{repo: repo}
}

// List returns owner's wishlist
func (s *Store) List(ctx context.Context, owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, owner)
}

// Contains reports whether id is on owner's wishlist
func (s *Store) Contains(ctx context.Context, owner, id string) (bool, error) {
	ids, err := s.List(ctx, owner)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, strings.TrimSpace(id)), nil
}

// Add appends id unless it is already present
func (s *Store) Add(ctx context.Context, owner, id string) ([]string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	return s.update(ctx, owner, func(ids []string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
}

// Remove drops id; removing a missing id is a no-op
func (s *Store) Remove(ctx context.Context, owner, id string) ([]string, error) {
	id = strings.TrimSpace(id)
	return s.update(ctx, owner, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(v string) bool { return v == id })
	})
}

func (s *Store) update(ctx context.Context, owner string, fn func([]string) []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids = fn(ids)

	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := s.repo.Save(ctx, owner, repository.KindWishlist, payload); err != nil {
		return nil, fmt.Errorf("failed to save wishlist: %w", err)
	}
	return ids, nil
}

func (s *Store) load(ctx context.Context, owner string) ([]string, error) {
	payload, err := s.repo.Load(ctx, owner, repository.KindWishlist)
	if errors.Is(err, repository.ErrStateNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		logging.S().Warnf("⚠️ Invalid wishlist data in storage for owner=%s, clearing...", owner)
		if err := s.repo.Delete(ctx, owner, repository.KindWishlist); err != nil {
			return nil, fmt.Errorf("failed to clear invalid wishlist: %w", err)
		}
		return []string{}, nil
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
