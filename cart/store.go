package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"
	"autoparts-storefront/repository"
	"autoparts-storefront/utils"
)

// Store holds every session's cart. Each Dispatch is a whole read-modify-write of one cart.
type Store struct {
	mu    sync.Mutex
	repo  repository.StateRepositoryInterface
	onAdd func(lines int)
}

// NewStore creates a cart store persisting through repo
func NewStore(repo repository.StateRepositoryInterface) *Store {
	return &Store{repo: repo}
}

// OnAdd registers a hook called with the number of lines after each successful add
func (s *Store) OnAdd(fn func(lines int)) {
	s.onAdd = fn
}

// Lines returns owner's cart
func (s *Store) Lines(ctx context.Context, owner string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, owner)
}

// Dispatch applies actions in order to owner's cart and persists the result once
func (s *Store) Dispatch(ctx context.Context, owner string, actions ...Action) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		lines = Reduce(lines, a)
	}

	if err := s.save(ctx, owner, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Add merges lines into owner's cart in one write
func (s *Store) Add(ctx context.Context, owner string, lines ...models.CartLine) error {
	actions := make([]Action, 0, len(lines))
	for _, l := range lines {
		actions = append(actions, Add(l))
	}
	if _, err := s.Dispatch(ctx, owner, actions...); err != nil {
		return err
	}
	if s.onAdd != nil {
		s.onAdd(len(lines))
	}
	return nil
}

// Summary returns owner's cart with its item count and subtotal
func (s *Store) Summary(ctx context.Context, owner string) (models.CartResponse, error) {
	lines, err := s.Lines(ctx, owner)
	if err != nil {
		return models.CartResponse{}, err
	}
	return Response(lines), nil
}

// Response builds the cart response body for lines
func Response(lines []models.CartLine) models.CartResponse {
	if lines == nil {
		lines = []models.CartLine{}
	}
	count, subtotal := Summary(lines)
	return models.CartResponse{Items: lines, ItemCount: count, Subtotal: utils.Amount(subtotal)}
}

func (s *Store) load(ctx context.Context, owner string) ([]models.CartLine, error) {
	payload, err := s.repo.Load(ctx, owner, repository.KindCart)
	if errors.Is(err, repository.ErrStateNotFound) {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil || !valid(lines) {
		logging.S().Warnf("⚠️ Invalid cart data in storage for owner=%s, clearing...", owner)
		if err := s.repo.Delete(ctx, owner, repository.KindCart); err != nil {
			return nil, fmt.Errorf("failed to clear invalid cart: %w", err)
		}
		return []models.CartLine{}, nil
	}
	return lines, nil
}

func (s *Store) save(ctx context.Context, owner string, lines []models.CartLine) error {
	if len(lines) == 0 {
		if err := s.repo.Delete(ctx, owner, repository.KindCart); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.repo.Save(ctx, owner, repository.KindCart, payload); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func valid(lines []models.CartLine) bool {
	for _, l := range lines {
		if l.Quantity < 1 {
			return false
		}
	}
	return true
}
