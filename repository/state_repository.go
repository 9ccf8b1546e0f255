package repository

import (
	"context"
	"errors"
)

// Collections persisted per session owner
const (
	KindCart     = "cart"
	KindWishlist = "wishlist"
)

// ErrStateNotFound is returned when an owner has no stored blob of the requested kind
var ErrStateNotFound = errors.New("state not found")

// StateRepositoryInterface stores one opaque JSON blob per (owner, kind)
type StateRepositoryInterface interface {
	Load(ctx context.Context, owner, kind string) ([]byte, error)
	Save(ctx context.Context, owner, kind string, payload []byte) error
	Delete(ctx context.Context, owner, kind string) error
}
