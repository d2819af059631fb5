// Package catalog coordinates every relationship-changing operation on the
// category hierarchy, products and sizes. Each multi-entity mutation runs in
// a single storage transaction and updates both sides of a link.
package catalog

import (
	"context"
	"time"

	"storefront/internal/domain/storage"
	"storefront/internal/upload"

	"go.uber.org/zap"
)

// QueryTimeoutDuration bounds one catalog operation against the store.
const QueryTimeoutDuration = 5 * time.Second

// UnitOfWork is implemented by storage.Container and the in-memory store.
type UnitOfWork interface {
	Repos() storage.Repositories
	WithCatalogTx(ctx context.Context, fn func(tx *storage.Repositories) error) error
}

type Service struct {
	store  UnitOfWork
	files  upload.Store
	logger *zap.SugaredLogger
}

func NewService(store UnitOfWork, files upload.Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, files: files, logger: logger}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *storage.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()
	return translate(s.store.WithCatalogTx(ctx, fn))
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func sameSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

// minus returns the ids in a that are not in b.
func minus(a, b []int64) []int64 {
	drop := make(map[int64]bool, len(b))
	for _, id := range b {
		drop[id] = true
	}
	out := []int64{}
	for _, id := range a {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
