package catalog

import (
	"context"

	"storefront/internal/domain/sizes"
	"storefront/internal/domain/storage"
)

func (s *Service) CreateSize(ctx context.Context, name string) (*sizes.Size, error) {
	sz := &sizes.Size{SizeName: Normalize(name)}
	if sz.SizeName == "" {
		return nil, validationError("sizeName is required")
	}
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		return tx.Sizes.Create(ctx, sz)
	})
	if err != nil {
		return nil, err
	}
	return sz, nil
}

func (s *Service) ListSizes(ctx context.Context) ([]*sizes.Size, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	list, err := s.store.Repos().Sizes.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// DeleteSize removes the size and strips its id from every variant that
// references it, in the same transaction.
func (s *Service) DeleteSize(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *storage.Repositories) error {
		using, err := tx.Products.ListBySize(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range using {
			for i := range p.Variants {
				p.Variants[i].RemoveSize(id)
			}
			if err := tx.Products.Update(ctx, p); err != nil {
				return err
			}
		}
		return tx.Sizes.Delete(ctx, id)
	})
}

// resolveSizes turns the size names of a variant into size ids. Unknown
// names are dropped with a warning naming the product's business id.
func (s *Service) resolveSizes(ctx context.Context, repo sizes.Store, businessID int64, raw any) ([]int64, error) {
	names := normalizeNames(sizeNames(raw))
	if len(names) == 0 {
		return []int64{}, nil
	}

	found, err := repo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(found))
	for _, sz := range found {
		byName[sz.SizeName] = sz.ID
	}

	ids := make([]int64, 0, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			s.logger.Warnw("dropping unknown size", "product", businessID, "size", n)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func sizeNames(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}
