// Package memory keeps the catalog in process memory. It backs local
// development (DB_DRIVER=memory) and the test suites, and mirrors the
// semantics of the Postgres repositories, including the derived edge sets.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/sizes"
	"storefront/internal/domain/storage"
)

type edge struct {
	child  int64
	parent int64
}

type state struct {
	seq      int64
	tops     map[int64]categories.TopCategory
	parents  map[int64]categories.ParentCategory
	children map[int64]categories.ChildCategory
	edges    map[edge]struct{}
	products map[int64]products.Product
	sizes    map[int64]sizes.Size
}

func newState() *state {
	return &state{
		tops:     map[int64]categories.TopCategory{},
		parents:  map[int64]categories.ParentCategory{},
		children: map[int64]categories.ChildCategory{},
		edges:    map[edge]struct{}{},
		products: map[int64]products.Product{},
		sizes:    map[int64]sizes.Size{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.tops {
		c.tops[k] = v
	}
	for k, v := range s.parents {
		c.parents[k] = v
	}
	for k, v := range s.children {
		c.children[k] = v
	}
	for k := range s.edges {
		c.edges[k] = struct{}{}
	}
	for k, v := range s.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range s.sizes {
		c.sizes[k] = v
	}
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// source hands a repository the state it reads and writes.
type source interface {
	lock() *state
	unlock()
}

// txState is the private working copy of one transaction.
type txState struct {
	mu   sync.Mutex
	data *state
}

func (t *txState) lock() *state {
	t.mu.Lock()
	return t.data
}

func (t *txState) unlock() {
	t.mu.Unlock()
}

// Store implements the storage unit of work over process memory. Transactions
// are serialized, work on a copy of the state and publish it on success, so
// readers only ever see committed data.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) Repos() storage.Repositories {
	return reposOver(s)
}

func reposOver(src source) storage.Repositories {
	return storage.Repositories{
		Categories: &categoryRepo{src},
		Products:   &productRepo{src},
		Sizes:      &sizeRepo{src},
	}
}

func (s *Store) WithCatalogTx(ctx context.Context, fn func(tx *storage.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	tx := &txState{data: s.data.clone()}
	s.mu.Unlock()

	repos := reposOver(tx)
	if err := fn(&repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) lock() *state {
	s.mu.Lock()
	return s.data
}

func (s *Store) unlock() {
	s.mu.Unlock()
}

func now() time.Time {
	return time.Now().UTC()
}

func sortedIDs(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func cloneProduct(p products.Product) products.Product {
	if p.CategoryID != nil {
		id := *p.CategoryID
		p.CategoryID = &id
	}
	if p.FeaturedImage != nil {
		f := *p.FeaturedImage
		p.FeaturedImage = &f
	}
	p.GalleryImages = append([]string{}, p.GalleryImages...)
	variants := make([]products.Variant, len(p.Variants))
	for i, v := range p.Variants {
		if v.Attributes != nil {
			attrs := make(map[string]any, len(v.Attributes))
			for k, a := range v.Attributes {
				attrs[k] = a
			}
			v.Attributes = attrs
		}
		if v.VariantFeaturedImage != nil {
			f := *v.VariantFeaturedImage
			v.VariantFeaturedImage = &f
		}
		if v.VariantGalleryImages != nil {
			v.VariantGalleryImages = append([]string{}, v.VariantGalleryImages...)
		}
		variants[i] = v
	}
	p.Variants = variants
	return p
}
