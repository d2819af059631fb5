package catalog

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/storage"
	"storefront/internal/domain/storage/memory"
	"storefront/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingCategories logs the order of the calls that guard child names.
type recordingCategories struct {
	categories.Store
	mu    *sync.Mutex
	calls *[]string
}

func (r recordingCategories) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls = append(*r.calls, call)
}

func (r recordingCategories) LockChildName(ctx context.Context, name string) error {
	r.record("lock:" + name)
	return r.Store.LockChildName(ctx, name)
}

func (r recordingCategories) FindChildrenByName(ctx context.Context, name string) ([]*categories.ChildCategory, error) {
	r.record("find:" + name)
	return r.Store.FindChildrenByName(ctx, name)
}

type recordingUnit struct {
	*memory.Store
	mu    sync.Mutex
	calls []string
}

func (u *recordingUnit) WithCatalogTx(ctx context.Context, fn func(tx *storage.Repositories) error) error {
	return u.Store.WithCatalogTx(ctx, func(tx *storage.Repositories) error {
		tx.Categories = recordingCategories{Store: tx.Categories, mu: &u.mu, calls: &u.calls}
		return fn(tx)
	})
}

func TestChildUniquenessCheckRunsUnderNameLock(t *testing.T) {
	unit := &recordingUnit{Store: memory.New()}
	svc := NewService(unit, upload.NewDiskStore(t.TempDir()), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := svc.CreateParentCategory(ctx, ParentInput{Name: "Men"})
	require.NoError(t, err)
	_, err = svc.CreateParentCategory(ctx, ParentInput{Name: "Women"})
	require.NoError(t, err)

	c, err := svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts", Parents: []string{"Men"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock:shirts", "find:shirts"}, unit.calls)

	unit.calls = nil
	rename := "Tops"
	_, err = svc.UpdateChildCategory(ctx, c.ID, ChildUpdate{Name: &rename, Parents: []string{"Women"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock:tops", "find:tops"}, unit.calls)
}

func TestConcurrentChildCreatesAllowOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts", Parents: []string{"Men"}})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, created)

	children, err := f.svc.ListChildCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}
