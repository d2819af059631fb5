package catalog

import (
	"context"
	"testing"

	"storefront/internal/domain/storage/memory"
	"storefront/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDeleteSizeStripsVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")
	shirts := f.child(t, "Shirts", "Men")

	m, err := f.svc.CreateSize(ctx, "M")
	require.NoError(t, err)
	l, err := f.svc.CreateSize(ctx, "L")
	require.NoError(t, err)

	p, err := f.svc.AddProduct(ctx, ProductInput{
		BusinessID: 42,
		ItemName:   "Polo",
		CategoryID: &shirts.ID,
		Variants: []VariantInput{
			{SKU: "POLO-ML", Attributes: map[string]any{"size": []any{"m", "l"}}},
			{SKU: "POLO-L", Attributes: map[string]any{"size": "l"}},
		},
	}, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{m.ID, l.ID}, p.Variants[0].SizeIDs())

	require.NoError(t, f.svc.DeleteSize(ctx, l.ID))

	got, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{m.ID}, got.Variants[0].SizeIDs())
	assert.Empty(t, got.Variants[1].SizeIDs())
	assert.False(t, got.UsesSize(l.ID))

	assert.ErrorIs(t, f.svc.DeleteSize(ctx, l.ID), ErrNotFound)
}

func TestUnknownSizeWarningNamesBusinessID(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := memory.New()
	svc := NewService(store, upload.NewDiskStore(t.TempDir()), zap.New(core).Sugar())
	ctx := context.Background()

	_, err := svc.CreateParentCategory(ctx, ParentInput{Name: "Men"})
	require.NoError(t, err)
	shirts, err := svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts", Parents: []string{"Men"}})
	require.NoError(t, err)

	p, err := svc.AddProduct(ctx, ProductInput{
		BusinessID: 9001,
		ItemName:   "Henley",
		CategoryID: &shirts.ID,
		Variants:   []VariantInput{{SKU: "H-1", Attributes: map[string]any{"size": "xxl"}}},
	}, nil)
	require.NoError(t, err)
	require.NotEqual(t, p.BusinessID, p.ID)

	_, err = svc.AddVariant(ctx, p.ID, VariantInput{SKU: "H-2", Attributes: map[string]any{"size": "xxs"}})
	require.NoError(t, err)

	entries := logs.FilterMessage("dropping unknown size").All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.EqualValues(t, 9001, e.ContextMap()["product"])
	}
}
