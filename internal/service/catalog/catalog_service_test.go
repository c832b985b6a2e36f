package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository/memory"
)

var alice = &models.Actor{UserID: "alice"}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore(nil)
	return NewService(store, nil), store
}

func requireIndexConsistent(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	index, err := store.ListNameIndex(ctx)
	require.NoError(t, err)

	want := make(map[string]string, len(items))
	for _, item := range items {
		key := models.NormalizeName(item.Name)
		_, dup := want[key]
		require.False(t, dup, "two items share key %q", key)
		want[key] = item.ID
	}

	got := make(map[string]string, len(index))
	for _, entry := range index {
		got[entry.Key] = entry.ItemID
	}
	require.Equal(t, want, got)
}

func TestCreateItemRejectsDuplicateNormalizedName(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: "Tomate", Unit: "kg"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "tomate", Unit: "un"})
	require.ErrorIs(t, err, models.ErrDuplicateName)

	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "  TOMATÉ ", Unit: "un"})
	require.ErrorIs(t, err, models.ErrDuplicateName)

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].CreatedBy)
	requireIndexConsistent(t, store)
}

func TestCreateItemRequiresActorAndFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, nil, models.ItemInput{Name: "Arroz", Unit: "kg"})
	require.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "   ", Unit: "kg"})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "Arroz"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit", verr.Field)

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRenameItemMovesIndex(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: "Cebola", Unit: "kg", Supplier: "Ceasa"})
	require.NoError(t, err)

	require.NoError(t, svc.RenameItem(ctx, alice, id, "Cebola Roxa"))
	requireIndexConsistent(t, store)

	item, err := svc.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cebola Roxa", item.Name)
	assert.Equal(t, "Ceasa", item.Supplier, "rename keeps other fields")

	// the old name is free again
	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "cebola", Unit: "kg"})
	require.NoError(t, err)
	requireIndexConsistent(t, store)
}

func TestRenameItemSameKeyUpdatesFieldsOnly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: "acucar", Unit: "kg"})
	require.NoError(t, err)

	require.NoError(t, svc.RenameItem(ctx, alice, id, "Açúcar"))

	item, err := svc.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Açúcar", item.Name)
	requireIndexConsistent(t, store)
}

func TestRenameItemToTakenNameFails(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: "Leite", Unit: "l"})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "Café", Unit: "kg"})
	require.NoError(t, err)

	err = svc.RenameItem(ctx, alice, a, "cafe")
	require.ErrorIs(t, err, models.ErrDuplicateName)

	item, err := svc.GetItem(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Leite", item.Name)
	requireIndexConsistent(t, store)
}

func TestRenameMissingItem(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.RenameItem(context.Background(), alice, "nope", "Sal")
	require.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestDeleteItemRemovesIndex(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: "Óleo", Unit: "l"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteItem(ctx, nil, id), models.ErrUnauthenticated)
	require.NoError(t, svc.DeleteItem(ctx, alice, id))
	requireIndexConsistent(t, store)

	_, err = svc.GetItem(ctx, id)
	require.ErrorIs(t, err, models.ErrItemNotFound)
	require.ErrorIs(t, svc.DeleteItem(ctx, alice, id), models.ErrItemNotFound)

	_, err = svc.CreateItem(ctx, alice, models.ItemInput{Name: "oleo", Unit: "l"})
	require.NoError(t, err)
}

func TestIndexStaysConsistentUnderRandomMutations(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	names := []string{"Tomate", "tomate", "Batata", "BATATA ", "Pão", "pao", "Sal", "Açaí", "acai", "Sal  grosso", "sal grosso"}

	var ids []string
	for step := 0; step < 300; step++ {
		name := names[rng.Intn(len(names))]
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			id, err := svc.CreateItem(ctx, alice, models.ItemInput{Name: name, Unit: "un"})
			if err == nil {
				ids = append(ids, id)
			} else {
				require.ErrorIs(t, err, models.ErrDuplicateName)
			}
		case op == 1:
			err := svc.RenameItem(ctx, alice, ids[rng.Intn(len(ids))], name)
			if err != nil {
				require.ErrorIs(t, err, models.ErrDuplicateName)
			}
		default:
			i := rng.Intn(len(ids))
			require.NoError(t, svc.DeleteItem(ctx, alice, ids[i]))
			ids = append(ids[:i], ids[i+1:]...)
		}
		requireIndexConsistent(t, store)
	}
}

func TestConcurrentCreatesOfSameNameYieldOneItem(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateItem(ctx, alice, models.ItemInput{Name: fmt.Sprintf("Farinha%s", []string{"", " "}[i%2]), Unit: "kg"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, models.ErrDuplicateName)
	}
	assert.Equal(t, 1, ok)
	requireIndexConsistent(t, store)
}

func TestListItemsSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []models.ItemInput{
		{Name: "Feijão preto", Unit: "kg", Supplier: "Atacadão"},
		{Name: "Arroz", Unit: "kg", Buyer: "João"},
		{Name: "Detergente", Unit: "un"},
	} {
		_, err := svc.CreateItem(ctx, alice, in)
		require.NoError(t, err)
	}

	all, err := svc.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.ListItems(ctx, "FEIJAO")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Feijão preto", found[0].Name)

	found, err = svc.ListItems(ctx, "joao")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Arroz", found[0].Name)
}

func TestCreateAndListStores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateStore(ctx, alice, "Loja Centro", "")
	require.ErrorIs(t, err, models.ErrValidation)

	b, err := svc.CreateStore(ctx, alice, "Zona Sul", " zs1 ")
	require.NoError(t, err)
	assert.Equal(t, "ZS1", b.Code)
	_, err = svc.CreateStore(ctx, alice, "Centro", "ct")
	require.NoError(t, err)

	stores, err := svc.ListStores(ctx)
	require.NoError(t, err)
	names := []string{stores[0].Name, stores[1].Name}
	assert.True(t, sort.StringsAreSorted(names))

	found, err := svc.FindStoreByCode(ctx, "zs1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	_, err = svc.GetStore(ctx, "missing")
	require.ErrorIs(t, err, models.ErrStoreNotFound)
}
