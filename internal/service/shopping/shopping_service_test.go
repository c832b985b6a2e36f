package shopping

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/export"
	"github.com/mamadbah2/restock/internal/repository"
	"github.com/mamadbah2/restock/internal/repository/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(nil)
	require.NoError(t, store.WriteBatch(context.Background(), func(ctx context.Context, w repository.Writer) error {
		writes := []func() error{
			func() error { return w.PutStore(ctx, models.Store{ID: "s1", Name: "Centro", Code: "CT"}) },
			func() error {
				return w.PutItem(ctx, models.Item{ID: "a", Name: "Arroz", Unit: "kg", Supplier: "Ceasa"})
			},
			func() error { return w.PutItem(ctx, models.Item{ID: "b", Name: "Batata", Unit: "kg"}) },
			func() error { return w.PutItem(ctx, models.Item{ID: "c", Name: "Cebola", Unit: "kg"}) },
			func() error { return w.PutInventoryEntry(ctx, models.NewInventoryEntry("s1", "a", 3, 10)) },
			func() error { return w.PutInventoryEntry(ctx, models.NewInventoryEntry("s1", "b", 5, 5)) },
		}
		for _, write := range writes {
			if err := write(); err != nil {
				return err
			}
		}
		return nil
	}))
	return store
}

func TestForStore(t *testing.T) {
	svc := NewService(seed(t), nil, nil)

	list, err := svc.ForStore(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "CT", list.Store.Code)
	require.Len(t, list.Lines, 1)
	assert.Equal(t, "a", list.Lines[0].ItemID)
	assert.Equal(t, 7.0, list.Lines[0].ToBuy)
	assert.Equal(t, "Ceasa", list.Lines[0].Supplier)

	_, err = svc.ForStore(context.Background(), "nope")
	require.ErrorIs(t, err, models.ErrStoreNotFound)
}

func TestExportCSV(t *testing.T) {
	svc := NewService(seed(t), time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	name, err := svc.Export(context.Background(), "s1", export.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "lista-compras_CT_2026-07-01.csv", name)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Arroz,kg,Ceasa,,3,10,7", lines[1])
}

func TestExportOrderLooksUpCatalog(t *testing.T) {
	svc := NewService(seed(t), time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }

	detail := models.NewOrderDetail(
		models.Order{ID: "o9", StoreCode: "CT"},
		[]models.OrderLine{{ItemID: "a", ItemName: "Arroz", Unit: "kg", CurrentQty: 3, MinQty: 10, ToBuy: 7}},
	)

	var buf bytes.Buffer
	name, err := svc.ExportOrder(context.Background(), detail, export.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "pedido_CT_o9_2026-07-01.csv", name)
	assert.Contains(t, buf.String(), "Arroz,kg,Ceasa,,3,10,7")
}

func TestWatchRederivesOnInventoryChange(t *testing.T) {
	store := seed(t)
	svc := NewService(store, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := svc.Watch(ctx, "s1")
	require.NoError(t, err)

	first := receive(t, feed)
	require.Len(t, first, 1)
	assert.Equal(t, "a", first[0].ItemID)

	require.NoError(t, store.WriteBatch(ctx, func(ctx context.Context, w repository.Writer) error {
		return w.PutInventoryEntry(ctx, models.NewInventoryEntry("s1", "c", 0, 20))
	}))

	second := receive(t, feed)
	require.Len(t, second, 2)
	assert.Equal(t, "c", second[0].ItemID)
	assert.Equal(t, 20.0, second[0].ToBuy)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-feed:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func receive(t *testing.T, feed <-chan []models.ShoppingLine) []models.ShoppingLine {
	t.Helper()
	select {
	case lines, ok := <-feed:
		require.True(t, ok, "feed closed")
		return lines
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shopping list")
		return nil
	}
}
