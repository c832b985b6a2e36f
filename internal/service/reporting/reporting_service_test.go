package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/restock/internal/domain/models"
)

type fakeShopping struct {
	lists map[string]models.ShoppingList
}

func (f fakeShopping) ForStore(_ context.Context, storeID string) (models.ShoppingList, error) {
	list, ok := f.lists[storeID]
	if !ok {
		return models.ShoppingList{}, models.ErrStoreNotFound
	}
	return list, nil
}

type fakeStores []models.Store

func (f fakeStores) ListStores(context.Context) ([]models.Store, error) {
	return f, nil
}

type sheetCall struct {
	op     string
	target string
	rows   [][]interface{}
}

type fakeSheets struct {
	calls []sheetCall
	fail  error
}

func (f *fakeSheets) EnsureTab(_ context.Context, title string) error {
	f.calls = append(f.calls, sheetCall{op: "ensure", target: title})
	return f.fail
}

func (f *fakeSheets) ClearRange(_ context.Context, sheetRange string) error {
	f.calls = append(f.calls, sheetCall{op: "clear", target: sheetRange})
	return nil
}

func (f *fakeSheets) WriteRows(_ context.Context, sheetRange string, values [][]interface{}) error {
	f.calls = append(f.calls, sheetCall{op: "write", target: sheetRange, rows: values})
	return nil
}

var (
	centro = models.Store{ID: "s1", Name: "Centro", Code: "CT"}
	praia  = models.Store{ID: "s2", Name: "Praia", Code: "PR"}
)

func fixture() fakeShopping {
	return fakeShopping{lists: map[string]models.ShoppingList{
		"s1": {Store: centro, Lines: []models.ShoppingLine{
			{ItemID: "a", ItemName: "Arroz", Unit: "kg", Supplier: "Ceasa", ToBuy: 7},
			{ItemID: "b", ItemName: "Batata", Unit: "kg", ToBuy: 2.5},
		}},
		"s2": {Store: praia, Lines: []models.ShoppingLine{}},
	}}
}

func TestStoreDigest(t *testing.T) {
	svc := NewService(fixture(), nil, nil, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }

	text, err := svc.StoreDigest(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Lista de compras Centro (CT) - 02/03/2026\n- Arroz: 7 kg (Ceasa)\n- Batata: 2.5 kg", text)

	text, err = svc.StoreDigest(context.Background(), "s2")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, "Nada para comprar."))
}

func TestDigestKeepsGoingPastFailures(t *testing.T) {
	ghost := models.Store{ID: "s9", Name: "Fantasma"}
	svc := NewService(fixture(), fakeStores{centro, ghost, praia}, nil, nil, nil)

	text, err := svc.Digest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStoreNotFound))
	assert.Contains(t, text, "Centro")
	assert.Contains(t, text, "Praia")
}

func TestPublishShoppingList(t *testing.T) {
	sheets := &fakeSheets{}
	svc := NewService(fixture(), fakeStores{centro, praia}, sheets, nil, nil)

	require.NoError(t, svc.PublishShoppingList(context.Background(), "s1"))
	require.Len(t, sheets.calls, 3)
	assert.Equal(t, sheetCall{op: "ensure", target: "CT"}, sheets.calls[0])
	assert.Equal(t, "CT!A:G", sheets.calls[1].target)
	assert.Equal(t, "CT!A1", sheets.calls[2].target)
	require.Len(t, sheets.calls[2].rows, 3)
	assert.Equal(t, "Comprar", sheets.calls[2].rows[0][6])
	assert.Equal(t, 7.0, sheets.calls[2].rows[1][6])
}

func TestPublishDisabledWithoutSheets(t *testing.T) {
	svc := NewService(fixture(), fakeStores{centro}, nil, nil, nil)
	assert.NoError(t, svc.PublishShoppingList(context.Background(), "s1"))
	assert.NoError(t, svc.PublishAll(context.Background()))
}

func TestPublishAllJoinsErrors(t *testing.T) {
	sheets := &fakeSheets{fail: errors.New("quota")}
	svc := NewService(fixture(), fakeStores{centro, praia}, sheets, nil, nil)

	err := svc.PublishAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store s1")
	assert.Contains(t, err.Error(), "store s2")
}

func TestFormatOrders(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	text := FormatOrders(centro, []models.Order{
		{ID: "0123456789", Status: models.OrderSent, LineCount: 3, CreatedAt: at},
		{ID: "done", Status: models.OrderReceived},
	})
	assert.Equal(t, "Pedidos abertos Centro (CT)\n- 01234567 enviado, 3 itens, 01/03/2026", text)

	assert.Contains(t, FormatOrders(centro, nil), "Nenhum pedido aberto.")
}

func TestFormatOrder(t *testing.T) {
	detail := models.NewOrderDetail(
		models.Order{ID: "o1", StoreName: "Centro", StoreCode: "CT", Status: models.OrderReceived},
		[]models.OrderLine{{ItemName: "Arroz", Unit: "kg", ToBuy: 7}, {ItemName: "Batata", Unit: "kg", ToBuy: 0.5}},
	)
	assert.Equal(t, "Pedido o1 - Centro (CT): recebido\n- Arroz: 7 kg\n- Batata: 0.5 kg\nTotal: 7.5", FormatOrder(detail))
}
