package memory

import (
	"context"
	"sort"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

type source interface {
	read(coll, id string) (any, bool)
	scan(coll string) map[string]any
}

// view implements repository.Reader on top of a source.
type view struct {
	src source
}

func load[T any](src source, coll, id string) *T {
	doc, ok := src.read(coll, id)
	if !ok {
		return nil
	}
	v := doc.(T)
	return &v
}

func (v view) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return load[models.Item](v.src, repository.CollectionItems, id), nil
}

func (v view) GetNameIndex(ctx context.Context, key string) (*models.NameIndexEntry, error) {
	return load[models.NameIndexEntry](v.src, repository.CollectionNameIndex, key), nil
}

func (v view) GetStore(ctx context.Context, id string) (*models.Store, error) {
	return load[models.Store](v.src, repository.CollectionStores, id), nil
}

func (v view) GetInventoryEntry(ctx context.Context, storeID, itemID string) (*models.InventoryEntry, error) {
	return load[models.InventoryEntry](v.src, repository.CollectionInventory, models.InventoryKey(storeID, itemID)), nil
}

func (v view) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order := load[models.Order](v.src, repository.CollectionOrders, id)
	if order == nil {
		return nil, nil
	}
	cloned := cloneOrder(*order)
	return &cloned, nil
}

func (v view) ListOrderLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0)
	for _, doc := range v.src.scan(repository.CollectionOrderLines) {
		line := doc.(models.OrderLine)
		if line.OrderID == orderID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines, nil
}

type docKey struct {
	coll string
	id   string
}

type pending struct {
	doc     any
	deleted bool
}

// tx buffers writes and remembers the version of every document it read.
type tx struct {
	view

	s      *Store
	reads  map[docKey]uint64
	writes map[docKey]pending
	order  []docKey
}

var _ repository.Tx = (*tx)(nil)

func newTx(s *Store) *tx {
	t := &tx{
		s:      s,
		reads:  make(map[docKey]uint64),
		writes: make(map[docKey]pending),
	}
	t.view = view{src: t}
	return t
}

func (t *tx) read(coll, id string) (any, bool) {
	key := docKey{coll: coll, id: id}
	if p, ok := t.writes[key]; ok {
		if p.deleted {
			return nil, false
		}
		return p.doc, true
	}

	t.s.mu.RLock()
	rec, ok := t.s.collections[coll][id]
	t.s.mu.RUnlock()

	if _, seen := t.reads[key]; !seen {
		t.reads[key] = rec.version
	}
	if !ok {
		return nil, false
	}
	return rec.doc, true
}

func (t *tx) scan(coll string) map[string]any {
	t.s.mu.RLock()
	out := make(map[string]any, len(t.s.collections[coll]))
	for id, rec := range t.s.collections[coll] {
		key := docKey{coll: coll, id: id}
		if _, seen := t.reads[key]; !seen {
			t.reads[key] = rec.version
		}
		out[id] = rec.doc
	}
	t.s.mu.RUnlock()

	for key, p := range t.writes {
		if key.coll != coll {
			continue
		}
		if p.deleted {
			delete(out, key.id)
		} else {
			out[key.id] = p.doc
		}
	}
	return out
}

func (t *tx) stage(coll, id string, doc any, deleted bool) {
	key := docKey{coll: coll, id: id}
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = pending{doc: doc, deleted: deleted}
}

func (t *tx) PutItem(ctx context.Context, item models.Item) error {
	t.stage(repository.CollectionItems, item.ID, item, false)
	return nil
}

func (t *tx) DeleteItem(ctx context.Context, id string) error {
	t.stage(repository.CollectionItems, id, nil, true)
	return nil
}

func (t *tx) PutNameIndex(ctx context.Context, entry models.NameIndexEntry) error {
	t.stage(repository.CollectionNameIndex, entry.Key, entry, false)
	return nil
}

func (t *tx) DeleteNameIndex(ctx context.Context, key string) error {
	t.stage(repository.CollectionNameIndex, key, nil, true)
	return nil
}

func (t *tx) PutStore(ctx context.Context, store models.Store) error {
	t.stage(repository.CollectionStores, store.ID, store, false)
	return nil
}

func (t *tx) PutInventoryEntry(ctx context.Context, entry models.InventoryEntry) error {
	entry.ID = models.InventoryKey(entry.StoreID, entry.ItemID)
	t.stage(repository.CollectionInventory, entry.ID, entry, false)
	return nil
}

func (t *tx) PutOrder(ctx context.Context, order models.Order) error {
	t.stage(repository.CollectionOrders, order.ID, cloneOrder(order), false)
	return nil
}

func (t *tx) PutOrderLine(ctx context.Context, line models.OrderLine) error {
	line.ID = models.OrderLineKey(line.OrderID, line.ItemID)
	t.stage(repository.CollectionOrderLines, line.ID, line, false)
	return nil
}
