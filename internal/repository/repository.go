// Package repository declares the document storage contract shared by the
// MongoDB adapter and the in-memory store.
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/restock/internal/domain/models"
)

// Collection names, shared by every backend.
const (
	CollectionItems      = "items"
	CollectionNameIndex  = "itemNameIndex"
	CollectionStores     = "stores"
	CollectionInventory  = "inventory"
	CollectionOrders     = "orders"
	CollectionOrderLines = "order_lines"
	CollectionUsers      = "users"
)

// Reader exposes point reads. Missing documents yield (nil, nil).
type Reader interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
	GetNameIndex(ctx context.Context, key string) (*models.NameIndexEntry, error)
	GetStore(ctx context.Context, id string) (*models.Store, error)
	GetInventoryEntry(ctx context.Context, storeID, itemID string) (*models.InventoryEntry, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrderLines(ctx context.Context, orderID string) ([]models.OrderLine, error)
}

// Writer exposes unconditional writes. Put replaces the whole document.
type Writer interface {
	PutItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, id string) error
	PutNameIndex(ctx context.Context, entry models.NameIndexEntry) error
	DeleteNameIndex(ctx context.Context, key string) error
	PutStore(ctx context.Context, store models.Store) error
	PutInventoryEntry(ctx context.Context, entry models.InventoryEntry) error
	PutOrder(ctx context.Context, order models.Order) error
	PutOrderLine(ctx context.Context, line models.OrderLine) error
}

// Tx is the capability handed to a transaction body. Reads observe the
// transaction's own earlier writes. The body may run more than once.
type Tx interface {
	Reader
	Writer
}

// TxFunc is a retryable transaction body. It must not have side effects
// outside tx.
type TxFunc func(ctx context.Context, tx Tx) error

// BatchFunc stages writes that are applied together or not at all.
type BatchFunc func(ctx context.Context, w Writer) error

// Store is the document storage collaborator.
type Store interface {
	Reader

	// RunTransaction executes fn atomically, retrying it on write conflicts.
	// Errors returned by fn abort the transaction and are returned unchanged.
	RunTransaction(ctx context.Context, fn TxFunc) error
	// WriteBatch applies every write staged by fn atomically, without read validation.
	WriteBatch(ctx context.Context, fn BatchFunc) error

	ListItems(ctx context.Context) ([]models.Item, error)
	ListStores(ctx context.Context) ([]models.Store, error)
	ListInventory(ctx context.Context, storeID string) ([]models.InventoryEntry, error)
	// ListOrders returns headers newest first; an empty storeID lists every store.
	ListOrders(ctx context.Context, storeID string) ([]models.Order, error)
	ListNameIndex(ctx context.Context) ([]models.NameIndexEntry, error)

	// TouchUser creates or refreshes the profile of uid and reports whether it was created.
	TouchUser(ctx context.Context, uid, email string, at time.Time) (bool, error)

	// WatchInventory streams changes to the inventory of storeID until ctx is
	// done. The channel is closed when the subscription ends; consumers
	// resubscribe and rebuild from a fresh snapshot.
	WatchInventory(ctx context.Context, storeID string) (<-chan models.InventoryChange, error)

	Close(ctx context.Context) error
}
