package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// docs implements point reads and writes. Inside RunTransaction the ctx is a
// mongo.SessionContext, so the same methods serve as the transaction handle.
type docs struct {
	db *mongo.Database
}

var _ repository.Tx = docs{}

func findOne[T any](ctx context.Context, db *mongo.Database, coll, id string) (*T, error) {
	var v T
	err := db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find "+coll+"/"+id, err)
	}
	return &v, nil
}

func (d docs) replace(ctx context.Context, coll, id string, doc interface{}) error {
	_, err := d.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return classify("write "+coll+"/"+id, err)
	}
	return nil
}

func (d docs) delete(ctx context.Context, coll, id string) error {
	if _, err := d.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return classify("delete "+coll+"/"+id, err)
	}
	return nil
}

func (d docs) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return findOne[models.Item](ctx, d.db, repository.CollectionItems, id)
}

func (d docs) GetNameIndex(ctx context.Context, key string) (*models.NameIndexEntry, error) {
	return findOne[models.NameIndexEntry](ctx, d.db, repository.CollectionNameIndex, key)
}

func (d docs) GetStore(ctx context.Context, id string) (*models.Store, error) {
	return findOne[models.Store](ctx, d.db, repository.CollectionStores, id)
}

func (d docs) GetInventoryEntry(ctx context.Context, storeID, itemID string) (*models.InventoryEntry, error) {
	return findOne[models.InventoryEntry](ctx, d.db, repository.CollectionInventory, models.InventoryKey(storeID, itemID))
}

func (d docs) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return findOne[models.Order](ctx, d.db, repository.CollectionOrders, id)
}

func (d docs) ListOrderLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	cursor, err := d.db.Collection(repository.CollectionOrderLines).
		Find(ctx, bson.M{"orderId": orderID}, options.Find().SetSort(bson.D{{Key: "itemId", Value: 1}}))
	if err != nil {
		return nil, classify("query order lines", err)
	}

	lines := make([]models.OrderLine, 0)
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, classify("decode order lines", err)
	}
	return lines, nil
}

func (d docs) PutItem(ctx context.Context, item models.Item) error {
	return d.replace(ctx, repository.CollectionItems, item.ID, item)
}

func (d docs) DeleteItem(ctx context.Context, id string) error {
	return d.delete(ctx, repository.CollectionItems, id)
}

func (d docs) PutNameIndex(ctx context.Context, entry models.NameIndexEntry) error {
	return d.replace(ctx, repository.CollectionNameIndex, entry.Key, entry)
}

func (d docs) DeleteNameIndex(ctx context.Context, key string) error {
	return d.delete(ctx, repository.CollectionNameIndex, key)
}

func (d docs) PutStore(ctx context.Context, store models.Store) error {
	return d.replace(ctx, repository.CollectionStores, store.ID, store)
}

func (d docs) PutInventoryEntry(ctx context.Context, entry models.InventoryEntry) error {
	entry.ID = models.InventoryKey(entry.StoreID, entry.ItemID)
	return d.replace(ctx, repository.CollectionInventory, entry.ID, entry)
}

func (d docs) PutOrder(ctx context.Context, order models.Order) error {
	return d.replace(ctx, repository.CollectionOrders, order.ID, order)
}

func (d docs) PutOrderLine(ctx context.Context, line models.OrderLine) error {
	line.ID = models.OrderLineKey(line.OrderID, line.ItemID)
	return d.replace(ctx, repository.CollectionOrderLines, line.ID, line)
}

// classify wraps err, marking connectivity failures as ErrStorageUnavailable.
// The driver error stays in the chain so WithTransaction can read its labels.
func classify(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		return labeled.HasErrorLabel("TransientTransactionError") ||
			labeled.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
