package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// MongoDBRepository implements repository.Store on a MongoDB replica set.
// Transactions and change streams both require a replica set or Atlas cluster.
type MongoDBRepository struct {
	docs

	client *mongo.Client
	logger *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, classify("connect to mongodb", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, classify("ping mongodb", err)
	}

	return &MongoDBRepository{
		docs:   docs{db: client.Database(dbName)},
		client: client,
		logger: logger,
	}, nil
}

// EnsureIndexes creates the secondary indexes the queries rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		repository.CollectionInventory: {
			{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "itemId", Value: 1}}},
		},
		repository.CollectionOrderLines: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}},
		},
		repository.CollectionOrders: {
			{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return classify("create indexes on "+coll, err)
		}
	}
	return nil
}

// RunTransaction runs fn inside a session transaction. The driver retries the
// whole callback on TransientTransactionError and the commit on
// UnknownTransactionCommitResult.
func (r *MongoDBRepository) RunTransaction(ctx context.Context, fn repository.TxFunc) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return classify("start session", err)
	}
	defer sess.EndSession(ctx)

	attempt := 0
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		attempt++
		if attempt > 1 {
			r.logger.Debug("retrying transaction", zap.Int("attempt", attempt))
		}
		return nil, fn(sc, r.docs)
	}, transactionOptions())

	return finishTx(err)
}

// WriteBatch applies the writes of fn in a single transaction.
func (r *MongoDBRepository) WriteBatch(ctx context.Context, fn repository.BatchFunc) error {
	return r.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, tx)
	})
}

func transactionOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
}

func finishTx(err error) error {
	if err == nil || errors.Is(err, models.ErrStorageUnavailable) || !isTransient(err) {
		return err
	}
	return fmt.Errorf("commit transaction: %w: %w", models.ErrStorageUnavailable, err)
}

// ListItems returns the catalog sorted by name, accent and case insensitive.
func (r *MongoDBRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(&options.Collation{Locale: "pt", Strength: 1})

	var items []models.Item
	if err := r.findAll(ctx, repository.CollectionItems, bson.M{}, opts, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListStores returns every store sorted by name.
func (r *MongoDBRepository) ListStores(ctx context.Context) ([]models.Store, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(&options.Collation{Locale: "pt", Strength: 1})

	var stores []models.Store
	if err := r.findAll(ctx, repository.CollectionStores, bson.M{}, opts, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// ListInventory returns the entries of storeID.
func (r *MongoDBRepository) ListInventory(ctx context.Context, storeID string) ([]models.InventoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "itemId", Value: 1}})

	var entries []models.InventoryEntry
	if err := r.findAll(ctx, repository.CollectionInventory, bson.M{"storeId": storeID}, opts, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOrders returns order headers newest first.
func (r *MongoDBRepository) ListOrders(ctx context.Context, storeID string) ([]models.Order, error) {
	filter := bson.M{}
	if storeID != "" {
		filter["storeId"] = storeID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})

	var orders []models.Order
	if err := r.findAll(ctx, repository.CollectionOrders, filter, opts, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListNameIndex returns every index record.
func (r *MongoDBRepository) ListNameIndex(ctx context.Context) ([]models.NameIndexEntry, error) {
	var entries []models.NameIndexEntry
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.findAll(ctx, repository.CollectionNameIndex, bson.M{}, opts, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TouchUser upserts the profile of uid, setting createdAt only on insert.
func (r *MongoDBRepository) TouchUser(ctx context.Context, uid, email string, at time.Time) (bool, error) {
	set := bson.M{"lastLoginAt": at}
	if email != "" {
		set["email"] = email
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": at},
	}

	res, err := r.db.Collection(repository.CollectionUsers).
		UpdateOne(ctx, bson.M{"_id": uid}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, classify("upsert user profile", err)
	}
	return res.UpsertedCount > 0, nil
}

type inventoryEvent struct {
	OperationType string                `bson:"operationType"`
	FullDocument  models.InventoryEntry `bson:"fullDocument"`
}

// WatchInventory opens a change stream on the inventory of storeID.
func (r *MongoDBRepository) WatchInventory(ctx context.Context, storeID string) (<-chan models.InventoryChange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "fullDocument.storeId", Value: storeID},
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.db.Collection(repository.CollectionInventory).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, classify("watch inventory", err)
	}

	out := make(chan models.InventoryChange)
	go func() {
		defer close(out)
		defer func() { _ = stream.Close(context.Background()) }()

		for stream.Next(ctx) {
			var ev inventoryEvent
			if err := stream.Decode(&ev); err != nil {
				r.logger.Warn("skip undecodable inventory change", zap.Error(err))
				continue
			}
			select {
			case out <- models.InventoryChange{Op: models.ChangeUpsert, Entry: ev.FullDocument}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			r.logger.Warn("inventory change stream ended", zap.String("store_id", storeID), zap.Error(err))
		}
	}()

	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := r.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return classify("query "+coll, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return classify("decode "+coll, err)
	}
	return nil
}
