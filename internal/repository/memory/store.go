// Package memory is an in-process document store with optimistic
// transactions. It backs tests and the STORAGE_DRIVER=memory mode.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

const (
	defaultMaxAttempts = 10
	watchBuffer        = 64
)

var errConflict = errors.New("memory: write conflict")

type record struct {
	version uint64
	doc     any
}

type watcher struct {
	storeID string
	ch      chan models.InventoryChange
}

// Store implements repository.Store in memory.
type Store struct {
	view

	mu          sync.RWMutex
	collections map[string]map[string]record
	seq         uint64
	maxAttempts int

	watchers    map[int]*watcher
	nextWatcher int

	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		collections: make(map[string]map[string]record),
		maxAttempts: defaultMaxAttempts,
		watchers:    make(map[int]*watcher),
		logger:      logger,
	}
	s.view = view{src: committed{s}}
	return s
}

// RunTransaction runs fn against a private write set and commits it only if
// none of the documents fn read changed in the meantime. On conflict fn is
// run again from scratch.
func (s *Store) RunTransaction(ctx context.Context, fn repository.TxFunc) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := newTx(s)
		if err := fn(ctx, t); err != nil {
			return err
		}

		err := s.commit(t)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errConflict) {
			return err
		}
		s.logger.Debug("transaction conflict, retrying", zap.Int("attempt", attempt))
	}

	return fmt.Errorf("%w: transaction gave up after %d conflicting attempts", models.ErrStorageUnavailable, s.maxAttempts)
}

// WriteBatch applies the writes staged by fn in one step.
func (s *Store) WriteBatch(ctx context.Context, fn repository.BatchFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := newTx(s)
	if err := fn(ctx, t); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range t.reads {
		if s.versionLocked(key.coll, key.id) != seen {
			return errConflict
		}
	}

	var changes []models.InventoryChange
	for _, key := range t.order {
		p := t.writes[key]
		coll := s.collectionLocked(key.coll)
		if p.deleted {
			delete(coll, key.id)
			continue
		}

		s.seq++
		coll[key.id] = record{version: s.seq, doc: p.doc}
		if entry, ok := p.doc.(models.InventoryEntry); ok {
			changes = append(changes, models.InventoryChange{Op: models.ChangeUpsert, Entry: entry})
		}
	}

	s.publishLocked(changes)
	return nil
}

func (s *Store) versionLocked(coll, id string) uint64 {
	return s.collections[coll][id].version
}

func (s *Store) collectionLocked(coll string) map[string]record {
	c, ok := s.collections[coll]
	if !ok {
		c = make(map[string]record)
		s.collections[coll] = c
	}
	return c
}

// ListItems returns the catalog sorted by name.
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	items := scanAll[models.Item](s, repository.CollectionItems)
	sort.Slice(items, func(i, j int) bool {
		a, b := models.NormalizeName(items[i].Name), models.NormalizeName(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// ListStores returns every store sorted by name.
func (s *Store) ListStores(ctx context.Context) ([]models.Store, error) {
	stores := scanAll[models.Store](s, repository.CollectionStores)
	sort.Slice(stores, func(i, j int) bool {
		if stores[i].Name != stores[j].Name {
			return strings.ToLower(stores[i].Name) < strings.ToLower(stores[j].Name)
		}
		return stores[i].ID < stores[j].ID
	})
	return stores, nil
}

// ListInventory returns the entries of storeID sorted by item id.
func (s *Store) ListInventory(ctx context.Context, storeID string) ([]models.InventoryEntry, error) {
	all := scanAll[models.InventoryEntry](s, repository.CollectionInventory)
	out := make([]models.InventoryEntry, 0, len(all))
	for _, entry := range all {
		if entry.StoreID == storeID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// ListOrders returns order headers newest first.
func (s *Store) ListOrders(ctx context.Context, storeID string) ([]models.Order, error) {
	all := scanAll[models.Order](s, repository.CollectionOrders)
	out := make([]models.Order, 0, len(all))
	for _, order := range all {
		if storeID == "" || order.StoreID == storeID {
			out = append(out, cloneOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListNameIndex returns every index record sorted by key.
func (s *Store) ListNameIndex(ctx context.Context) ([]models.NameIndexEntry, error) {
	out := scanAll[models.NameIndexEntry](s, repository.CollectionNameIndex)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// TouchUser creates the profile of uid or refreshes its last login.
func (s *Store) TouchUser(ctx context.Context, uid, email string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.collectionLocked(repository.CollectionUsers)
	s.seq++

	if rec, ok := users[uid]; ok {
		profile := rec.doc.(models.UserProfile)
		profile.LastLoginAt = at
		if email != "" {
			profile.Email = email
		}
		users[uid] = record{version: s.seq, doc: profile}
		return false, nil
	}

	users[uid] = record{version: s.seq, doc: models.UserProfile{UID: uid, Email: email, CreatedAt: at, LastLoginAt: at}}
	return true, nil
}

// User returns the stored profile of uid.
func (s *Store) User(uid string) (models.UserProfile, bool) {
	doc, ok := committed{s}.read(repository.CollectionUsers, uid)
	if !ok {
		return models.UserProfile{}, false
	}
	return doc.(models.UserProfile), true
}

// WatchInventory subscribes to inventory writes of storeID. A subscriber that
// falls more than a buffer behind is dropped and its channel closed.
func (s *Store) WatchInventory(ctx context.Context, storeID string) (<-chan models.InventoryChange, error) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	w := &watcher{storeID: storeID, ch: make(chan models.InventoryChange, watchBuffer)}
	s.watchers[id] = w
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.dropLocked(id)
		s.mu.Unlock()
	}()

	return w.ch, nil
}

func (s *Store) publishLocked(changes []models.InventoryChange) {
	for _, change := range changes {
		for id, w := range s.watchers {
			if w.storeID != change.Entry.StoreID {
				continue
			}
			select {
			case w.ch <- change:
			default:
				s.logger.Warn("inventory watcher lagging, dropping subscription", zap.String("store_id", w.storeID))
				s.dropLocked(id)
			}
		}
	}
}

func (s *Store) dropLocked(id int) {
	if w, ok := s.watchers[id]; ok {
		delete(s.watchers, id)
		close(w.ch)
	}
}

// Close drops every subscription.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.watchers {
		s.dropLocked(id)
	}
	return nil
}

// committed reads the latest committed state.
type committed struct{ s *Store }

func (c committed) read(coll, id string) (any, bool) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	rec, ok := c.s.collections[coll][id]
	if !ok {
		return nil, false
	}
	return rec.doc, true
}

func (c committed) scan(coll string) map[string]any {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make(map[string]any, len(c.s.collections[coll]))
	for id, rec := range c.s.collections[coll] {
		out[id] = rec.doc
	}
	return out
}

func scanAll[T any](s *Store, coll string) []T {
	docs := committed{s}.scan(coll)
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.(T))
	}
	return out
}

func cloneOrder(o models.Order) models.Order {
	if o.ReceivedAt != nil {
		at := *o.ReceivedAt
		o.ReceivedAt = &at
	}
	return o
}
