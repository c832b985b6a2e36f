package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/repository"
)

// Notifier is told about status changes after they commit.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, detail models.OrderDetail) error
}

// Recorder counts receipt outcomes.
type Recorder interface {
	OrderReceipt(outcome string)
}

// Receipt outcomes reported to the Recorder.
const (
	ReceiptApplied = "applied"
	ReceiptNoop    = "noop"
	ReceiptFailed  = "failed"
)

// Service drives the purchase order lifecycle.
type Service struct {
	store    repository.Store
	notifier Notifier
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires an order service. notifier and recorder may be nil.
func NewService(store repository.Store, notifier Notifier, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateOrder writes a draft order and one frozen line per shopping line in a single batch.
func (s *Service) CreateOrder(ctx context.Context, actor *models.Actor, store models.Store, lines []models.ShoppingLine) (string, error) {
	if err := models.RequireActor(actor); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", models.ErrEmptyOrder
	}
	if store.ID == "" {
		return "", models.Invalid("storeId", "must not be blank")
	}

	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.ItemID == "" {
			return "", models.Invalid("itemId", "must not be blank")
		}
		if _, dup := seen[line.ItemID]; dup {
			return "", models.Invalid("itemId", "appears more than once: "+line.ItemID)
		}
		seen[line.ItemID] = struct{}{}
		if line.ToBuy < 0 {
			return "", models.Invalid("toBuy", "must be zero or greater")
		}
	}

	now := s.now().UTC()
	order := models.Order{
		ID:        s.newID(),
		StoreID:   store.ID,
		StoreName: store.Name,
		StoreCode: store.Code,
		Status:    models.OrderDraft,
		LineCount: len(lines),
		CreatedAt: now,
		CreatedBy: actor.UserID,
		UpdatedAt: now,
	}
	orderLines := models.OrderLines(order.ID, lines)

	err := s.store.WriteBatch(ctx, func(ctx context.Context, w repository.Writer) error {
		if err := w.PutOrder(ctx, order); err != nil {
			return err
		}
		for _, line := range orderLines {
			line.CreatedAt = now
			if err := w.PutOrderLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("store_id", store.ID),
		zap.Int("lines", len(lines)),
		zap.String("actor", actor.UserID))
	return order.ID, nil
}

// CreateFromShoppingList derives the current shopping list of storeID and
// turns it into a draft order.
func (s *Service) CreateFromShoppingList(ctx context.Context, actor *models.Actor, storeID string) (string, error) {
	if err := models.RequireActor(actor); err != nil {
		return "", err
	}

	store, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return "", err
	}
	if store == nil {
		return "", models.ErrStoreNotFound
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return "", fmt.Errorf("list items: %w", err)
	}
	inventory, err := s.store.ListInventory(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("list inventory: %w", err)
	}

	return s.CreateOrder(ctx, actor, *store, models.DeriveShoppingList(items, inventory))
}

// SetStatus moves an order between draft and sent. Receipt goes through
// ReceiveOrder; a received order can no longer change.
func (s *Service) SetStatus(ctx context.Context, actor *models.Actor, orderID string, status models.OrderStatus) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}
	if !status.Valid() {
		return models.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	if status == models.OrderReceived {
		return models.Invalid("status", "use the receive operation to mark an order received")
	}

	var updated models.Order
	changed := false
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return models.ErrOrderNotFound
		}
		if order.Status == models.OrderReceived {
			return models.ErrOrderFinalized
		}

		changed = order.Status != status
		order.Status = status
		order.UpdatedAt = s.now().UTC()
		updated = *order
		return tx.PutOrder(ctx, *order)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order status set", zap.String("order_id", orderID), zap.String("status", string(status)), zap.String("actor", actor.UserID))
	if changed && status == models.OrderSent {
		s.notify(ctx, updated)
	}
	return nil
}

// ReceiveOrder credits every line's toBuy into the store inventory and marks
// the order received, all in one transaction. Receiving an already received
// order is a successful no-op. The returned flag reports whether this call
// applied the credit.
func (s *Service) ReceiveOrder(ctx context.Context, actor *models.Actor, orderID string) (bool, error) {
	if err := models.RequireActor(actor); err != nil {
		return false, err
	}

	var received models.Order
	applied := false
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		applied = false

		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return models.ErrOrderNotFound
		}
		if order.Status == models.OrderReceived {
			return nil
		}

		lines, err := tx.ListOrderLines(ctx, orderID)
		if err != nil {
			return err
		}

		credit := make(map[string]float64, len(lines))
		var itemOrder []string
		for _, line := range lines {
			if line.ToBuy <= 0 {
				continue
			}
			if _, ok := credit[line.ItemID]; !ok {
				itemOrder = append(itemOrder, line.ItemID)
			}
			credit[line.ItemID] += line.ToBuy
		}

		now := s.now().UTC()
		for _, itemID := range itemOrder {
			entry, err := tx.GetInventoryEntry(ctx, order.StoreID, itemID)
			if err != nil {
				return err
			}
			next := models.NewInventoryEntry(order.StoreID, itemID, 0, 0)
			if entry != nil {
				next = *entry
			}
			next.CurrentQty = models.RoundQty(next.CurrentQty + credit[itemID])
			next.UpdatedAt = now
			next.UpdatedBy = actor.UserID
			if err := tx.PutInventoryEntry(ctx, next); err != nil {
				return err
			}
		}

		order.Status = models.OrderReceived
		order.ReceivedAt = &now
		order.ReceivedBy = actor.UserID
		order.UpdatedAt = now
		if err := tx.PutOrder(ctx, *order); err != nil {
			return err
		}

		received = *order
		applied = true
		return nil
	})
	if err != nil {
		s.record(ReceiptFailed)
		return false, err
	}

	if !applied {
		s.record(ReceiptNoop)
		s.logger.Info("order already received", zap.String("order_id", orderID))
		return false, nil
	}

	s.record(ReceiptApplied)
	s.logger.Info("order received", zap.String("order_id", orderID), zap.String("store_id", received.StoreID), zap.String("actor", actor.UserID))
	s.notify(ctx, received)
	return true, nil
}

// GetOrder returns the header with its lines sorted by item name.
func (s *Service) GetOrder(ctx context.Context, orderID string) (models.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.OrderDetail{}, err
	}
	if order == nil {
		return models.OrderDetail{}, models.ErrOrderNotFound
	}

	lines, err := s.store.ListOrderLines(ctx, orderID)
	if err != nil {
		return models.OrderDetail{}, fmt.Errorf("list order lines: %w", err)
	}
	return models.NewOrderDetail(*order, lines), nil
}

// ListOrders returns the orders of storeID, or of every store when empty, newest first.
func (s *Service) ListOrders(ctx context.Context, storeID string) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Service) notify(ctx context.Context, order models.Order) {
	if s.notifier == nil {
		return
	}

	detail, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		s.logger.Warn("skip order notification", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.notifier.OrderStatusChanged(ctx, detail); err != nil {
		s.logger.Warn("order notification failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.OrderReceipt(outcome)
	}
}
