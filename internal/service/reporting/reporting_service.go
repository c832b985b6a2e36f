package reporting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/export"
	repo "github.com/mamadbah2/restock/internal/repository/sheets"
)

const (
	dateLayout    = "02/01/2006"
	maxDigestRows = 30
)

// ShoppingSource derives the shopping list of a store.
type ShoppingSource interface {
	ForStore(ctx context.Context, storeID string) (models.ShoppingList, error)
}

// StoreLister enumerates every store.
type StoreLister interface {
	ListStores(ctx context.Context) ([]models.Store, error)
}

// Service renders shortage digests and publishes shopping lists to a spreadsheet.
type Service struct {
	shopping ShoppingSource
	stores   StoreLister
	sheets   repo.Repository
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. sheets may be nil, which
// disables publication.
func NewService(shopping ShoppingSource, stores StoreLister, sheets repo.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		shopping: shopping,
		stores:   stores,
		sheets:   sheets,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// StoreDigest builds the shortage text of one store.
func (s *Service) StoreDigest(ctx context.Context, storeID string) (string, error) {
	list, err := s.shopping.ForStore(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("load shopping list: %w", err)
	}
	return FormatShoppingList(list, s.now().In(s.location)), nil
}

// Digest builds one message covering every store. Stores that fail to load
// are reported in the returned error while the rest are still included.
func (s *Service) Digest(ctx context.Context) (string, error) {
	stores, err := s.stores.ListStores(ctx)
	if err != nil {
		return "", fmt.Errorf("list stores: %w", err)
	}
	if len(stores) == 0 {
		return "", nil
	}

	var (
		sections []string
		errs     []error
	)
	for _, store := range stores {
		text, err := s.StoreDigest(ctx, store.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", store.ID, err))
			continue
		}
		sections = append(sections, text)
	}

	return strings.Join(sections, "\n\n"), errors.Join(errs...)
}

// PublishShoppingList clears the store's tab and writes its current list.
func (s *Service) PublishShoppingList(ctx context.Context, storeID string) error {
	if s.sheets == nil {
		return nil
	}

	list, err := s.shopping.ForStore(ctx, storeID)
	if err != nil {
		return fmt.Errorf("load shopping list: %w", err)
	}

	tab := TabName(list.Store)
	if err := s.sheets.EnsureTab(ctx, tab); err != nil {
		return err
	}
	if err := s.sheets.ClearRange(ctx, tab+"!A:G"); err != nil {
		return err
	}
	if err := s.sheets.WriteRows(ctx, tab+"!A1", export.SheetValues(export.ShoppingRows(list.Lines))); err != nil {
		return err
	}

	s.logger.Info("shopping list published",
		zap.String("store_id", storeID),
		zap.String("tab", tab),
		zap.Int("lines", len(list.Lines)))
	return nil
}

// PublishAll publishes every store's list, continuing past failures.
func (s *Service) PublishAll(ctx context.Context) error {
	if s.sheets == nil {
		return nil
	}

	stores, err := s.stores.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}

	var errs []error
	for _, store := range stores {
		if err := s.PublishShoppingList(ctx, store.ID); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", store.ID, err))
		}
	}
	return errors.Join(errs...)
}

// TabName is the spreadsheet tab that holds a store's list.
func TabName(store models.Store) string {
	if code := strings.TrimSpace(store.Code); code != "" {
		return code
	}
	return "LOJA"
}

// FormatShoppingList renders a list as a chat message.
func FormatShoppingList(list models.ShoppingList, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lista de compras %s (%s) - %s", list.Store.Name, TabName(list.Store), at.Format(dateLayout))

	if len(list.Lines) == 0 {
		b.WriteString("\nNada para comprar.")
		return b.String()
	}

	for i, line := range list.Lines {
		if i == maxDigestRows {
			fmt.Fprintf(&b, "\n... e mais %d itens", len(list.Lines)-maxDigestRows)
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s %s", line.ItemName, Qty(line.ToBuy), line.Unit)
		if line.Supplier != "" {
			fmt.Fprintf(&b, " (%s)", line.Supplier)
		}
	}
	return b.String()
}

// FormatOrder renders an order summary as a chat message.
func FormatOrder(detail models.OrderDetail) string {
	var b strings.Builder
	order := detail.Order
	fmt.Fprintf(&b, "Pedido %s - %s (%s): %s", shortID(order.ID), order.StoreName, TabName(models.Store{Code: order.StoreCode}), statusLabel(order.Status))
	for _, line := range detail.Lines {
		fmt.Fprintf(&b, "\n- %s: %s %s", line.ItemName, Qty(line.ToBuy), line.Unit)
	}
	fmt.Fprintf(&b, "\nTotal: %s", Qty(detail.TotalToBuy))
	return b.String()
}

// FormatOrders renders a short list of order headers.
func FormatOrders(store models.Store, orders []models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedidos abertos %s (%s)", store.Name, TabName(store))

	open := 0
	for _, order := range orders {
		if order.Status == models.OrderReceived {
			continue
		}
		open++
		fmt.Fprintf(&b, "\n- %s %s, %d itens, %s", shortID(order.ID), statusLabel(order.Status), order.LineCount, order.CreatedAt.Format(dateLayout))
	}
	if open == 0 {
		b.WriteString("\nNenhum pedido aberto.")
	}
	return b.String()
}

// Qty formats a quantity with the shortest decimal representation.
func Qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func statusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderDraft:
		return "rascunho"
	case models.OrderSent:
		return "enviado"
	case models.OrderReceived:
		return "recebido"
	}
	return string(status)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
