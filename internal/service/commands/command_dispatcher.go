package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

const helpText = "Comandos disponiveis:\n" +
	"/lista <codigo da loja> - lista de compras atual\n" +
	"/pedidos <codigo da loja> - pedidos em aberto\n" +
	"/ajuda - esta mensagem"

// StoreFinder resolves a store by its short code.
type StoreFinder interface {
	FindStoreByCode(ctx context.Context, code string) (models.Store, error)
}

// ShoppingSource derives the shopping list of a store.
type ShoppingSource interface {
	ForStore(ctx context.Context, storeID string) (models.ShoppingList, error)
}

// OrderLister lists the orders of a store, newest first.
type OrderLister interface {
	ListOrders(ctx context.Context, storeID string) ([]models.Order, error)
}

// Dispatcher answers parsed chat commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface. Every command is read-only.
type Service struct {
	stores   StoreFinder
	shopping ShoppingSource
	orders   OrderLister
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
}

// NewService constructs a command dispatcher.
func NewService(stores StoreFinder, shopping ShoppingSource, orders OrderLister, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		stores:   stores,
		shopping: shopping,
		orders:   orders,
		logger:   logger,
		now:      time.Now,
		location: loc,
	}
}

// HandleCommand runs cmd and returns the reply text. Errors wrapping
// ErrInvalidArguments or ErrStoreNotFound carry a message meant for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp:
		return helpText, nil
	case models.CommandShoppingList:
		store, err := s.resolveStore(ctx, cmd)
		if err != nil {
			return "", err
		}
		list, err := s.shopping.ForStore(ctx, store.ID)
		if err != nil {
			return "", fmt.Errorf("load shopping list: %w", err)
		}
		return reporting.FormatShoppingList(list, s.now().In(s.location)), nil
	case models.CommandOrders:
		store, err := s.resolveStore(ctx, cmd)
		if err != nil {
			return "", err
		}
		orders, err := s.orders.ListOrders(ctx, store.ID)
		if err != nil {
			return "", fmt.Errorf("list orders: %w", err)
		}
		return reporting.FormatOrders(store, orders), nil
	default:
		return "Comando desconhecido.\n" + helpText, nil
	}
}

// ReplyForError turns a command failure into text for the sender. ok is false
// for internal failures that should not be echoed.
func ReplyForError(err error) (reply string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return fmt.Sprintf("%s\n%s", strings.TrimPrefix(err.Error(), ErrInvalidArguments.Error()+": "), helpText), true
	case errors.Is(err, models.ErrStoreNotFound):
		return "Loja nao encontrada.", true
	}
	return "", false
}

func (s *Service) resolveStore(ctx context.Context, cmd models.Command) (models.Store, error) {
	if len(cmd.Args) == 0 {
		return models.Store{}, fmt.Errorf("%w: informe o codigo da loja, ex: /%s CT", ErrInvalidArguments, cmd.Type)
	}
	return s.stores.FindStoreByCode(ctx, cmd.Args[0])
}
