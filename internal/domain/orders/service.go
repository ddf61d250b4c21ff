package orders

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/tx"
	"restopos/internal/domain/events"
	"restopos/internal/domain/reports"
	"restopos/pkg/logger"
)

var tracer = otel.Tracer("restopos/orders")

// Config wires a Service.
type Config struct {
	TxManager tx.Manager
	Tables    TableResolver
	Repo      Repository
	Menu      MenuCatalog
	Customers CustomerDirectory // optional
	Effects   *Dispatcher       // optional

	// Location anchors history date ranges; defaults to time.Local.
	Location *time.Location
}

// Service is the order aggregator.
type Service struct {
	txManager tx.Manager
	tables    TableResolver
	repo      Repository
	menu      MenuCatalog
	customers CustomerDirectory
	effects   *Dispatcher
	location  *time.Location
	now       func() time.Time
}

// NewService creates the order service.
func NewService(cfg Config) *Service {
	return &Service{
		txManager: cfg.TxManager,
		tables:    cfg.Tables,
		repo:      cfg.Repo,
		menu:      cfg.Menu,
		customers: cfg.Customers,
		effects:   cfg.Effects,
		location:  cfg.Location,
		now:       time.Now,
	}
}

// mergeResult carries what a committed mutation needs for its side effects.
type mergeResult struct {
	order *Order
	added []LineInput
	event string
}

// PlaceOrder merges a cart into the table's open order, opening one if needed.
// Stock deduction and notification run after commit and cannot fail the call.
func (s *Service) PlaceOrder(ctx context.Context, sub CartSubmission) (*Order, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "orders.PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("table.code", sub.TableCode),
		attribute.String("customer.type", string(sub.CustomerType)),
		attribute.Int("lines", len(sub.Items)),
	)

	var (
		res    mergeResult
		ticket *Ticket
	)
	// No-op once the ticket is resolved; releases it on error or panic.
	defer func() { s.effects.Cancel(ticket) }()

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		table, err := s.tables.Resolve(ctx, sub.TableCode, sub.CustomerType)
		if err != nil {
			return err
		}

		if err := s.repo.LockTable(ctx, table.ID); err != nil {
			return fmt.Errorf("lock table: %w", err)
		}
		if ticket == nil {
			ticket = s.effects.Reserve()
		}

		customer, err := s.customerFields(ctx, sub.CustomerName, sub.MobileNumber)
		if err != nil {
			return err
		}

		order, err := s.repo.FindOpenByTable(ctx, table.ID)
		if err != nil {
			return fmt.Errorf("find open order: %w", err)
		}

		if order == nil {
			order = newOrder(table, customer, s.now())
			if err := s.repo.Create(ctx, order); err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			logger.Info(ctx, "order opened", "order_id", order.ID, "table_code", table.TableCode)
		} else if upd := customer.missingFrom(order); !upd.empty() {
			if err := s.repo.UpdateCustomer(ctx, order.ID, upd.ID, upd.Name, upd.Phone); err != nil {
				return fmt.Errorf("update order customer: %w", err)
			}
			upd.applyTo(order)
		}
		order.TableCode = table.TableCode

		res, err = s.merge(ctx, order, sub.Items)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperror.Internalize(err)
	}

	span.SetAttributes(attribute.String("order.id", res.order.ID.String()))
	s.effects.OrderChanged(ctx, ticket, res.event, res.order, res.added)
	return res.order, nil
}

// merge applies lines to an open order and recomputes its total from all rows.
// Unknown menu items are skipped.
func (s *Service) merge(ctx context.Context, order *Order, lines []LineInput) (mergeResult, error) {
	prior, err := s.repo.CountItems(ctx, order.ID)
	if err != nil {
		return mergeResult{}, fmt.Errorf("count items: %w", err)
	}

	added := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		item, err := s.menu.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return mergeResult{}, fmt.Errorf("get menu item %s: %w", line.MenuItemID, err)
		}
		if item == nil {
			logger.Warn(ctx, "skipping unknown menu item", "order_id", order.ID, "menu_item_id", line.MenuItemID)
			continue
		}
		if err := s.repo.UpsertItem(ctx, order.ID, line.MenuItemID, line.Quantity, item.Price); err != nil {
			return mergeResult{}, fmt.Errorf("upsert item %s: %w", line.MenuItemID, err)
		}
		added = append(added, line)
	}

	if err := s.refresh(ctx, order); err != nil {
		return mergeResult{}, err
	}

	event := events.OrderUpdated
	if order.Status == StatusPending && prior == 0 {
		event = events.OrderNew
	}
	return mergeResult{order: order, added: added, event: event}, nil
}

// refresh recomputes the stored total and reloads the lines.
func (s *Service) refresh(ctx context.Context, order *Order) error {
	total, err := s.repo.RecomputeTotal(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("recompute total: %w", err)
	}
	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	order.TotalAmount = total
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []OrderItem{}
	}
	return nil
}

func (s *Service) customerFields(ctx context.Context, name, phone string) (customerFields, error) {
	c := customerFields{Name: nonBlank(name), Phone: nonBlank(phone)}
	if c.Phone == nil || s.customers == nil {
		return c, nil
	}
	known, err := s.customers.FindByPhone(ctx, *c.Phone)
	if err != nil {
		return c, fmt.Errorf("find customer by phone: %w", err)
	}
	if known != nil {
		cid := known.ID
		c.ID = &cid
		if c.Name == nil {
			c.Name = nonBlank(known.FullName)
		}
	}
	return c, nil
}

// GetOrder returns the order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.Internalize(err)
	}
	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, apperror.Internalize(err)
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []OrderItem{}
	}
	return order, nil
}

// ListActive returns all open orders, oldest first, with their lines.
func (s *Service) ListActive(ctx context.Context) ([]*Order, error) {
	list, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, apperror.Internalize(err)
	}
	if len(list) == 0 {
		return []*Order{}, nil
	}
	if err := s.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachItems loads the lines of every order in one query.
func (s *Service) attachItems(ctx context.Context, list []*Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]id.ID, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}
	items, err := s.repo.ListItems(ctx, ids...)
	if err != nil {
		return apperror.Internalize(err)
	}
	for _, o := range list {
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []OrderItem{}
		}
	}
	return nil
}

// ListHistory returns closed orders for an optional date range, using the
// same whole-day window rules as the reports.
func (s *Service) ListHistory(ctx context.Context, start, end string) (*History, error) {
	period, err := reports.ParseDateRange(start, end, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListClosed(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, apperror.Internalize(err)
	}
	if list == nil {
		list = []*Order{}
	}
	if err := s.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &History{Period: period, Orders: list}, nil
}

// GetBill prices an order from its stored lines.
func (s *Service) GetBill(ctx context.Context, orderID id.ID) (*Bill, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewBill(order), nil
}

// AddItems merges lines into a specific open order.
func (s *Service) AddItems(ctx context.Context, orderID id.ID, lines []LineInput) (*Order, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	return s.mutateOpen(ctx, orderID, func(ctx context.Context, order *Order) (mergeResult, error) {
		return s.merge(ctx, order, lines)
	})
}

// ReduceItem lowers a line's quantity by one, removing the line at zero.
func (s *Service) ReduceItem(ctx context.Context, orderID, menuItemID id.ID) (*Order, error) {
	return s.mutateOpen(ctx, orderID, func(ctx context.Context, order *Order) (mergeResult, error) {
		found, err := s.repo.DecrementItem(ctx, orderID, menuItemID)
		if err != nil {
			return mergeResult{}, fmt.Errorf("decrement item: %w", err)
		}
		if !found {
			return mergeResult{}, apperror.NewNotFound("order item", menuItemID)
		}
		if err := s.refresh(ctx, order); err != nil {
			return mergeResult{}, err
		}
		return mergeResult{order: order, event: events.OrderUpdated}, nil
	})
}

// RemoveItem deletes a line from an open order.
func (s *Service) RemoveItem(ctx context.Context, orderID, menuItemID id.ID) (*Order, error) {
	return s.mutateOpen(ctx, orderID, func(ctx context.Context, order *Order) (mergeResult, error) {
		found, err := s.repo.DeleteItem(ctx, orderID, menuItemID)
		if err != nil {
			return mergeResult{}, fmt.Errorf("delete item: %w", err)
		}
		if !found {
			return mergeResult{}, apperror.NewNotFound("order item", menuItemID)
		}
		if err := s.refresh(ctx, order); err != nil {
			return mergeResult{}, err
		}
		return mergeResult{order: order, event: events.OrderUpdated}, nil
	})
}

// UpdateStatus moves an open order along the kitchen workflow or cancels it.
// Setting the current status again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, to Status) (*Order, error) {
	if to == StatusPaid {
		return nil, apperror.NewInvalidInput("status", "orders are marked paid by payment capture")
	}

	return s.mutateOpen(ctx, orderID, func(ctx context.Context, order *Order) (mergeResult, error) {
		from := order.Status
		if from != to {
			if !CanTransition(from, to) {
				return mergeResult{}, apperror.NewInvalidTransition(string(from), string(to))
			}
			if err := s.repo.UpdateStatus(ctx, order.ID, to); err != nil {
				return mergeResult{}, fmt.Errorf("update status: %w", err)
			}
			order.Status = to
			order.UpdatedAt = s.now()
		}

		items, err := s.repo.ListItems(ctx, order.ID)
		if err != nil {
			return mergeResult{}, fmt.Errorf("list items: %w", err)
		}
		order.Items = items[order.ID]
		if order.Items == nil {
			order.Items = []OrderItem{}
		}

		if from == to {
			return mergeResult{order: order}, nil
		}
		logger.Info(ctx, "order status changed", "order_id", order.ID, "from", from, "to", to)
		return mergeResult{order: order, event: events.OrderStatusChanged}, nil
	})
}

// mutateOpen runs fn on an open order under the same per-table lock that
// cart submissions take, then dispatches side effects after commit. The
// notification slot is reserved under the lock to keep commit order.
func (s *Service) mutateOpen(ctx context.Context, orderID id.ID, fn func(ctx context.Context, order *Order) (mergeResult, error)) (*Order, error) {
	var (
		res    mergeResult
		ticket *Ticket
	)
	// No-op once the ticket is resolved; releases it on error or panic.
	defer func() { s.effects.Cancel(ticket) }()

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.repo.LockTable(ctx, order.TableID); err != nil {
			return fmt.Errorf("lock table: %w", err)
		}
		if ticket == nil {
			ticket = s.effects.Reserve()
		}
		// Re-read under the lock; a concurrent payment or cancel may have closed it.
		order, err = s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.IsOpen() {
			return apperror.NewOrderClosed(order.ID, string(order.Status))
		}
		res, err = fn(ctx, order)
		return err
	})
	if err != nil {
		return nil, apperror.Internalize(err)
	}
	if res.event != "" {
		s.effects.OrderChanged(ctx, ticket, res.event, res.order, res.added)
	}
	return res.order, nil
}
