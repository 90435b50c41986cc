package session

import (
	"context"

	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/models"
)

// AddOrder records a newly placed order. Signed-in orders are created remotely and arrive
// back through the orders stream; anonymous orders only live in the Local Store.
func (m *Manager) AddOrder(ctx context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Identity.Authenticated() {
		order.UserID = m.state.Identity.AccountID
		if err := m.remote.Orders.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		m.state.Orders = prependOrder(m.state.Orders, order)
		return nil
	}

	m.state.Orders = prependOrder(m.state.Orders, order)
	if err := localstore.SaveJSON(ctx, m.store, localstore.KeyOrders, m.state.Orders); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}
	return nil
}

// FindOrder looks an order up in the current session.
func (m *Manager) FindOrder(orderID string) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.state.Orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return models.Order{}, false
}

// UpdateOrderStatus changes the status fields of an order held by this session. It reports
// whether the order was found.
func (m *Manager) UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus, payment enums.PaymentStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	next := make([]models.Order, len(m.state.Orders))
	copy(next, m.state.Orders)
	for i := range next {
		if next[i].ID == orderID {
			next[i].Status = status
			next[i].PaymentStatus = payment
			found = true
		}
	}
	if !found {
		return false
	}
	m.state.Orders = next
	if !m.state.Identity.Authenticated() {
		if err := localstore.SaveJSON(ctx, m.store, localstore.KeyOrders, next); err != nil {
			m.logg.Warn(m.logg.WithField(ctx, "order_id", orderID), "failed to persist order status")
		}
	}
	return true
}

func prependOrder(orders []models.Order, order models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders)+1)
	out = append(out, order)
	for _, o := range orders {
		if o.ID != order.ID {
			out = append(out, o)
		}
	}
	return out
}
