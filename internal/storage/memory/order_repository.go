package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderRepository — map-реализация OrderRepository поверх Store.
type orderRepository struct {
	store *Store
}

func (r *orderRepository) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextOrderID++
	order.ID = r.store.nextOrderID
	order.Lines = r.numberLines(order.ID, order.Lines)

	r.store.orders[order.ID] = cloneOrder(order)
	return r.resolve(order), nil
}

func (r *orderRepository) Get(_ context.Context, id int64) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.resolve(cloneOrder(order)), nil
}

func (r *orderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		result = append(result, r.resolve(cloneOrder(order)))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *orderRepository) ReplaceLines(_ context.Context, orderID int64, lines []domain.OrderLine) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Lines = r.numberLines(orderID, lines)

	r.store.orders[orderID] = cloneOrder(order)
	return r.resolve(order), nil
}

func (r *orderRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.store.orders, id)
	return nil
}

func (r *orderRepository) DeleteLinesByProduct(_ context.Context, productID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, order := range r.store.orders {
		kept := order.Lines[:0:0]
		for _, line := range order.Lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		if len(kept) == len(order.Lines) {
			continue
		}
		order.Lines = kept
		r.store.orders[id] = order
	}
	return nil
}

func (r *orderRepository) ListByProduct(_ context.Context, productID int64) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.store.orders {
		if (&order).LineByProduct(productID) >= 0 {
			result = append(result, r.resolve(cloneOrder(order)))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// numberLines выдаёт строкам идентификаторы и привязывает их к заказу.
// Вызывается под записывающим локом.
func (r *orderRepository) numberLines(orderID int64, lines []domain.OrderLine) []domain.OrderLine {
	numbered := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		r.store.nextLineID++
		line.ID = r.store.nextLineID
		line.OrderID = orderID
		numbered[i] = line
	}
	return numbered
}

// resolve подставляет в строки актуальные снимки товаров.
// Вызывается под локом.
func (r *orderRepository) resolve(order domain.Order) domain.Order {
	for i := range order.Lines {
		if product, ok := r.store.products[order.Lines[i].ProductID]; ok {
			order.Lines[i].Product = product
		}
	}
	return order
}

var _ domain.OrderRepository = (*orderRepository)(nil)
