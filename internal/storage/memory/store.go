package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Store — in-memory реализация domain.Store для локальной разработки
// и unit-тестов. Идентификаторы выдаются счётчиками, данные живут
// в map'ах под общим RWMutex.
type Store struct {
	mu sync.RWMutex
	// txMu сериализует транзакции целиком, чтобы откат по snapshot
	// не смешивался с параллельными WithinTx.
	txMu sync.Mutex

	products map[int64]domain.Product
	orders   map[int64]domain.Order

	nextProductID int64
	nextOrderID   int64
	nextLineID    int64
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
}

// Products возвращает репозиторий товаров.
func (s *Store) Products() domain.ProductRepository {
	return &productRepository{store: s}
}

// Orders возвращает репозиторий заказов.
func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{store: s}
}

// WithinTx выполняет fn и при ошибке восстанавливает состояние
// из снимка, снятого перед запуском. Вложенные WithinTx не поддерживаются.
func (s *Store) WithinTx(_ context.Context, fn func(tx domain.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products map[int64]domain.Product
	orders   map[int64]domain.Order

	nextProductID int64
	nextOrderID   int64
	nextLineID    int64
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := storeSnapshot{
		products:      make(map[int64]domain.Product, len(s.products)),
		orders:        make(map[int64]domain.Order, len(s.orders)),
		nextProductID: s.nextProductID,
		nextOrderID:   s.nextOrderID,
		nextLineID:    s.nextLineID,
	}
	for id, product := range s.products {
		snap.products[id] = product
	}
	for id, order := range s.orders {
		snap.orders[id] = cloneOrder(order)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.orders = snap.orders
	s.nextProductID = snap.nextProductID
	s.nextOrderID = snap.nextOrderID
	s.nextLineID = snap.nextLineID
}

// cloneOrder копирует заказ вместе со строками, чтобы изолировать
// хранимое состояние от мутаций вызывающего кода.
func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Lines = make([]domain.OrderLine, len(order.Lines))
	copy(clone.Lines, order.Lines)
	return clone
}

var _ domain.Store = (*Store)(nil)
