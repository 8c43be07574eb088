// Package orders реализует агрегатные операции над заказом: создание,
// полную замену строк, добавление/слияние позиций, удаление позиции
// и удаление заказа. Правило агрегата: опустевший заказ удаляется.
package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Service — менеджер агрегата заказа поверх domain.Store.
type Service struct {
	store  domain.Store
	events domain.EventPublisher
	logger *log.Entry
}

// NewService конструирует сервис заказов. events может быть nil —
// тогда события жизненного цикла не публикуются.
func NewService(store domain.Store, events domain.EventPublisher, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "orders-service")
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger,
	}
}

// Create создаёт заказ из отображения "товар → количество".
// Каждое количество должно быть > 0, каждый товар — существовать.
// Заказ и строки сохраняются в одной транзакции: при любой ошибке
// частичный заказ не остаётся в хранилище.
func (s *Service) Create(ctx context.Context, quantities map[int64]int32) (domain.Order, error) {
	if len(quantities) == 0 {
		return domain.Order{}, &domain.ValidationError{Field: "products", Reason: "order must contain at least one product"}
	}

	var created domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		lines := make([]domain.OrderLine, 0, len(quantities))
		for _, productID := range sortedProductIDs(quantities) {
			qty := quantities[productID]
			if qty <= 0 {
				return &domain.ValidationError{
					Field:  "quantity",
					Reason: fmt.Sprintf("quantity for product %d must be greater than 0", productID),
				}
			}
			product, err := tx.Products().Get(ctx, productID)
			if err != nil {
				return wrapProductErr(productID, err)
			}
			lines = append(lines, domain.OrderLine{
				ProductID: productID,
				Product:   product,
				Qty:       qty,
			})
		}

		order, err := tx.Orders().Create(ctx, domain.Order{
			Lines:     lines,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		s.logCreateFailure(err)
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"lines":    len(created.Lines),
	}).Info("order created")
	if s.events != nil {
		s.events.OrderCreated(created)
	}

	return created, nil
}

// Get возвращает заказ со строками и товарами или ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	return s.store.Orders().Get(ctx, orderID)
}

// List возвращает все заказы; пустой список — не ошибка.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.store.Orders().List(ctx)
}

// Update заменяет весь набор строк заказа по отображению "товар → количество".
// Количество здесь не проверяется на положительность — асимметрия с Create
// сохранена намеренно. Дубликаты товара в Update невозможны (ключи map),
// но исторически replace-all и не обязан их схлопывать.
func (s *Service) Update(ctx context.Context, orderID int64, quantities map[int64]int32) (domain.Order, error) {
	if len(quantities) == 0 {
		return domain.Order{}, &domain.ValidationError{Field: "products", Reason: "order must contain at least one product"}
	}

	var updated domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Orders().Get(ctx, orderID); err != nil {
			return err
		}

		lines := make([]domain.OrderLine, 0, len(quantities))
		for _, productID := range sortedProductIDs(quantities) {
			product, err := tx.Products().Get(ctx, productID)
			if err != nil {
				return wrapProductErr(productID, err)
			}
			lines = append(lines, domain.OrderLine{
				ProductID: productID,
				Product:   product,
				Qty:       quantities[productID],
			})
		}

		order, err := tx.Orders().ReplaceLines(ctx, orderID, lines)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to update order")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": updated.ID,
		"lines":    len(updated.Lines),
	}).Info("order lines replaced")
	if s.events != nil {
		s.events.OrderUpdated(updated)
	}

	return updated, nil
}

// AddProducts добавляет позиции к заказу. Если строка с товаром уже есть,
// её количество перезаписывается; иначе добавляется новая строка.
// Операция идемпотентна по товару: повторный вызов с той же парой
// не создаёт вторую строку.
func (s *Service) AddProducts(ctx context.Context, orderID int64, quantities map[int64]int32) (domain.Order, error) {
	var updated domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		order, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}

		for _, productID := range sortedProductIDs(quantities) {
			product, err := tx.Products().Get(ctx, productID)
			if err != nil {
				return wrapProductErr(productID, err)
			}
			qty := quantities[productID]
			if idx := order.LineByProduct(productID); idx >= 0 {
				order.Lines[idx].Qty = qty
			} else {
				order.Lines = append(order.Lines, domain.OrderLine{
					ProductID: productID,
					Product:   product,
					Qty:       qty,
				})
			}
		}

		saved, err := tx.Orders().ReplaceLines(ctx, orderID, order.Lines)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to add products to order")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": updated.ID,
		"lines":    len(updated.Lines),
	}).Info("products added to order")
	if s.events != nil {
		s.events.OrderUpdated(updated)
	}

	return updated, nil
}

// RemoveProduct удаляет из заказа все строки с данным товаром
// (дубликаты от create/replace удаляются разом). Если после удаления
// заказ пуст, удаляется и сам заказ: removed=true сигнализирует,
// что заказа больше нет.
func (s *Service) RemoveProduct(ctx context.Context, orderID, productID int64) (domain.Order, bool, error) {
	var (
		updated      domain.Order
		orderRemoved bool
	)
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		order, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}

		kept := make([]domain.OrderLine, 0, len(order.Lines))
		for _, line := range order.Lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		removedAny := len(kept) != len(order.Lines)

		if removedAny && len(kept) == 0 {
			if err := tx.Orders().Delete(ctx, orderID); err != nil {
				return err
			}
			orderRemoved = true
			return nil
		}

		saved, err := tx.Orders().ReplaceLines(ctx, orderID, kept)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"product_id": productID,
		}).Warn("failed to remove product from order")
		return domain.Order{}, false, err
	}

	if orderRemoved {
		s.logger.WithField("order_id", orderID).Info("order emptied and removed")
		if s.events != nil {
			s.events.OrderDeleted(orderID)
		}
		return domain.Order{}, true, nil
	}

	if s.events != nil {
		s.events.OrderUpdated(updated)
	}
	return updated, false, nil
}

// Remove удаляет заказ вместе со строками; отсутствие заказа — ErrOrderNotFound.
func (s *Service) Remove(ctx context.Context, orderID int64) (bool, error) {
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Orders().Get(ctx, orderID); err != nil {
			return err
		}
		return tx.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to remove order")
		return false, err
	}

	s.logger.WithField("order_id", orderID).Info("order removed")
	if s.events != nil {
		s.events.OrderDeleted(orderID)
	}
	return true, nil
}

func (s *Service) logCreateFailure(err error) {
	if domain.IsValidation(err) || domain.IsNotFound(err) {
		s.logger.WithError(err).Warn("order rejected")
		return
	}
	s.logger.WithError(err).Error("failed to create order")
}

// sortedProductIDs фиксирует порядок обхода map, чтобы ошибки и порядок
// строк были детерминированными.
func sortedProductIDs(quantities map[int64]int32) []int64 {
	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// wrapProductErr дополняет ErrProductNotFound идентификатором товара.
func wrapProductErr(productID int64, err error) error {
	if domain.IsNotFound(err) {
		return fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}
	return err
}
