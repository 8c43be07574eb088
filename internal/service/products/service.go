// Package products реализует управление каталогом: CRUD товара и
// каскадное удаление, выметающее строки заказов и опустевшие заказы.
package products

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Service — менеджер товаров поверх domain.Store.
type Service struct {
	store  domain.Store
	events domain.EventPublisher
	logger *log.Entry
}

// NewService конструирует сервис каталога. events может быть nil.
func NewService(store domain.Store, events domain.EventPublisher, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "products-service")
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger,
	}
}

// Create валидирует поля товара и сохраняет его, возвращая запись
// со сгенерированным идентификатором.
func (s *Service) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := product.Validate(); err != nil {
		s.logger.WithError(err).Warn("product rejected")
		return domain.Product{}, err
	}

	created, err := s.store.Products().Create(ctx, product)
	if err != nil {
		s.logger.WithError(err).Error("failed to create product")
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", created.ID).Info("product created")
	if s.events != nil {
		s.events.ProductCreated(created)
	}
	return created, nil
}

// Update перезаписывает name/description/price существующего товара.
// Валидируются входящие данные (а не текущая запись, как делал
// исторический вариант, где проверка была холостой).
func (s *Service) Update(ctx context.Context, id int64, updated domain.Product) (domain.Product, error) {
	if err := updated.Validate(); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("product update rejected")
		return domain.Product{}, err
	}

	var result domain.Product
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		existing, err := tx.Products().Get(ctx, id)
		if err != nil {
			return err
		}

		existing.Name = updated.Name
		existing.Description = updated.Description
		existing.Price = updated.Price
		if err := tx.Products().Update(ctx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("failed to update product")
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", id).Info("product updated")
	if s.events != nil {
		s.events.ProductUpdated(result)
	}
	return result, nil
}

// Get возвращает товар или ErrProductNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.store.Products().Get(ctx, id)
}

// List возвращает все товары; пустой каталог — не ошибка.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products().List(ctx)
}

// Delete удаляет товар каскадно: находит заказы, где он встречается,
// массово удаляет его строки во всех заказах, удаляет сам товар и
// затем удаляет заказы, оставшиеся без строк. Всё выполняется в одной
// транзакции — либо каскад завершается целиком, либо состояние
// остаётся прежним.
func (s *Service) Delete(ctx context.Context, productID int64) (bool, error) {
	var emptiedOrders []int64
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Products().Get(ctx, productID); err != nil {
			return err
		}

		affected, err := tx.Orders().ListByProduct(ctx, productID)
		if err != nil {
			return err
		}

		if err := tx.Orders().DeleteLinesByProduct(ctx, productID); err != nil {
			return err
		}

		if err := tx.Products().Delete(ctx, productID); err != nil {
			return err
		}

		for _, order := range affected {
			current, err := tx.Orders().Get(ctx, order.ID)
			if err != nil {
				return err
			}
			if !current.Empty() {
				continue
			}
			if err := tx.Orders().Delete(ctx, order.ID); err != nil {
				return err
			}
			emptiedOrders = append(emptiedOrders, order.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("failed to delete product")
		return false, err
	}

	s.logger.WithFields(log.Fields{
		"product_id":     productID,
		"emptied_orders": len(emptiedOrders),
	}).Info("product deleted")
	if s.events != nil {
		s.events.ProductDeleted(productID)
		for _, orderID := range emptiedOrders {
			s.events.OrderDeleted(orderID)
		}
	}
	return true, nil
}
