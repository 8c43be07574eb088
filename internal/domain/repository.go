package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар и возвращает его со сгенерированным ID.
	Create(ctx context.Context, product Product) (Product, error)
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// List возвращает все товары; пустой каталог — не ошибка.
	List(ctx context.Context) ([]Product, error)
	// Update перезаписывает поля существующего товара.
	Update(ctx context.Context, product Product) error
	// Delete удаляет запись товара или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository описывает требования к хранилищу заказов и их строк.
type OrderRepository interface {
	// Create сохраняет заказ вместе со строками и возвращает его
	// со сгенерированными идентификаторами.
	Create(ctx context.Context, order Order) (Order, error)
	// Get возвращает заказ со строками и резолвленными товарами
	// или ErrOrderNotFound.
	Get(ctx context.Context, id int64) (Order, error)
	// List возвращает все заказы; пустой список — не ошибка.
	List(ctx context.Context) ([]Order, error)
	// ReplaceLines заменяет весь набор строк заказа и возвращает
	// обновлённый заказ.
	ReplaceLines(ctx context.Context, orderID int64, lines []OrderLine) (Order, error)
	// Delete удаляет заказ вместе со строками.
	Delete(ctx context.Context, id int64) error
	// DeleteLinesByProduct массово удаляет строки, ссылающиеся на товар,
	// во всех заказах.
	DeleteLinesByProduct(ctx context.Context, productID int64) error
	// ListByProduct возвращает заказы, в которых товар встречается
	// хотя бы в одной строке (без дубликатов).
	ListByProduct(ctx context.Context, productID int64) ([]Order, error)
}

// Store объединяет репозитории и даёт транзакционную границу.
// Многошаговые операции менеджеров выполняются внутри WithinTx:
// либо фиксируются все шаги, либо ни один.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	// WithinTx выполняет fn над Store, привязанным к одной транзакции.
	// Ошибка fn откатывает все изменения.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
