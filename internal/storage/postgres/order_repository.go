package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderRepository — PostgreSQL-реализация OrderRepository.
// Строки заказа живут в order_lines с каскадным удалением по заказу.
type orderRepository struct {
	q querier
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	err := r.q.QueryRowContext(opCtx, `
		INSERT INTO orders (created_at)
		VALUES ($1)
		RETURNING id
	`, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	lines, err := r.insertLines(opCtx, order.ID, order.Lines)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.q.QueryRowContext(opCtx, `
		SELECT id, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(opCtx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(opCtx, `
		SELECT id, created_at
		FROM orders
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := r.scanOrders(opCtx, rows)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) ReplaceLines(ctx context.Context, orderID int64, lines []domain.OrderLine) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := r.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if _, err := r.q.ExecContext(opCtx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return domain.Order{}, fmt.Errorf("clear order lines: %w", err)
	}

	inserted, err := r.insertLines(opCtx, orderID, lines)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = inserted

	return order, nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(opCtx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) DeleteLinesByProduct(ctx context.Context, productID int64) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.q.ExecContext(opCtx, `DELETE FROM order_lines WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete order lines by product: %w", err)
	}
	return nil
}

func (r *orderRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(opCtx, `
		SELECT DISTINCT o.id, o.created_at
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		WHERE l.product_id = $1
		ORDER BY o.id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list orders by product: %w", err)
	}
	defer rows.Close()

	orders, err := r.scanOrders(opCtx, rows)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// insertLines вставляет строки заказа; нарушение внешнего ключа на товар
// транслируется в ErrProductNotFound.
func (r *orderRepository) insertLines(ctx context.Context, orderID int64, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	inserted := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		line.OrderID = orderID
		err := r.q.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id
		`, orderID, line.ProductID, line.Qty).Scan(&line.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrProductNotFound)
			}
			return nil, fmt.Errorf("insert order line: %w", err)
		}
		inserted = append(inserted, line)
	}
	return inserted, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT l.id, l.order_id, l.product_id, l.quantity,
		       p.name, p.description, p.price
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.Qty,
			&line.Product.Name, &line.Product.Description, &line.Product.Price,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.Product.ID = line.ProductID
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func (r *orderRepository) scanOrders(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
