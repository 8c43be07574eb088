package domain

import "time"

// OrderLine — одна позиция заказа: ссылка на товар и количество.
// Строка принадлежит ровно одному заказу и не переживает его.
type OrderLine struct {
	// ID генерируется хранилищем при вставке.
	ID        int64
	OrderID   int64
	ProductID int64
	// Product заполняется при чтении заказа из хранилища (резолв ссылки).
	Product Product
	// Qty — количество единиц товара; create требует > 0,
	// replace-all и add-merge исторически знак не проверяют.
	Qty int32
}

// Order агрегирует строки заказа. Инвариант агрегата: заказ без строк
// не хранится — операция, опустошившая заказ, обязана удалить и его запись.
type Order struct {
	ID        int64
	Lines     []OrderLine
	CreatedAt time.Time
}

// Empty сообщает, остался ли заказ без строк.
func (o *Order) Empty() bool {
	return len(o.Lines) == 0
}

// LineByProduct возвращает индекс первой строки с данным товаром или -1.
func (o *Order) LineByProduct(productID int64) int {
	for i, line := range o.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
