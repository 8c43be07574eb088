package domain

// EventPublisher публикует события жизненного цикла сущностей наружу.
// Публикация — fire-and-forget: ошибки логируются реализацией и
// никогда не проваливают бизнес-операцию.
type EventPublisher interface {
	OrderCreated(order Order)
	OrderUpdated(order Order)
	OrderDeleted(orderID int64)
	ProductCreated(product Product)
	ProductUpdated(product Product)
	ProductDeleted(productID int64)
}
