// Package rest — HTTP-поверхность API. Слой отвечает только за
// маршрутизацию, сериализацию и перевод доменных ошибок в статус-коды;
// бизнес-правила живут в менеджерах.
package rest

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/service/products"
)

// Server собирает обработчики API поверх менеджеров заказов и товаров.
type Server struct {
	orders   *orders.Service
	products *products.Service
	metrics  *metrics.HTTPMetrics
	logger   *log.Entry
}

// NewServer конструирует HTTP-сервер API. metrics может быть nil.
func NewServer(
	ordersSvc *orders.Service,
	productsSvc *products.Service,
	httpMetrics *metrics.HTTPMetrics,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Server{
		orders:   ordersSvc,
		products: productsSvc,
		metrics:  httpMetrics,
		logger:   logger,
	}
}

// Handler возвращает корневой http.Handler со всеми маршрутами API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "POST /api/products", s.handleCreateProduct)
	s.handle(mux, "GET /api/products", s.handleListProducts)
	s.handle(mux, "GET /api/products/{id}", s.handleGetProduct)
	s.handle(mux, "PUT /api/products/{id}", s.handleUpdateProduct)
	s.handle(mux, "DELETE /api/products/{id}", s.handleDeleteProduct)

	s.handle(mux, "POST /api/orders", s.handleCreateOrder)
	s.handle(mux, "GET /api/orders", s.handleListOrders)
	s.handle(mux, "GET /api/orders/{id}", s.handleGetOrder)
	s.handle(mux, "PUT /api/orders/{orderId}", s.handleUpdateOrder)
	s.handle(mux, "DELETE /api/orders/{orderId}", s.handleRemoveOrder)
	s.handle(mux, "POST /api/orders/{orderId}/products", s.handleAddProducts)
	s.handle(mux, "DELETE /api/orders/{orderId}/products/{productId}", s.handleRemoveProductFromOrder)

	return s.withRequestID(mux)
}

// handle регистрирует обработчик, оборачивая его метриками и логом
// под меткой шаблона маршрута (а не сырого пути).
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.instrument(pattern, h))
}
