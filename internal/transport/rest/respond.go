package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

type envelope map[string]any

// productJSON — внешнее представление товара.
type productJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// orderLineJSON — внешнее представление строки заказа с резолвленным товаром.
type orderLineJSON struct {
	ID       int64       `json:"id"`
	Product  productJSON `json:"product"`
	Quantity int32       `json:"quantity"`
}

// orderJSON — внешнее представление заказа.
type orderJSON struct {
	ID        int64           `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Lines     []orderLineJSON `json:"lines"`
}

func toProductJSON(product domain.Product) productJSON {
	return productJSON{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
	}
}

func toOrderJSON(order domain.Order) orderJSON {
	lines := make([]orderLineJSON, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineJSON{
			ID:       line.ID,
			Product:  toProductJSON(line.Product),
			Quantity: line.Qty,
		})
	}
	return orderJSON{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Lines:     lines,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{
		"status":  statusFailure,
		"message": message,
	})
}

// pathID извлекает числовой идентификатор из wildcard-сегмента пути.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
