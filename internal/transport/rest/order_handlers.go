package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// decodeQuantities читает тело вида {"10": 2, "11": 1} — отображение
// идентификатора товара в количество.
func decodeQuantities(r *http.Request) (map[int64]int32, error) {
	var quantities map[int64]int32
	if err := json.NewDecoder(r.Body).Decode(&quantities); err != nil {
		return nil, err
	}
	return quantities, nil
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	quantities, err := decodeQuantities(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.orders.Create(r.Context(), quantities)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			writeFailure(w, http.StatusBadRequest, err.Error())
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while creating the order.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"status":  statusSuccess,
		"message": "Order created successfully.",
		"orderId": created.ID,
	})
}

func (s *Server) handleAddProducts(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}

	quantities, err := decodeQuantities(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := s.orders.AddProducts(r.Context(), orderID, quantities); err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Order or Product not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while adding products to the order.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"status":  statusSuccess,
		"message": "Products added to order successfully.",
	})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}

	quantities, err := decodeQuantities(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := s.orders.Update(r.Context(), orderID, quantities); err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Order or Product not found.")
		case domain.IsValidation(err):
			writeFailure(w, http.StatusBadRequest, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while updating the order.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "Order updated successfully.",
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "id")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := s.orders.Get(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			writeFailure(w, http.StatusNotFound, "Order not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while loading the order.")
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderJSON(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.orders.List(r.Context())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "An error occurred while loading orders.")
		return
	}

	result := make([]orderJSON, 0, len(list))
	for _, order := range list {
		result = append(result, toOrderJSON(order))
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRemoveProductFromOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}
	productID, ok := pathID(r, "productId")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, _, err := s.orders.RemoveProduct(r.Context(), orderID, productID); err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Order or Product not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while removing the product from the order.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "Product removed from order successfully.",
	})
}

func (s *Server) handleRemoveOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if _, err := s.orders.Remove(r.Context(), orderID); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			writeFailure(w, http.StatusNotFound, "Order not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while deleting the order.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "Order deleted successfully.",
	})
}
