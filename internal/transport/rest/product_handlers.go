package rest

import (
	"encoding/json"
	"net/http"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// productPayload — тело запросов create/update товара.
type productPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.products.Create(r.Context(), domain.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
	})
	if err != nil {
		switch {
		case domain.IsValidation(err):
			writeFailure(w, http.StatusBadRequest, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while creating the product.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"status":    statusSuccess,
		"message":   "Product created successfully.",
		"productId": created.ID,
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := s.products.Update(r.Context(), id, domain.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
	}); err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Product not found.")
		case domain.IsValidation(err):
			writeFailure(w, http.StatusBadRequest, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while updating the product.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "Product updated successfully.",
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := s.products.Get(r.Context(), id)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Product not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while loading the product.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"product": toProductJSON(product),
	})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.List(r.Context())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "An error occurred while loading products.")
		return
	}

	result := make([]productJSON, 0, len(list))
	for _, product := range list {
		result = append(result, toProductJSON(product))
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":   statusSuccess,
		"products": result,
	})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := s.products.Delete(r.Context(), id); err != nil {
		switch {
		case domain.IsNotFound(err):
			writeFailure(w, http.StatusNotFound, "Product not found.")
		default:
			writeFailure(w, http.StatusInternalServerError, "An error occurred while deleting the product.")
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "Product deleted successfully.",
	})
}
