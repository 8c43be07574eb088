package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/metrics"
	ordersvc "github.com/vladislavdragonenkov/orders/internal/service/orders"
	productsvc "github.com/vladislavdragonenkov/orders/internal/service/products"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/transport/rest"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	logger := loggerForTests()
	orders := ordersvc.NewService(store, nil, logger.WithField("layer", "orders"))
	products := productsvc.NewService(store, nil, logger.WithField("layer", "products"))
	server := rest.NewServer(orders, products, nil, logger.WithField("layer", "http"))
	return server.Handler()
}

func doJSON(t *testing.T, api http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	api.ServeHTTP(recorder, req)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

// createProduct — хелпер: создаёт товар через API и возвращает его id.
func createProduct(t *testing.T, api http.Handler, name string) int64 {
	t.Helper()
	recorder := doJSON(t, api, http.MethodPost, "/api/products", map[string]any{
		"name":        name,
		"description": "test product",
		"price":       9.99,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "success", payload["status"])
	return int64(payload["productId"].(float64))
}

// createOrder — хелпер: создаёт заказ из пар "товар → количество".
func createOrder(t *testing.T, api http.Handler, quantities map[string]int32) int64 {
	t.Helper()
	recorder := doJSON(t, api, http.MethodPost, "/api/orders", quantities)
	require.Equal(t, http.StatusCreated, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "Order created successfully.", payload["message"])
	return int64(payload["orderId"].(float64))
}

func TestAPI_CreateProduct(t *testing.T) {
	api := newTestAPI(t)

	id := createProduct(t, api, "Keyboard")
	require.NotZero(t, id)
}

func TestAPI_CreateProductValidation(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodPost, "/api/products", map[string]any{
		"name":        "",
		"description": "x",
		"price":       1,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "failure", payload["status"])
}

func TestAPI_CreateProductBadJSON(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte("{broken")))
	recorder := httptest.NewRecorder()
	api.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAPI_GetProduct(t *testing.T) {
	api := newTestAPI(t)
	id := createProduct(t, api, "Keyboard")

	recorder := doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	product := payload["product"].(map[string]any)
	require.Equal(t, "Keyboard", product["name"])
}

func TestAPI_GetProductNotFound(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodGet, "/api/products/999", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "Product not found.", payload["message"])
}

func TestAPI_ListProductsEmpty(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "success", payload["status"])
	require.Empty(t, payload["products"])
	require.NotNil(t, payload["products"], "empty catalog must serialize as [] not null")
}

func TestAPI_UpdateProduct(t *testing.T) {
	api := newTestAPI(t)
	id := createProduct(t, api, "Keyboard")

	recorder := doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/products/%d", id), map[string]any{
		"name":        "Keyboard v2",
		"description": "updated",
		"price":       19.99,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil)
	payload := decodeEnvelope(t, recorder)
	product := payload["product"].(map[string]any)
	require.Equal(t, "Keyboard v2", product["name"])
}

func TestAPI_UpdateProductNotFound(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodPut, "/api/products/999", map[string]any{
		"name":        "Keyboard",
		"description": "x",
		"price":       1,
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAPI_CreateOrder(t *testing.T) {
	api := newTestAPI(t)
	productID := createProduct(t, api, "Keyboard")

	orderID := createOrder(t, api, map[string]int32{fmt.Sprint(productID): 2})
	require.NotZero(t, orderID)

	recorder := doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var order struct {
		ID    int64 `json:"id"`
		Lines []struct {
			Quantity int32 `json:"quantity"`
			Product  struct {
				ID int64 `json:"id"`
			} `json:"product"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &order))
	require.Equal(t, orderID, order.ID)
	require.Len(t, order.Lines, 1)
	require.Equal(t, productID, order.Lines[0].Product.ID)
	require.Equal(t, int32(2), order.Lines[0].Quantity)
}

func TestAPI_CreateOrderZeroQuantity(t *testing.T) {
	api := newTestAPI(t)
	productID := createProduct(t, api, "Keyboard")

	recorder := doJSON(t, api, http.MethodPost, "/api/orders", map[string]int32{
		fmt.Sprint(productID): 0,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAPI_CreateOrderUnknownProduct(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodPost, "/api/orders", map[string]int32{"999": 1})
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAPI_ListOrdersEmpty(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, "[]", recorder.Body.String())
}

func TestAPI_AddProductsToOrder(t *testing.T) {
	api := newTestAPI(t)
	keyboard := createProduct(t, api, "Keyboard")
	mouse := createProduct(t, api, "Mouse")
	orderID := createOrder(t, api, map[string]int32{fmt.Sprint(keyboard): 1})

	recorder := doJSON(t, api, http.MethodPost, fmt.Sprintf("/api/orders/%d/products", orderID), map[string]int32{
		fmt.Sprint(mouse): 3,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "Products added to order successfully.", payload["message"])
}

func TestAPI_AddProductsOrderNotFound(t *testing.T) {
	api := newTestAPI(t)
	productID := createProduct(t, api, "Keyboard")

	recorder := doJSON(t, api, http.MethodPost, "/api/orders/999/products", map[string]int32{
		fmt.Sprint(productID): 1,
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "Order or Product not found.", payload["message"])
}

func TestAPI_UpdateOrder(t *testing.T) {
	api := newTestAPI(t)
	keyboard := createProduct(t, api, "Keyboard")
	mouse := createProduct(t, api, "Mouse")
	orderID := createOrder(t, api, map[string]int32{fmt.Sprint(keyboard): 1})

	recorder := doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID), map[string]int32{
		fmt.Sprint(mouse): 4,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	var order struct {
		Lines []struct {
			Product struct {
				ID int64 `json:"id"`
			} `json:"product"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &order))
	require.Len(t, order.Lines, 1)
	require.Equal(t, mouse, order.Lines[0].Product.ID)
}

func TestAPI_RemoveProductFromOrder(t *testing.T) {
	api := newTestAPI(t)
	keyboard := createProduct(t, api, "Keyboard")
	mouse := createProduct(t, api, "Mouse")
	orderID := createOrder(t, api, map[string]int32{
		fmt.Sprint(keyboard): 1,
		fmt.Sprint(mouse):    1,
	})

	recorder := doJSON(t, api, http.MethodDelete,
		fmt.Sprintf("/api/orders/%d/products/%d", orderID, keyboard), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeEnvelope(t, recorder)
	require.Equal(t, "Product removed from order successfully.", payload["message"])
}

func TestAPI_RemoveLastProductDeletesOrder(t *testing.T) {
	api := newTestAPI(t)
	productID := createProduct(t, api, "Keyboard")
	orderID := createOrder(t, api, map[string]int32{fmt.Sprint(productID): 1})

	recorder := doJSON(t, api, http.MethodDelete,
		fmt.Sprintf("/api/orders/%d/products/%d", orderID, productID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAPI_DeleteOrder(t *testing.T) {
	api := newTestAPI(t)
	productID := createProduct(t, api, "Keyboard")
	orderID := createOrder(t, api, map[string]int32{fmt.Sprint(productID): 1})

	recorder := doJSON(t, api, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, api, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAPI_DeleteProductCascades(t *testing.T) {
	api := newTestAPI(t)
	keyboard := createProduct(t, api, "Keyboard")
	mouse := createProduct(t, api, "Mouse")
	onlyKeyboard := createOrder(t, api, map[string]int32{fmt.Sprint(keyboard): 1})
	mixed := createOrder(t, api, map[string]int32{
		fmt.Sprint(keyboard): 1,
		fmt.Sprint(mouse):    2,
	})

	recorder := doJSON(t, api, http.MethodDelete, fmt.Sprintf("/api/products/%d", keyboard), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Заказ, состоявший только из удалённого товара, исчез.
	recorder = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/orders/%d", onlyKeyboard), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	// Смешанный заказ остался без строк удалённого товара.
	recorder = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/orders/%d", mixed), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var order struct {
		Lines []struct {
			Product struct {
				ID int64 `json:"id"`
			} `json:"product"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &order))
	require.Len(t, order.Lines, 1)
	require.Equal(t, mouse, order.Lines[0].Product.ID)
}

func TestAPI_InvalidPathID(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodGet, "/api/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, api, http.MethodGet, "/api/orders/-1", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAPI_RequestIDHeader(t *testing.T) {
	api := newTestAPI(t)

	recorder := doJSON(t, api, http.MethodGet, "/api/products", nil)
	require.NotEmpty(t, recorder.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-Request-Id", "req-123")
	recorder = httptest.NewRecorder()
	api.ServeHTTP(recorder, req)
	require.Equal(t, "req-123", recorder.Header().Get("X-Request-Id"))
}

func TestAPI_MetricsRecorded(t *testing.T) {
	store := memory.NewStore()
	logger := loggerForTests()
	orders := ordersvc.NewService(store, nil, logger)
	products := productsvc.NewService(store, nil, logger)
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetricsWithRegisterer(registry)
	server := rest.NewServer(orders, products, httpMetrics, logger)

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	families, err := registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() == "orders_http_requests_total" {
			found = true
			require.Len(t, family.GetMetric(), 1)
		}
	}
	require.True(t, found, "request counter must be registered and incremented")
}
