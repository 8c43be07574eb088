package metrics_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

func TestHTTPMetrics_RecordRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetricsWithRegisterer(registry)

	httpMetrics.RecordRequest(http.MethodGet, "GET /api/products", http.StatusOK, 25*time.Millisecond)
	httpMetrics.RecordRequest(http.MethodGet, "GET /api/products", http.StatusOK, 10*time.Millisecond)
	httpMetrics.RecordRequest(http.MethodPost, "POST /api/orders", http.StatusCreated, 5*time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	byName := make(map[string]*dto.MetricFamily)
	for _, family := range families {
		byName[family.GetName()] = family
	}

	counter, ok := byName["orders_http_requests_total"]
	if !ok {
		t.Fatal("request counter not registered")
	}
	if got := len(counter.GetMetric()); got != 2 {
		t.Fatalf("expected 2 label combinations, got %d", got)
	}
	for _, metric := range counter.GetMetric() {
		labels := make(map[string]string)
		for _, pair := range metric.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		if labels["method"] == http.MethodGet && labels["route"] == "GET /api/products" {
			if labels["status"] != "200" {
				t.Fatalf("expected status label 200, got %s", labels["status"])
			}
			if metric.GetCounter().GetValue() != 2 {
				t.Fatalf("expected counter 2, got %v", metric.GetCounter().GetValue())
			}
		}
	}

	histogram, ok := byName["orders_http_request_duration_seconds"]
	if !ok {
		t.Fatal("duration histogram not registered")
	}
	for _, metric := range histogram.GetMetric() {
		if metric.GetHistogram().GetSampleCount() == 0 {
			t.Fatal("expected observed samples in histogram")
		}
	}
}

func TestNewHTTPMetricsWithRegisterer_Reregister(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := metrics.NewHTTPMetricsWithRegisterer(registry)
	// Повторная регистрация в том же registry переиспользует коллекторы
	// вместо паники.
	second := metrics.NewHTTPMetricsWithRegisterer(registry)

	first.RecordRequest(http.MethodGet, "GET /api/products", http.StatusOK, time.Millisecond)
	second.RecordRequest(http.MethodGet, "GET /api/products", http.StatusOK, time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "orders_http_requests_total" {
			continue
		}
		if got := family.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Fatalf("expected shared counter value 2, got %v", got)
		}
		return
	}
	t.Fatal("request counter not found")
}
