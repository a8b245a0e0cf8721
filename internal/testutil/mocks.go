// internal/testutil/mocks.go
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Nota: Los mocks específicos de domain/ports están en sus respectivos paquetes
// Este archivo contiene solo utilidades genéricas sin dependencias circulares

// NewServer arranca un httptest.Server que se cierra al terminar el test.
func NewServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// NewTLSServer es como NewServer pero con TLS autofirmado.
func NewTLSServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// InflightHandler cuenta peticiones y el máximo de peticiones simultáneas.
type InflightHandler struct {
	Delay   time.Duration
	Status  int
	mu      sync.Mutex
	current int
	peak    int
	total   atomic.Int64
	paths   []string
}

// ServeHTTP implementa http.Handler.
func (h *InflightHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.total.Add(1)
	h.mu.Lock()
	h.current++
	if h.current > h.peak {
		h.peak = h.current
	}
	h.paths = append(h.paths, r.URL.Path)
	h.mu.Unlock()

	if h.Delay > 0 {
		time.Sleep(h.Delay)
	}

	h.mu.Lock()
	h.current--
	h.mu.Unlock()

	status := h.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

// Peak devuelve el máximo de peticiones simultáneas observado.
func (h *InflightHandler) Peak() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peak
}

// Total devuelve el número de peticiones recibidas.
func (h *InflightHandler) Total() int {
	return int(h.total.Load())
}

// Paths devuelve las rutas solicitadas en orden de llegada.
func (h *InflightHandler) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}
