// internal/platform/resilience/circuit_breaker.go
package resilience

import (
	"sync"
	"time"

	"webnmap/internal/platform/errors"
)

// ErrCircuitOpen se re-exporta para que los llamadores no dependan de platform/errors.
var ErrCircuitOpen = errors.ErrCircuitOpen

// State representa el estado del circuit breaker.
type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Failing, rejecting requests
	StateHalfOpen              // Testing if provider recovered
)

// Settings configura un circuit breaker.
type Settings struct {
	FailureThreshold int           // fallos consecutivos para abrir
	OpenTimeout      time.Duration // espera antes de pasar a half-open
	HalfOpenMax      int           // pruebas permitidas en half-open
}

// DefaultSettings devuelve la configuración usada por los providers.
func DefaultSettings() Settings {
	return Settings{FailureThreshold: 3, OpenTimeout: 60 * time.Second, HalfOpenMax: 1}
}

// CircuitBreaker deja de llamar a un provider que falla de forma repetida,
// de modo que una API agotada no consuma el presupuesto de cada carrera.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int
	successCount     int
	halfOpenInflight int
	lastFailureTime  time.Time
	lastSuccessTime  time.Time

	settings Settings
	now      func() time.Time
}

// NewCircuitBreaker crea un nuevo circuit breaker.
func NewCircuitBreaker(s Settings) *CircuitBreaker {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 60 * time.Second
	}
	if s.HalfOpenMax <= 0 {
		s.HalfOpenMax = 1
	}
	return &CircuitBreaker{state: StateClosed, settings: s, now: time.Now}
}

// Allow verifica si una request puede pasar. Cada Allow concedido en
// half-open debe cerrarse con RecordSuccess o RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.settings.OpenTimeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.halfOpenInflight = 1
		return true

	case StateHalfOpen:
		if cb.halfOpenInflight < cb.settings.HalfOpenMax {
			cb.halfOpenInflight++
			return true
		}
		return false

	default:
		return false
	}
}

// RecordSuccess registra una operación exitosa.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastSuccessTime = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0

	case StateHalfOpen:
		cb.successCount++
		if cb.halfOpenInflight > 0 {
			cb.halfOpenInflight--
		}
		if cb.successCount >= cb.settings.HalfOpenMax {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.halfOpenInflight = 0
		}
	}
}

// RecordFailure registra una operación fallida.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()
	cb.failureCount++

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.settings.FailureThreshold {
			cb.state = StateOpen
		}

	case StateHalfOpen:
		// un fallo en half-open reabre de inmediato
		cb.state = StateOpen
		cb.successCount = 0
		cb.halfOpenInflight = 0
	}
}

// Release devuelve un permiso half-open sin registrar resultado, para
// llamadas abandonadas antes de terminar.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.halfOpenInflight > 0 {
		cb.halfOpenInflight--
	}
}

// Execute ejecuta fn si el circuito lo permite y registra el resultado.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// State retorna el estado actual del circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset vuelve al estado cerrado.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.halfOpenInflight = 0
}

// Stats retorna estadísticas del circuit breaker.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerStats{
		State:           cb.state,
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		LastFailureTime: cb.lastFailureTime,
		LastSuccessTime: cb.lastSuccessTime,
	}
}

// CircuitBreakerStats contiene estadísticas del circuit breaker.
type CircuitBreakerStats struct {
	State           State
	FailureCount    int
	SuccessCount    int
	LastFailureTime time.Time
	LastSuccessTime time.Time
}

// String retorna una representación legible del estado.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Group mantiene un breaker por nombre de provider.
type Group struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*CircuitBreaker
}

// NewGroup crea un grupo con la configuración dada para todos sus breakers.
func NewGroup(s Settings) *Group {
	return &Group{settings: s, breakers: make(map[string]*CircuitBreaker)}
}

// Get devuelve (creándolo si hace falta) el breaker de name.
func (g *Group) Get(name string) *CircuitBreaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	cb, ok := g.breakers[name]
	if !ok {
		cb = NewCircuitBreaker(g.settings)
		g.breakers[name] = cb
	}
	return cb
}

// States devuelve el estado de cada breaker conocido.
func (g *Group) States() map[string]State {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]State, len(g.breakers))
	for name, cb := range g.breakers {
		out[name] = cb.State()
	}
	return out
}
