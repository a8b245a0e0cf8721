// internal/core/ports/notifier.go
package ports

import "time"

// EventType define los tipos de eventos de progreso.
type EventType string

const (
	EventTypeDirBrute EventType = "dir_brute"
)

// ProgressEvent es una notificación de progreso del brute forcer.
// Un evento lleva Current/Total (fin de lote) o Path/Status (ruta encontrada).
type ProgressEvent struct {
	Type    EventType `json:"type"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	Path    string    `json:"path,omitempty"`
	Status  string    `json:"status,omitempty"`
}

// IsFound indica si el evento anuncia una ruta descubierta.
func (e ProgressEvent) IsFound() bool {
	return e.Path != ""
}

// ProgressFunc recibe eventos de progreso. Es fire-and-forget: un pánico en
// el callback se recupera y no interrumpe el escaneo.
type ProgressFunc func(ProgressEvent)

// StageObserver recibe los límites de cada etapa del escaneo.
type StageObserver interface {
	StageStarted(stage string)
	StageFinished(stage string, elapsed time.Duration, err error)
	StageSkipped(stage string, reason string)
}

// NoopObserver ignora todos los eventos.
type NoopObserver struct{}

func (NoopObserver) StageStarted(string)                        {}
func (NoopObserver) StageFinished(string, time.Duration, error) {}
func (NoopObserver) StageSkipped(string, string)                {}
