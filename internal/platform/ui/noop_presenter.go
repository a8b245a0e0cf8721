// internal/platform/ui/noop_presenter.go
package ui

import (
	"time"

	"webnmap/internal/core/ports"
)

// NoopPresenter es una implementación vacía del Presenter
// que no produce ninguna salida. Útil para modo quiet o headless.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) Start(info ScanInfo)                                          {}
func (n *NoopPresenter) StageStarted(stage string)                                    {}
func (n *NoopPresenter) StageFinished(stage string, elapsed time.Duration, err error) {}
func (n *NoopPresenter) StageSkipped(stage string, reason string)                     {}
func (n *NoopPresenter) Progress(event ports.ProgressEvent)                           {}
func (n *NoopPresenter) Info(msg string)                                              {}
func (n *NoopPresenter) Warning(msg string)                                           {}
func (n *NoopPresenter) Error(msg string)                                             {}
func (n *NoopPresenter) Finish(stats ScanStats)                                       {}

// Close no hace nada
func (n *NoopPresenter) Close() error {
	return nil
}
