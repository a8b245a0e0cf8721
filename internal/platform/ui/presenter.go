// internal/platform/ui/presenter.go
package ui

import (
	"time"

	"webnmap/internal/core/ports"
)

// Presenter define la interfaz para presentar el progreso de un escaneo
// de manera visual. Recibe los límites de cada etapa (StageObserver) y
// los eventos del brute forcer.
type Presenter interface {
	ports.StageObserver

	// Start inicia la presentación con información del escaneo
	Start(info ScanInfo)

	// Progress recibe un evento del brute forcer. Puede llamarse desde
	// varias goroutines.
	Progress(event ports.ProgressEvent)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats ScanStats)

	// Close limpia recursos del presenter
	Close() error
}

// ScanInfo contiene información inicial del escaneo
type ScanInfo struct {
	Target         string
	Host           string
	Mode           string
	TimeoutSeconds int
	TotalStages    int
	WordlistSize   int
	Providers      int
}

// ScanStats contiene estadísticas finales del escaneo
type ScanStats struct {
	TotalDuration time.Duration
	OpenPorts     int
	DNSRecords    int
	Subdomains    int
	Findings      int
	PathsFound    int
	Errors        int
	OutputFile    string
}

// StageProgress representa el progreso de una etapa
type StageProgress struct {
	Name      string
	Status    Status
	StartTime time.Time
	Duration  time.Duration
	Detail    string // error o motivo del skip
}

var (
	_ Presenter = (*PTermPresenter)(nil)
	_ Presenter = (*NoopPresenter)(nil)
)
