// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status es el estado de una etapa dentro del escaneo.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusError
	StatusSkipped
)

type statusAppearance struct {
	name   string
	symbol string
	color  pterm.Color
}

var statusTable = map[Status]statusAppearance{
	StatusPending: {"pending", "⏸", pterm.FgGray},
	StatusRunning: {"running", "⣾", pterm.FgCyan},
	StatusSuccess: {"success", "✓", pterm.FgGreen},
	StatusError:   {"error", "✗", pterm.FgRed},
	StatusSkipped: {"skipped", "⊘", pterm.FgGray},
}

func (s Status) appearance() statusAppearance {
	if a, ok := statusTable[s]; ok {
		return a
	}
	return statusAppearance{"unknown", "?", pterm.FgDefault}
}

func (s Status) String() string { return s.appearance().name }

// Symbol retorna el glifo que acompaña al estado en la salida.
func (s Status) Symbol() string { return s.appearance().symbol }

// Style retorna el estilo pterm del estado.
func (s Status) Style() *pterm.Style { return pterm.NewStyle(s.appearance().color) }

var (
	IconTarget  = "🎯"
	IconStage   = "🔄"
	IconTime    = "⏱"
	IconPorts   = "🔌"
	IconFinding = "⚠"
	IconFile    = "📄"
)

var SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
