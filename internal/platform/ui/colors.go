// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Paleta de la terminal

var (
	// SignalGreen - puertos abiertos, operaciones exitosas
	SignalGreen = pterm.NewRGB(0, 200, 120)

	// AlertRed - errores y hallazgos críticos
	AlertRed = pterm.NewRGB(215, 38, 56)

	// AmberWarn - warnings, hallazgos medios
	AmberWarn = pterm.NewRGB(255, 182, 39)
)

// Estilos preconfigurados para diferentes contextos
var (
	StyleSuccess = SignalGreen.ToRGBStyle()
	StyleError   = AlertRed.ToRGBStyle()
	StyleWarning = AmberWarn.ToRGBStyle()
)
