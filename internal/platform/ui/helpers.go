// internal/platform/ui/helpers.go
package ui

import (
	"fmt"
	"time"
)

// formatDuration formatea una duración de manera legible
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

// stageLabel convierte el nombre interno de una etapa en un título.
func stageLabel(stage string) string {
	switch stage {
	case "ports":
		return "Port Scan"
	case "dns":
		return "DNS Enumeration"
	case "exposure":
		return "Exposure Probes"
	case "whois":
		return "Registration"
	case "intel":
		return "GeoIP / Traceroute / Headers"
	case "structure":
		return "Site Structure"
	case "dir_brute":
		return "Directory Brute Force"
	case "cache":
		return "Cache Merge"
	default:
		return stage
	}
}
