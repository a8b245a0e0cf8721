// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
)

// sanitizeDomainName convierte un host en un nombre de carpeta válido.
// Ejemplo: "example.com" -> "example_com"
func sanitizeDomainName(domain string) string {
	sanitized := strings.ReplaceAll(domain, ".", "_")
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
}

// JSONExporter escribe el ScanResult como JSON.
type JSONExporter struct {
	Pretty bool
}

var _ ports.Exporter = JSONExporter{}

// Name implements ports.Exporter
func (JSONExporter) Name() string { return "json" }

// Export implements ports.Exporter
func (e JSONExporter) Export(result *domain.ScanResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteJSONFile guarda el resultado en dir/<host>/webnmap_<host>_<fecha>.json
// y devuelve la ruta escrita.
func WriteJSONFile(dir string, result *domain.ScanResult, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}

	fullDir := filepath.Join(dir, sanitizeDomainName(result.Domain))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("webnmap_%s_%s.json", result.Domain, now.Format("20060102_150405"))
	path := filepath.Join(fullDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := (JSONExporter{Pretty: true}).Export(result, f); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRecord escribe una entrada de caché (modo --info) como JSON indentado.
func WriteRecord(w io.Writer, rec domain.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
