// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
)

// TableExporter imprime un resumen legible del escaneo con pterm.
type TableExporter struct{}

var _ ports.Exporter = TableExporter{}

// Name implements ports.Exporter
func (TableExporter) Name() string { return "table" }

// Export implements ports.Exporter
func (TableExporter) Export(result *domain.ScanResult, w io.Writer) error {
	fmt.Fprintf(w, "\n=== webnmap Scan Results ===\n")
	fmt.Fprintf(w, "Target:   %s\n", result.FullTarget)
	fmt.Fprintf(w, "Host:     %s\n", result.Domain)
	fmt.Fprintf(w, "Scan ID:  %s\n\n", result.ScanID)

	if err := renderTable(w, portRows(result.Ports)); err != nil {
		return err
	}

	if len(result.RecA)+len(result.RecAAAA)+len(result.RecMX)+len(result.RecNS)+len(result.RecTXT)+len(result.RecPTR) > 0 {
		rows := pterm.TableData{{"TYPE", "NAME", "DATA"}}
		for _, set := range [][]domain.DNSRecord{result.RecA, result.RecAAAA, result.RecMX, result.RecNS, result.RecTXT, result.RecPTR} {
			for _, rec := range set {
				rows = append(rows, []string{rec.TypeName(), rec.Name, rec.Data})
			}
		}
		if err := renderTable(w, rows); err != nil {
			return err
		}
	}

	if len(result.Subdomains) > 0 {
		fmt.Fprintf(w, "Subdomains (%d): %s\n\n", len(result.Subdomains), strings.Join(result.Subdomains, ", "))
	}

	if len(result.Vulns) > 0 {
		rows := pterm.TableData{{"SEVERITY", "TYPE", "DETAIL"}}
		for _, v := range result.Vulns {
			rows = append(rows, []string{string(v.Severity), v.Type, v.Detail})
		}
		if err := renderTable(w, rows); err != nil {
			return err
		}
	}

	if result.Whois.Registrar != "" {
		fmt.Fprintf(w, "Registrar: %s (created %s, expires %s)\n", result.Whois.Registrar, result.Whois.Created, result.Whois.Expires)
	}
	if result.Structure.Robots != "" {
		fmt.Fprintf(w, "robots.txt: %s, %d disallow rules, %d sitemaps\n",
			result.Structure.Robots, len(result.Structure.Disallowed), len(result.Structure.Sitemaps))
	}
	for _, hit := range result.DirBrute {
		fmt.Fprintf(w, "  [%s] %s\n", hit.Status, hit.Path)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, e.Stage, e.Message)
		}
	}
	fmt.Fprintln(w)
	return nil
}

func portRows(records []domain.PortRecord) pterm.TableData {
	rows := pterm.TableData{{"PORT", "STATE", "SERVICE"}}
	for _, p := range records {
		if p.State == domain.PortBlocked {
			continue
		}
		rows = append(rows, []string{fmt.Sprintf("%d", p.Port), string(p.State), p.Service})
	}
	return rows
}

func renderTable(w io.Writer, rows pterm.TableData) error {
	if len(rows) <= 1 {
		return nil
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n\n", rendered)
	return err
}
