// cmd/webnmap/inputs.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// loadWordlist lee una ruta por línea. Se ignoran líneas vacías y
// comentarios (#). path vacío es una wordlist vacía.
func loadWordlist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	return readWordlist(f)
}

func readWordlist(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return words, nil
}

// loadHeaderDump lee un volcado de cabeceras de respuesta ("-" = stdin).
func loadHeaderDump(path string) (map[string]string, error) {
	if path == "-" {
		return parseHeaderDump(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open header dump: %w", err)
	}
	defer f.Close()

	return parseHeaderDump(f)
}

// parseHeaderDump acepta "Name: value" por línea, como la salida de
// curl -sI. Las líneas de estado HTTP se saltan y las cabeceras repetidas
// se unen con ", ".
func parseHeaderDump(r io.Reader) (map[string]string, error) {
	headers := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "HTTP/") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if prev, seen := headers[name]; seen {
			value = prev + ", " + value
		}
		headers[name] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header dump: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("header dump contains no headers")
	}
	return headers, nil
}
