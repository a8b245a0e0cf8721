// internal/core/domain/target.go
package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"webnmap/internal/platform/validator"
)

// Target es el objetivo normalizado de un escaneo. Se calcula una sola vez
// con ParseTarget y no se modifica después.
type Target struct {
	// Raw es la entrada tal como la dio el usuario
	Raw string

	// Host en minúsculas, sin esquema ni puerto
	Host string

	// Scheme si la entrada era una URL ("http", "https", ...)
	Scheme string

	// Port explícito, nil si no se indicó
	Port *int

	// Kind decide la rama DNS del escaneo
	Kind TargetKind
}

// ParseTarget normaliza la entrada del usuario:
//   - con "://" se interpreta como URL y se toman host y puerto;
//   - con ":" se separa host:puerto;
//   - en otro caso toda la cadena es el host.
//
// Un host que no sea un nombre DNS válido ni una IPv4 con puntos, o un puerto
// fuera de rango, devuelve ErrInvalidTarget.
func ParseTarget(raw string) (Target, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Target{}, ErrEmptyTarget
	}

	t := Target{Raw: input}
	var portStr string

	switch {
	case strings.Contains(input, "://"):
		u, err := url.Parse(input)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q: %v", ErrInvalidTarget, input, err)
		}
		t.Scheme = strings.ToLower(u.Scheme)
		t.Host = u.Hostname()
		portStr = u.Port()

	case strings.Contains(input, ":"):
		host, port, err := net.SplitHostPort(input)
		if err != nil {
			t.Host = input
		} else {
			t.Host, portStr = host, port
		}

	default:
		t.Host = input
	}

	t.Host = validator.NormalizeHost(t.Host)
	if t.Host == "" {
		return Target{}, fmt.Errorf("%w: %q has no host", ErrInvalidTarget, input)
	}

	if portStr != "" {
		port, ok := validator.ParsePort(portStr)
		if !ok {
			return Target{}, fmt.Errorf("%w: %w %q", ErrInvalidTarget, ErrInvalidPort, portStr)
		}
		t.Port = &port
	}

	switch {
	case validator.IsDottedQuad(t.Host):
		t.Kind = TargetKindIP
	case validator.IsDomain(t.Host):
		t.Kind = TargetKindHostname
	default:
		return Target{}, fmt.Errorf("%w: %q is not a hostname or IPv4 address", ErrInvalidTarget, t.Host)
	}

	return t, nil
}

// IsIP indica si el objetivo es una IPv4.
func (t Target) IsIP() bool {
	return t.Kind == TargetKindIP
}

// PortValue devuelve el puerto explícito o 0.
func (t Target) PortValue() int {
	if t.Port == nil {
		return 0
	}
	return *t.Port
}

// BaseURL es la URL base del brute forcer: la entrada original si traía
// esquema, si no http://host.
func (t Target) BaseURL() string {
	if t.Scheme != "" {
		return t.Raw
	}
	return "http://" + t.Host
}

// String retorna host[:puerto].
func (t Target) String() string {
	if t.Port == nil {
		return t.Host
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(*t.Port))
}
