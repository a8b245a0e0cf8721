package portscan

import (
	"context"
	"time"

	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
)

// Prober hace un intento de conexión. nil significa que hubo respuesta
// (cualquier estado HTTP).
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber sondea con HEAD sin verificar certificados ni seguir redirecciones.
type HTTPProber struct {
	client *httpclient.Client
}

// NewHTTPProber crea un prober con timeout por intento.
func NewHTTPProber(timeout time.Duration, logger logx.Logger) *HTTPProber {
	return &HTTPProber{client: httpclient.New(httpclient.ProbeConfig(timeout), logger)}
}

// Probe implements Prober
func (p *HTTPProber) Probe(ctx context.Context, url string) error {
	_, err := p.client.Head(ctx, url)
	return err
}
