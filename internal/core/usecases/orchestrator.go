// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
	"webnmap/internal/platform/validator"
)

// whoisUnavailable es el valor de "whois" cuando el resumen RDAP falla.
const whoisUnavailable = "Could not fetch Whois data (CORS or Rate Limit)"

// webPorts son los puertos que indican superficie web en un objetivo IP.
var webPorts = []int{80, 443, 8080, 8081, 8443, 8888, 9000, 3000}

// Orchestrator ejecuta el escaneo activo por etapas y mantiene la caché de
// resultados por host. Una etapa que falla (error o pánico) deja sus campos
// vacíos, se anota en ScanResult.Errors y el escaneo continúa.
type Orchestrator struct {
	tools        ports.ToolRunner
	portScanner  ports.PortScanner
	dns          ports.DNSEnumerator
	registration ports.RegistrationLookup
	exposure     ports.ExposureProber
	structure    ports.StructureMapper
	bruter       ports.BruteForcer
	store        ports.ResultStore

	fingerprint  FingerprintFunc
	versionVulns VersionVulnsFunc

	observer ports.StageObserver
	metrics  *metrics.Recorder
	logger   logx.Logger

	now   func() time.Time
	newID func() string
}

// FingerprintFunc deduce SO / servidor / CMS a partir de cabeceras en minúsculas.
type FingerprintFunc func(headers map[string]string) domain.Fingerprint

// VersionVulnsFunc busca versiones vulnerables en la cabecera Server.
type VersionVulnsFunc func(server string) []domain.Finding

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	Tools        ports.ToolRunner
	Ports        ports.PortScanner
	DNS          ports.DNSEnumerator
	Registration ports.RegistrationLookup // opcional
	Exposure     ports.ExposureProber
	Structure    ports.StructureMapper
	Bruter       ports.BruteForcer
	Store        ports.ResultStore

	Fingerprint  FingerprintFunc
	VersionVulns VersionVulnsFunc

	Observer ports.StageObserver
	Metrics  *metrics.Recorder
	Logger   logx.Logger

	// Now y NewID se sustituyen en tests
	Now   func() time.Time
	NewID func() string
}

// ScanRequest es una petición de escaneo activo.
type ScanRequest struct {
	Target   string
	Wordlist []string

	// OnProgress recibe los eventos del brute forcer (opcional)
	OnProgress ports.ProgressFunc
}

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Observer == nil {
		opts.Observer = ports.NoopObserver{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Fingerprint == nil {
		opts.Fingerprint = func(map[string]string) domain.Fingerprint {
			return domain.Fingerprint{OS: "Unknown", Server: "Unknown", CMS: "Unknown"}
		}
	}
	if opts.VersionVulns == nil {
		opts.VersionVulns = func(string) []domain.Finding { return nil }
	}

	return &Orchestrator{
		tools:        opts.Tools,
		portScanner:  opts.Ports,
		dns:          opts.DNS,
		registration: opts.Registration,
		exposure:     opts.Exposure,
		structure:    opts.Structure,
		bruter:       opts.Bruter,
		store:        opts.Store,
		fingerprint:  opts.Fingerprint,
		versionVulns: opts.VersionVulns,
		observer:     opts.Observer,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With("component", "orchestrator"),
		now:          opts.Now,
		newID:        opts.NewID,
	}
}

// Scan ejecuta las etapas del escaneo activo y fusiona el resultado en la
// caché. Solo un objetivo inválido hace fallar el escaneo.
func (o *Orchestrator) Scan(ctx context.Context, req ScanRequest) (*domain.ScanResult, error) {
	target, err := domain.ParseTarget(req.Target)
	if err != nil {
		o.logger.Warn("invalid target", "target", req.Target, "error", err.Error())
		return nil, err
	}

	result := domain.NewScanResult(o.newID(), target, o.now())
	start := time.Now()

	o.logger.Info("starting scan",
		"scan_id", result.ScanID,
		"target", target.String(),
		"kind", target.Kind.String(),
		"wordlist", len(req.Wordlist),
	)

	o.runStage(ctx, result, StagePorts, func(ctx context.Context) error {
		result.NmapRaw = o.tools.Run(ctx, domain.ToolNmap, target.Host).String()
		result.Ports = o.portScanner.ScanTarget(ctx, target.Host, target.PortValue())
		return nil
	})

	o.runStage(ctx, result, StageDNS, func(ctx context.Context) error {
		if target.IsIP() {
			result.RecPTR = o.dns.ReversePTR(ctx, target.Host)
			return nil
		}
		result.RecA = o.dns.Resolve(ctx, target.Host, dns.TypeA)
		result.RecAAAA = o.dns.Resolve(ctx, target.Host, dns.TypeAAAA)
		result.RecMX = o.dns.Resolve(ctx, target.Host, dns.TypeMX)
		result.RecNS = o.dns.Resolve(ctx, target.Host, dns.TypeNS)
		result.RecTXT = o.dns.Resolve(ctx, target.Host, dns.TypeTXT)
		result.Subdomains = o.dns.FindSubdomains(ctx, target.Host)
		return nil
	})

	o.runStage(ctx, result, StageExposure, func(ctx context.Context) error {
		result.Vulns = append(result.Vulns, o.exposure.Probe(ctx, target.Host)...)
		return nil
	})

	o.runStage(ctx, result, StageWhois, func(ctx context.Context) error {
		result.WhoisRaw = o.tools.Run(ctx, domain.ToolWhois, target.Host).String()
		if target.IsIP() || o.registration == nil {
			return nil
		}
		reg, err := o.registration.Registration(ctx, target.Host)
		if err != nil {
			o.logger.Warn("registration lookup failed", "host", target.Host, "error", err.Error())
			result.Whois = domain.Registration{Error: whoisUnavailable}
			return nil
		}
		result.Whois = reg
		return nil
	})

	o.runStage(ctx, result, StageIntel, func(ctx context.Context) error {
		return o.intel(ctx, result, target.Host)
	})

	web := !target.IsIP() || hasWebPort(result.Ports)
	switch {
	case !web:
		o.skip(StageStructure, "no web surface")
		o.skip(StageDirBrute, "no web surface")
	default:
		o.runStage(ctx, result, StageStructure, func(ctx context.Context) error {
			result.Structure = o.structure.Analyze(ctx, target.Host)
			return nil
		})
		if len(req.Wordlist) == 0 {
			o.skip(StageDirBrute, "empty wordlist")
			break
		}
		o.runStage(ctx, result, StageDirBrute, func(ctx context.Context) error {
			result.DirBrute = o.bruter.BruteForce(ctx, target.BaseURL(), req.Wordlist, req.OnProgress)
			return nil
		})
	}

	// la fusión se hace aunque el escaneo se haya cancelado: lo obtenido se conserva
	o.runStage(context.WithoutCancel(ctx), result, StageCache, func(context.Context) error {
		rec, err := result.Record()
		if err != nil {
			return err
		}
		_, err = o.store.Merge(target.Host, rec)
		return err
	})

	o.metrics.ScanCompleted()
	o.logger.Info("scan completed",
		"scan_id", result.ScanID,
		"summary", result.Summary(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// intel lanza GeoIP, traceroute y cabeceras HTTP en paralelo; cada carrera
// escribe solo su campo.
func (o *Orchestrator) intel(ctx context.Context, result *domain.ScanResult, host string) error {
	lookups := []struct {
		tool domain.Tool
		dst  *string
	}{
		{domain.ToolGeoIP, &result.GeoIPRaw},
		{domain.ToolTraceroute, &result.TracerouteRaw},
		{domain.ToolHTTPHeaders, &result.HTTPHeadersRaw},
	}

	var g errgroup.Group
	for _, l := range lookups {
		g.Go(func() (err error) {
			defer recoverInto(&err)
			*l.dst = o.tools.Run(ctx, l.tool, host).String()
			return nil
		})
	}
	return g.Wait()
}

// Observe registra cabeceras capturadas pasivamente para host: deduce el
// fingerprint, busca versiones vulnerables y fusiona {headers, os, timestamp}
// en la caché añadiendo los hallazgos nuevos a "vulns".
func (o *Orchestrator) Observe(ctx context.Context, host string, headers map[string]string) (domain.Record, error) {
	host = validator.NormalizeHost(host)
	if host == "" {
		return nil, domain.ErrEmptyTarget
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := make(map[string]string, len(headers))
	for k, v := range headers {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	fp := o.fingerprint(lower)
	found := o.versionVulns(lower["server"])

	patch := domain.Record{}
	if err := patch.Set("headers", lower); err != nil {
		return nil, err
	}
	if err := patch.Set("os", fp.OS); err != nil {
		return nil, err
	}
	if err := patch.Set("timestamp", o.now().UnixMilli()); err != nil {
		return nil, err
	}

	rec, err := o.store.Update(host, func(current domain.Record) (domain.Record, error) {
		next := current.Merge(patch)
		if err := next.Set("vulns", appendFindings(current.Findings(), found)); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store observation for %s: %w", host, err)
	}

	o.logger.Debug("headers observed", "host", host, "os", fp.OS, "server", fp.Server, "vulns", len(found))
	return rec, nil
}

// Info devuelve la entrada cacheada de host o {domain, risk: UNKNOWN}.
func (o *Orchestrator) Info(host string) domain.Record {
	host = validator.NormalizeHost(host)
	if rec, ok := o.store.Get(host); ok {
		return rec
	}
	return domain.UnknownRecord(host)
}

// appendFindings añade a existing los hallazgos que aún no contiene.
func appendFindings(existing, found []domain.Finding) []domain.Finding {
	out := append([]domain.Finding{}, existing...)
	for _, f := range found {
		dup := false
		for _, e := range out {
			if e == f {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}

func hasWebPort(records []domain.PortRecord) bool {
	for _, r := range records {
		if r.State != domain.PortOpen {
			continue
		}
		for _, p := range webPorts {
			if r.Port == p {
				return true
			}
		}
	}
	return false
}
