// cmd/webnmap/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webnmap/internal/adapters/output"
	"webnmap/internal/adapters/store"
	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/core/usecases"
	"webnmap/internal/platform/cache"
	"webnmap/internal/platform/config"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
	"webnmap/internal/platform/registry"
	"webnmap/internal/platform/resilience"
	"webnmap/internal/platform/ui"
	"webnmap/internal/scanners/dirbrute"
	"webnmap/internal/scanners/dnsenum"
	"webnmap/internal/scanners/exposure"
	"webnmap/internal/scanners/fingerprint"
	"webnmap/internal/scanners/portscan"
	"webnmap/internal/scanners/sitemap"
	"webnmap/internal/sources/common"
	"webnmap/internal/sources/crtsh"
	"webnmap/internal/sources/doh"
	"webnmap/internal/sources/rdap"

	// Import sources for auto-registration via init()
	_ "webnmap/internal/sources/bgpview"
	_ "webnmap/internal/sources/direct"
	_ "webnmap/internal/sources/hackertarget"
	_ "webnmap/internal/sources/ipapi"
	_ "webnmap/internal/sources/ipapico"
	_ "webnmap/internal/sources/ipwhois"
	_ "webnmap/internal/sources/ripestat"
	_ "webnmap/internal/sources/whois"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app agrupa los componentes construidos a partir de la configuración.
type app struct {
	cfg       config.Config
	logger    logx.Logger
	metrics   *metrics.Recorder
	store     *store.FileStore
	sources   []ports.Source
	lookup    *usecases.LookupService
	orch      *usecases.Orchestrator
	presenter ui.Presenter
}

func run(args []string, stdout, stderr io.Writer) int {
	// 1. Load centralized config
	cfg, err := config.Load(args, registry.Global().DefaultConfigs())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Try: webnmap -h for help")
		return 2
	}
	if cfg.PrintHelp {
		config.PrintHelp(stdout)
		return 0
	}
	if cfg.PrintVersion {
		config.PrintVersion(stdout, version, commit, date)
		return 0
	}

	// 2. Shared logger
	logger := logx.NewWithWriter(stderr, logx.ParseLevel(cfg.Log.Level), logx.Format(cfg.Log.Format))
	logger.Debug("webnmap starting",
		"version", version,
		"commit", commit,
		"target", cfg.Core.Target,
		"mode", cfg.Mode(),
		"config_file", cfg.ConfigFile,
	)

	// 3. Context and signals for clean shutdown
	ctx, cancel := rootContextWithSignals(cfg.Timeout())
	defer cancel()

	// 4. Wire components
	a, err := build(cfg, logger)
	if err != nil {
		logger.Err(err, "phase", "build")
		return 2
	}
	defer a.close()

	// 5. Dispatch
	var code int
	switch cfg.Mode() {
	case "tool":
		code = a.runTool(ctx, stdout)
	case "info":
		code = a.runInfo(stdout)
	case "observe":
		code = a.runObserve(ctx, stdout)
	default:
		code = a.runScan(ctx, stdout)
	}

	if cfg.Metrics.File != "" {
		if err := a.metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Err(err, "phase", "metrics", "file", cfg.Metrics.File)
		}
	}
	return code
}

// build construye sources, scanners y el orchestrator.
func build(cfg config.Config, logger logx.Logger) (*app, error) {
	if cfg.Network.ProxyURL != "" {
		for name, sc := range cfg.Source.Sources {
			sc.Custom[common.ProxyKey] = cfg.Network.ProxyURL
			cfg.Source.Sources[name] = sc
		}
	}

	sources, err := registry.Global().Build(cfg.Source.Sources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}
	logger.Debug("sources built", "count", len(sources))

	cachePath := cfg.Cache.Path
	if cfg.Cache.Disabled {
		cachePath = ""
	}
	st, err := store.Open(cachePath, logger)
	if err != nil {
		return nil, err
	}

	rec := metrics.New()

	lookup := usecases.NewLookupService(sources, usecases.LookupOptions{
		Timeout: cfg.Scan.RaceTimeout,
		Breaker: resilience.Settings{
			FailureThreshold: cfg.Resilience.CircuitBreakerThreshold,
			OpenTimeout:      cfg.Resilience.CircuitBreakerTimeout,
			HalfOpenMax:      cfg.Resilience.CircuitBreakerHalfOpenMax,
		},
		DisableBreakers: !cfg.Resilience.CircuitBreakerEnabled,
		Metrics:         rec,
		Logger:          logger,
	})

	// Los resolvers DoH del enumerador no dependen de que el provider
	// participe en las carreras.
	primary := findSource[ports.DNSResolver](sources, "google-doh")
	if primary == nil {
		primary = doh.NewGoogle(cfg.Source.Sources["google-doh"], logger)
	}
	fallback := findSource[ports.DNSResolver](sources, "cloudflare-doh")
	if fallback == nil {
		fallback = doh.NewCloudflare(cfg.Source.Sources["cloudflare-doh"], logger)
	}
	registration := findSource[ports.RegistrationLookup](sources, "rdap")
	if registration == nil {
		registration = rdap.New(cfg.Source.Sources["rdap"], logger)
	}

	enumerator := dnsenum.New(primary, fallback,
		crtsh.New("", cfg.Scan.RaceTimeout, logger, crtsh.WithProxy(cfg.Network.ProxyURL)),
		cache.New[[]domain.DNSRecord](cfg.Cache.DNSCapacity),
		logger,
	)

	var presenter ui.Presenter = ui.NewNoopPresenter()
	if !cfg.Output.UIDisabled && cfg.Mode() == "scan" {
		presenter = ui.NewPTermPresenter()
	}

	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Tools: lookup,
		Ports: portscan.New(portscan.Config{
			AttemptTimeout:  cfg.Scan.PortTimeout,
			ClosedThreshold: cfg.Scan.ClosedThreshold,
		}, nil, logger, rec),
		DNS:          enumerator,
		Registration: registration,
		Exposure:     exposure.New(cfg.Scan.ExposureTimeout, logger),
		Structure:    sitemap.New(cfg.Scan.StructureTimeout, logger),
		Bruter: dirbrute.New(dirbrute.Config{
			ProbeTimeout: cfg.Scan.BruteTimeout,
			BatchSize:    cfg.Scan.BruteBatch,
		}, logger, rec),
		Store:        st,
		Fingerprint:  fingerprint.Analyze,
		VersionVulns: exposure.VersionVulns,
		Observer:     presenter,
		Metrics:      rec,
		Logger:       logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   rec,
		store:     st,
		sources:   sources,
		lookup:    lookup,
		orch:      orch,
		presenter: presenter,
	}, nil
}

func (a *app) close() {
	if err := a.presenter.Close(); err != nil {
		a.logger.Warn("failed to close presenter", "error", err.Error())
	}
	if err := a.store.Close(); err != nil {
		a.logger.Err(err, "phase", "store-close")
	}
}

// runScan ejecuta el escaneo completo y escribe los outputs.
func (a *app) runScan(ctx context.Context, stdout io.Writer) int {
	wordlist, err := loadWordlist(a.cfg.Core.Wordlist)
	if err != nil {
		a.logger.Err(err, "phase", "wordlist")
		return 2
	}

	a.presenter.Start(ui.ScanInfo{
		Target:         a.cfg.Core.Target,
		Host:           hostOf(a.cfg.Core.Target),
		Mode:           "scan",
		TimeoutSeconds: a.cfg.Core.TimeoutS,
		TotalStages:    len(usecases.Stages),
		WordlistSize:   len(wordlist),
		Providers:      len(a.sources),
	})

	start := time.Now()
	result, err := a.orch.Scan(ctx, usecases.ScanRequest{
		Target:     a.cfg.Core.Target,
		Wordlist:   wordlist,
		OnProgress: a.presenter.Progress,
	})
	if err != nil {
		a.presenter.Error(err.Error())
		a.logger.Err(err, "phase", "scan")
		return 2
	}
	elapsed := time.Since(start)

	outFile, err := a.writeOutputs(result, stdout)
	if err != nil {
		a.logger.Err(err, "phase", "output")
		return 1
	}

	a.presenter.Finish(scanStats(result, elapsed, outFile))
	a.logger.Info("webnmap finished",
		"scan_id", result.ScanID,
		"elapsed_ms", elapsed.Milliseconds(),
		"summary", result.Summary(),
		"breakers", a.lookup.BreakerStates(),
	)

	if ctx.Err() != nil {
		return 1
	}
	return 0
}

// writeOutputs escribe el JSON a disco y, según config, a stdout y la tabla.
func (a *app) writeOutputs(result *domain.ScanResult, stdout io.Writer) (string, error) {
	var path string
	if !a.cfg.Output.NoFile {
		p, err := output.WriteJSONFile(a.cfg.Output.Dir, result, time.Now())
		if err != nil {
			return "", fmt.Errorf("json output: %w", err)
		}
		path = p
	}

	var exporters []ports.Exporter
	if a.cfg.Output.JSONStdout {
		exporters = append(exporters, output.JSONExporter{Pretty: true})
	}
	if !a.cfg.Output.UIDisabled {
		exporters = append(exporters, output.TableExporter{})
	}
	for _, e := range exporters {
		if err := e.Export(result, stdout); err != nil {
			return path, fmt.Errorf("%s output: %w", e.Name(), err)
		}
	}
	return path, nil
}

// runTool ejecuta una única herramienta de red.
func (a *app) runTool(ctx context.Context, stdout io.Writer) int {
	tool, err := domain.ParseTool(a.cfg.Core.Tool)
	if err != nil {
		a.logger.Err(err, "phase", "tool")
		return 2
	}

	outcome := a.lookup.Run(ctx, tool, hostOf(a.cfg.Core.Target))
	fmt.Fprintln(stdout, outcome.String())
	if !outcome.Succeeded() {
		return 1
	}
	return 0
}

// runInfo imprime la entrada cacheada del host.
func (a *app) runInfo(stdout io.Writer) int {
	if err := output.WriteRecord(stdout, a.orch.Info(hostOf(a.cfg.Core.Target))); err != nil {
		a.logger.Err(err, "phase", "output")
		return 1
	}
	return 0
}

// runObserve fusiona un volcado de cabeceras en la caché.
func (a *app) runObserve(ctx context.Context, stdout io.Writer) int {
	headers, err := loadHeaderDump(a.cfg.Core.Observe)
	if err != nil {
		a.logger.Err(err, "phase", "observe")
		return 2
	}

	rec, err := a.orch.Observe(ctx, hostOf(a.cfg.Core.Target), headers)
	if err != nil {
		a.logger.Err(err, "phase", "observe")
		return 1
	}
	if err := output.WriteRecord(stdout, rec); err != nil {
		a.logger.Err(err, "phase", "output")
		return 1
	}
	return 0
}

// findSource devuelve la source name si está construida e implementa T.
func findSource[T any](sources []ports.Source, name string) T {
	var zero T
	for _, src := range sources {
		if src.Name() != name {
			continue
		}
		if v, ok := src.(T); ok {
			return v
		}
	}
	return zero
}

// hostOf extrae el host de un target; si no es parseable lo devuelve tal cual.
func hostOf(raw string) string {
	t, err := domain.ParseTarget(raw)
	if err != nil {
		return raw
	}
	return t.Host
}

func scanStats(result *domain.ScanResult, elapsed time.Duration, outFile string) ui.ScanStats {
	found := 0
	for _, b := range result.DirBrute {
		if b.Found {
			found++
		}
	}
	records := len(result.RecA) + len(result.RecAAAA) + len(result.RecMX) +
		len(result.RecNS) + len(result.RecTXT) + len(result.RecPTR)

	return ui.ScanStats{
		TotalDuration: elapsed,
		OpenPorts:     len(result.OpenPorts()),
		DNSRecords:    records,
		Subdomains:    len(result.Subdomains),
		Findings:      len(result.Vulns),
		PathsFound:    found,
		Errors:        len(result.Errors),
		OutputFile:    outFile,
	}
}

// rootContextWithSignals crea el contexto raíz con timeout opcional,
// cancelado por SIGINT/SIGTERM.
func rootContextWithSignals(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}
