// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
)

// envPrefix es el prefijo de todas las variables de entorno.
const envPrefix = "WEBNMAP_"

type Config struct {
	Core       CoreConfig       `yaml:"core" json:"core"`
	Scan       ScanConfig       `yaml:"scan" json:"scan"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Source     SourcesConfig    `yaml:"-" json:"sources"`
	Network    NetworkConfig    `yaml:"network" json:"network"`
	Resilience ResilienceConfig `yaml:"resilience" json:"resilience"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
	Log        LogConfig        `yaml:"log" json:"log"`

	// ConfigFile es el YAML cargado, vacío si no hubo
	ConfigFile   string `yaml:"-" json:"config_file,omitempty"`
	PrintVersion bool   `yaml:"-" json:"-"`
	PrintHelp    bool   `yaml:"-" json:"-"`
}

// CoreConfig selecciona el modo de ejecución.
type CoreConfig struct {
	Target   string `yaml:"target" json:"target"`
	Wordlist string `yaml:"wordlist" json:"wordlist,omitempty"` // ruta, una entrada por línea
	Tool     string `yaml:"tool" json:"tool,omitempty"`         // modo herramienta única
	Info     bool   `yaml:"info" json:"info,omitempty"`         // modo consulta de caché
	Observe  string `yaml:"observe" json:"observe,omitempty"`   // volcado de cabeceras, modo pasivo
	TimeoutS int    `yaml:"timeout" json:"timeout"`             // segundos (0 = sin timeout)
}

// ScanConfig ajusta los componentes activos.
type ScanConfig struct {
	RaceTimeout      time.Duration `yaml:"race_timeout" json:"race_timeout"`
	PortTimeout      time.Duration `yaml:"port_timeout" json:"port_timeout"`
	ClosedThreshold  time.Duration `yaml:"closed_threshold" json:"closed_threshold"`
	BruteTimeout     time.Duration `yaml:"brute_timeout" json:"brute_timeout"`
	BruteBatch       int           `yaml:"brute_batch" json:"brute_batch"`
	ExposureTimeout  time.Duration `yaml:"exposure_timeout" json:"exposure_timeout"`
	StructureTimeout time.Duration `yaml:"structure_timeout" json:"structure_timeout"`
}

// CacheConfig configura la caché de resultados y la de respuestas DNS.
type CacheConfig struct {
	Path        string `yaml:"path" json:"path"`
	Disabled    bool   `yaml:"disabled" json:"disabled"` // solo memoria
	DNSCapacity int    `yaml:"dns_capacity" json:"dns_capacity"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir" json:"dir"`
	UIDisabled bool   `yaml:"quiet" json:"quiet"`     // sin presenter ni tabla
	JSONStdout bool   `yaml:"json" json:"json"`       // JSON por stdout además del fichero
	NoFile     bool   `yaml:"no_file" json:"no_file"` // no escribir el JSON a disco
}

// SourcesConfig contiene la configuración por provider.
// Key = nombre registrado (ej: "hackertarget", "google-doh").
type SourcesConfig struct {
	Sources map[string]ports.SourceConfig `json:"sources"`
}

type NetworkConfig struct {
	ProxyURL string `yaml:"proxy" json:"proxy,omitempty"`
}

type ResilienceConfig struct {
	CircuitBreakerEnabled     bool          `yaml:"circuit_breaker" json:"circuit_breaker"`
	CircuitBreakerThreshold   int           `yaml:"threshold" json:"threshold"`
	CircuitBreakerTimeout     time.Duration `yaml:"open_timeout" json:"open_timeout"`
	CircuitBreakerHalfOpenMax int           `yaml:"half_open_max" json:"half_open_max"`
}

type MetricsConfig struct {
	File string `yaml:"file" json:"file,omitempty"` // textfile-collector de node-exporter
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text | json
}

// sourceFile es la forma de una source en el YAML: solo se aplican los
// campos presentes.
type sourceFile struct {
	Enabled   *bool                  `yaml:"enabled"`
	Priority  *int                   `yaml:"priority"`
	Timeout   *time.Duration         `yaml:"timeout"`
	Retries   *int                   `yaml:"retries"`
	RateLimit *float64               `yaml:"rate_limit"`
	BaseURL   string                 `yaml:"base_url"`
	Custom    map[string]interface{} `yaml:"custom"`
}

type fileConfig struct {
	Config  `yaml:",inline"`
	Sources map[string]sourceFile `yaml:"sources"`
}

// DefaultConfig retorna una configuración por defecto. sources son las
// configuraciones por defecto de los providers registrados.
func DefaultConfig(sources map[string]ports.SourceConfig) Config {
	copied := make(map[string]ports.SourceConfig, len(sources))
	for name, sc := range sources {
		custom := make(map[string]interface{}, len(sc.Custom))
		for k, v := range sc.Custom {
			custom[k] = v
		}
		sc.Custom = custom
		copied[name] = sc
	}

	return Config{
		Core: CoreConfig{TimeoutS: 0},
		Scan: ScanConfig{
			RaceTimeout:      60 * time.Second,
			PortTimeout:      2 * time.Second,
			ClosedThreshold:  500 * time.Millisecond,
			BruteTimeout:     3 * time.Second,
			BruteBatch:       5,
			ExposureTimeout:  time.Second,
			StructureTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Path:        defaultCachePath(),
			DNSCapacity: 512,
		},
		Output: OutputConfig{Dir: "webnmap_out"},
		Source: SourcesConfig{Sources: copied},
		Resilience: ResilienceConfig{
			CircuitBreakerEnabled:     true,
			CircuitBreakerThreshold:   3,
			CircuitBreakerTimeout:     60 * time.Second,
			CircuitBreakerHalfOpenMax: 1,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load construye la configuración: defaults -> YAML -> ENV -> FLAGS
// (cada capa tiene prioridad sobre la anterior). args no incluye el
// nombre del programa.
func Load(args []string, sources map[string]ports.SourceConfig) (Config, error) {
	cfg := DefaultConfig(sources)

	path := configPath(args)
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return cfg, err
		}
		cfg.ConfigFile = path
	}

	loadFromEnv(&cfg)

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)

	if cfg.PrintHelp || cfg.PrintVersion {
		return cfg, nil
	}
	return cfg, validate(cfg)
}

// configPath busca --config/-c en args sin parsear el resto; si no está,
// usa WEBNMAP_CONFIG.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(discard{})
	path := fs.StringP("config", "c", "", "")
	fs.BoolP("help", "h", false, "")
	_ = fs.Parse(args)

	if *path != "" {
		return *path
	}
	return getenv(envPrefix+"CONFIG", "")
}

// loadFromFile aplica un YAML sobre cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	file := fileConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	sources := cfg.Source.Sources
	*cfg = file.Config
	cfg.Source.Sources = sources

	for name, sf := range file.Sources {
		sc, ok := cfg.Source.Sources[name]
		if !ok {
			return fmt.Errorf("config file %s: unknown source %q", path, name)
		}
		if sf.Enabled != nil {
			sc.Enabled = *sf.Enabled
		}
		if sf.Priority != nil {
			sc.Priority = *sf.Priority
		}
		if sf.Timeout != nil {
			sc.Timeout = *sf.Timeout
		}
		if sf.Retries != nil {
			sc.Retries = *sf.Retries
		}
		if sf.RateLimit != nil {
			sc.RateLimit = *sf.RateLimit
		}
		if sf.BaseURL != "" {
			sc.BaseURL = sf.BaseURL
		}
		for k, v := range sf.Custom {
			sc.Custom[k] = v
		}
		cfg.Source.Sources[name] = sc
	}
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv(envPrefix+"TARGET", ""); v != "" {
		cfg.Core.Target = v
	}
	if v := getenv(envPrefix+"WORDLIST", ""); v != "" {
		cfg.Core.Wordlist = v
	}
	if v := getenv(envPrefix+"TIMEOUT", ""); v != "" {
		cfg.Core.TimeoutS = parseInt(v, cfg.Core.TimeoutS)
	}
	if v := getenv(envPrefix+"RACE_TIMEOUT", ""); v != "" {
		cfg.Scan.RaceTimeout = parseDuration(v, cfg.Scan.RaceTimeout)
	}
	if v := getenv(envPrefix+"OUTPUT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv(envPrefix+"OUTPUTS_QUIET", ""); v != "" {
		cfg.Output.UIDisabled = parseBool(v)
	}
	if v := getenv(envPrefix+"CACHE_PATH", ""); v != "" {
		cfg.Cache.Path = v
	}
	if v := getenv(envPrefix+"CACHE_DISABLED", ""); v != "" {
		cfg.Cache.Disabled = parseBool(v)
	}
	if v := getenv(envPrefix+"PROXY_URL", ""); v != "" {
		cfg.Network.ProxyURL = v
	}
	if v := getenv(envPrefix+"METRICS_FILE", ""); v != "" {
		cfg.Metrics.File = v
	}
	if v := getenv(envPrefix+"LOG_LEVEL", ""); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(envPrefix+"LOG_FORMAT", ""); v != "" {
		cfg.Log.Format = v
	}

	// Formato: WEBNMAP_SOURCES_GOOGLE_DOH_ENABLED=false
	//          WEBNMAP_SOURCES_HACKERTARGET_API_KEY=...
	for name, sc := range cfg.Source.Sources {
		prefix := envPrefix + "SOURCES_" + envName(name) + "_"

		if v := getenv(prefix+"ENABLED", ""); v != "" {
			sc.Enabled = parseBool(v)
		}
		if v := getenv(prefix+"PRIORITY", ""); v != "" {
			sc.Priority = parseInt(v, sc.Priority)
		}
		if v := getenv(prefix+"TIMEOUT", ""); v != "" {
			sc.Timeout = parseDuration(v, sc.Timeout)
		}
		if v := getenv(prefix+"RETRIES", ""); v != "" {
			sc.Retries = parseInt(v, sc.Retries)
		}
		if v := getenv(prefix+"RATELIMIT", ""); v != "" {
			sc.RateLimit = parseFloat(v, sc.RateLimit)
		}
		if v := getenv(prefix+"API_KEY", ""); v != "" {
			sc.Custom["api_key"] = v
		}
		cfg.Source.Sources[name] = sc
	}

	// Resilience
	if v := getenv(envPrefix+"RESILIENCE_CB_ENABLED", ""); v != "" {
		cfg.Resilience.CircuitBreakerEnabled = parseBool(v)
	}
	if v := getenv(envPrefix+"RESILIENCE_CB_THRESHOLD", ""); v != "" {
		cfg.Resilience.CircuitBreakerThreshold = parseInt(v, cfg.Resilience.CircuitBreakerThreshold)
	}
}

// loadFromFlags parsea flags de CLI.
func loadFromFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("webnmap", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(discard{})

	var configFile string
	fs.StringVarP(&configFile, "config", "c", cfg.ConfigFile, "YAML config file")

	fs.StringVarP(&cfg.Core.Target, "target", "t", cfg.Core.Target, "Target host, host:port or URL")
	fs.StringVarP(&cfg.Core.Wordlist, "wordlist", "w", cfg.Core.Wordlist, "Directory brute-force wordlist file")
	fs.StringVar(&cfg.Core.Tool, "tool", cfg.Core.Tool, "Run a single network tool")
	fs.BoolVarP(&cfg.Core.Info, "info", "i", cfg.Core.Info, "Print the cached entry for the target")
	fs.StringVar(&cfg.Core.Observe, "observe", cfg.Core.Observe, "Merge a response header dump into the cache")
	fs.IntVarP(&cfg.Core.TimeoutS, "timeout", "T", cfg.Core.TimeoutS, "Global timeout in seconds (0 = none)")

	fs.DurationVar(&cfg.Scan.RaceTimeout, "race-timeout", cfg.Scan.RaceTimeout, "Provider race timeout")
	fs.DurationVar(&cfg.Scan.PortTimeout, "port-timeout", cfg.Scan.PortTimeout, "Per-attempt port probe timeout")
	fs.DurationVar(&cfg.Scan.BruteTimeout, "brute-timeout", cfg.Scan.BruteTimeout, "Per-path brute-force timeout")
	fs.IntVar(&cfg.Scan.BruteBatch, "brute-batch", cfg.Scan.BruteBatch, "Concurrent brute-force probes per batch")

	fs.StringVar(&cfg.Cache.Path, "cache", cfg.Cache.Path, "Result cache file")
	fs.BoolVar(&cfg.Cache.Disabled, "no-cache", cfg.Cache.Disabled, "Keep the result cache in memory only")

	fs.StringVarP(&cfg.Output.Dir, "out", "o", cfg.Output.Dir, "Output directory")
	fs.BoolVarP(&cfg.Output.UIDisabled, "quiet", "q", cfg.Output.UIDisabled, "Disable UI and table output")
	fs.BoolVar(&cfg.Output.JSONStdout, "json", cfg.Output.JSONStdout, "Print the JSON result to stdout")
	fs.BoolVar(&cfg.Output.NoFile, "no-file", cfg.Output.NoFile, "Do not write the JSON result file")

	// Source configs: solo enabled y priority via flags, el resto via YAML o ENV
	names := make([]string, 0, len(cfg.Source.Sources))
	for name := range cfg.Source.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	enabled := make(map[string]*bool, len(names))
	priority := make(map[string]*int, len(names))
	for _, name := range names {
		sc := cfg.Source.Sources[name]
		enabled[name] = fs.Bool("src."+name, sc.Enabled, "Enable source "+name)
		priority[name] = fs.Int("src."+name+".priority", sc.Priority, "Priority of source "+name)
	}

	fs.BoolVar(&cfg.Resilience.CircuitBreakerEnabled, "circuit-breaker", cfg.Resilience.CircuitBreakerEnabled, "Enable per-source circuit breakers")
	fs.StringVarP(&cfg.Network.ProxyURL, "proxy", "p", cfg.Network.ProxyURL, "HTTP(S) proxy for outbound requests")
	fs.StringVar(&cfg.Metrics.File, "metrics.file", cfg.Metrics.File, "Write Prometheus metrics to this textfile")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format (text, json)")

	fs.BoolVarP(&cfg.PrintVersion, "version", "v", false, "Print version and exit")
	fs.BoolVarP(&cfg.PrintHelp, "help", "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w (see --help)", err)
	}

	// un target posicional equivale a -t
	if rest := fs.Args(); len(rest) > 0 && cfg.Core.Target == "" {
		cfg.Core.Target = rest[0]
	}

	for _, name := range names {
		sc := cfg.Source.Sources[name]
		sc.Enabled = *enabled[name]
		sc.Priority = *priority[name]
		cfg.Source.Sources[name] = sc
	}
	return nil
}

func normalize(c *Config) {
	c.Core.Target = strings.TrimSpace(c.Core.Target)
	if !strings.Contains(c.Core.Target, "://") {
		c.Core.Target = strings.ToLower(strings.TrimSuffix(c.Core.Target, "."))
	}
	c.Core.Tool = strings.TrimSpace(strings.ToLower(c.Core.Tool))
	if c.Core.TimeoutS < 0 {
		c.Core.TimeoutS = 0
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "webnmap_out"
	}
	if c.Scan.BruteBatch <= 0 {
		c.Scan.BruteBatch = 5
	}
	if c.Scan.RaceTimeout <= 0 {
		c.Scan.RaceTimeout = 60 * time.Second
	}
	if c.Cache.DNSCapacity <= 0 {
		c.Cache.DNSCapacity = 512
	}
	if c.Resilience.CircuitBreakerThreshold <= 0 {
		c.Resilience.CircuitBreakerThreshold = 3
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

func validate(c Config) error {
	if c.Core.Target == "" {
		return fmt.Errorf("%w: use -t <host|url>", domain.ErrEmptyTarget)
	}
	if c.Core.Tool != "" {
		if _, err := domain.ParseTool(c.Core.Tool); err != nil {
			return fmt.Errorf("%w: %q", err, c.Core.Tool)
		}
	}
	modes := 0
	for _, on := range []bool{c.Core.Tool != "", c.Core.Info, c.Core.Observe != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("--tool, --info and --observe are mutually exclusive")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q (text, json)", c.Log.Format)
	}
	return nil
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Mode devuelve el modo de ejecución: scan, tool, info u observe.
func (c Config) Mode() string {
	switch {
	case c.Core.Tool != "":
		return "tool"
	case c.Core.Info:
		return "info"
	case c.Core.Observe != "":
		return "observe"
	default:
		return "scan"
	}
}

// Timeout devuelve el timeout global como time.Duration (0 = sin timeout).
func (c Config) Timeout() time.Duration {
	if c.Core.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.Core.TimeoutS) * time.Second
}

// Helpers

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webnmap/scan_cache.json"
	}
	return home + "/.webnmap/scan_cache.json"
}

func envName(source string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(source))
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// parseDuration acepta "3s" / "500ms" o un entero de segundos.
func parseDuration(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return def
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
