// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
webnmap - Lightweight Network Reconnaissance

USAGE:
  webnmap -t <target> [options]              Full scan
  webnmap -t <target> --tool <name>          Single network tool (provider race)
  webnmap -t <host> --info                   Print the cached entry for a host
  webnmap -t <host> --observe <file>         Merge a response header dump into the cache

  <target> may be a host, an IPv4 address, host:port or a URL
  (https://example.com:8443/). Use -- for long flags and - for short ones.

CORE OPTIONS:
  -t, --target string      Target (required)
  -w, --wordlist string    Wordlist file for directory brute forcing (one path per line)
      --tool string        dns, reverse_dns, whois, geoip, asn, http_headers,
                           traceroute, ping, nmap, page_links, reverse_ip, subnet
  -i, --info               Print the cached entry and exit
      --observe string     Header dump ("Name: value" per line, e.g. curl -sI output)
                           fingerprinted and merged into the cache entry for <host>
  -T, --timeout int        Global timeout in seconds, 0=no timeout (default: 0)
  -c, --config string      YAML config file (also WEBNMAP_CONFIG)

SCAN OPTIONS:
  --race-timeout duration  Provider race timeout (default: 60s)
  --port-timeout duration  Per-attempt port probe timeout (default: 2s)
  --brute-timeout duration Per-path brute-force timeout (default: 3s)
  --brute-batch int        Concurrent brute-force probes per batch (default: 5)

SOURCE OPTIONS:
  --src.<name>                 Enable or disable a provider (default: true)
  --src.<name>.priority int    Provider priority, higher first

  Providers: hackertarget, google-doh, cloudflare-doh, rdap, whois, ipwhois,
             ipapi, ipapico, bgpview, ripestat, direct

CACHE OPTIONS:
  --cache string           Result cache file (default: ~/.webnmap/scan_cache.json)
  --no-cache               Keep the result cache in memory only

OUTPUT OPTIONS:
  -o, --out string         Output directory (default: "webnmap_out")
  -q, --quiet              Disable UI and table output
      --json               Also print the JSON result to stdout
      --no-file            Do not write the JSON result file

RESILIENCE OPTIONS:
  --circuit-breaker        Enable per-provider circuit breakers (default: true)

NETWORK OPTIONS:
  -p, --proxy string       HTTP(S) proxy URL for outbound requests (optional)

OBSERVABILITY:
  --metrics.file string    Write Prometheus metrics (textfile collector format)
  --log-level string       debug, info, warn, error (default: info)
  --log-format string      text, json (default: text)

INFO:
  -v, --version            Print version information and exit
  -h, --help               Show this help message

EXAMPLES:
  Scan a host:
    webnmap -t example.com

  Scan a URL with a brute-force wordlist:
    webnmap -t https://example.com:8443/ -w paths.txt

  GeoIP lookup racing every geolocation provider:
    webnmap -t 1.1.1.1 --tool geoip

  Disable specific providers:
    webnmap -t example.com --src.hackertarget=false --src.ipapico=false

ENVIRONMENT VARIABLES:
  WEBNMAP_TARGET                        Target
  WEBNMAP_WORDLIST=/path                Wordlist file
  WEBNMAP_TIMEOUT=60                    Global timeout in seconds
  WEBNMAP_RACE_TIMEOUT=30s              Provider race timeout
  WEBNMAP_OUTPUT_DIR=/path              Output directory
  WEBNMAP_CACHE_PATH=/path              Result cache file
  WEBNMAP_PROXY_URL=http://...          Proxy URL
  WEBNMAP_METRICS_FILE=/path            Metrics textfile
  WEBNMAP_LOG_LEVEL=debug               Log level

  Provider-specific (replace HACKERTARGET with the provider name,
  dashes become underscores: GOOGLE_DOH):
  WEBNMAP_SOURCES_HACKERTARGET_ENABLED=false
  WEBNMAP_SOURCES_HACKERTARGET_PRIORITY=20
  WEBNMAP_SOURCES_HACKERTARGET_API_KEY=...

  Precedence: defaults < config file < environment < CLI flags.
`

// PrintHelp escribe la ayuda en w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion escribe la información de versión en w.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "webnmap %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
