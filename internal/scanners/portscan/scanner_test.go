package portscan

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
	"webnmap/internal/testutil"
)

// scriptedProber responde según el protocolo y registra las URLs sondeadas.
type scriptedProber struct {
	mu    sync.Mutex
	calls []string
	reply map[string]error
	delay time.Duration
}

func (p *scriptedProber) Probe(ctx context.Context, u string) error {
	p.mu.Lock()
	p.calls = append(p.calls, u)
	p.mu.Unlock()
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	proto := strings.SplitN(u, "://", 2)[0]
	return p.reply[proto]
}

func (p *scriptedProber) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

var errRefused = errors.New("connect: connection refused")

func newScanner(p Prober) *Scanner {
	return New(Config{ClosedThreshold: 50 * time.Millisecond}, p, logx.NewDiscard(), nil)
}

func TestScanPort_BlockedNeverProbed(t *testing.T) {
	p := &scriptedProber{}
	s := newScanner(p)

	for _, port := range []int{21, 22, 23, 25, 465, 587} {
		testutil.AssertEqual(t, s.ScanPort(context.Background(), "example.com", port), domain.PortBlocked, "unsafe port "+strconv.Itoa(port))
	}
	testutil.AssertLen(t, p.Calls(), 0, "zero probes for blocked ports")
}

func TestScanPort_Classification(t *testing.T) {
	tests := []struct {
		name   string
		reply  map[string]error
		delay  time.Duration
		port   int
		want   domain.PortState
		probes int
	}{
		{"response is open", map[string]error{}, 0, 80, domain.PortOpen, 1},
		{"timeout is filtered", map[string]error{"http": errors.ErrTimeout}, 0, 80, domain.PortFiltered, 1},
		{"second protocol answers", map[string]error{"http": errRefused}, 0, 8080, domain.PortOpen, 2},
		{"fast refusal is closed", map[string]error{"http": errRefused, "https": errRefused}, 0, 3000, domain.PortClosed, 2},
		{"slow refusal is filtered", map[string]error{"http": errRefused, "https": errRefused}, 60 * time.Millisecond, 3000, domain.PortFiltered, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProber{reply: tt.reply, delay: tt.delay}
			got := newScanner(p).ScanPort(context.Background(), "example.com", tt.port)
			testutil.AssertEqual(t, got, tt.want, "state")
			testutil.AssertLen(t, p.Calls(), tt.probes, "probe count")
		})
	}
}

func TestScanPort_ProtocolOrder(t *testing.T) {
	for port, first := range map[int]string{443: "https", 8443: "https", 80: "http", 9000: "http"} {
		p := &scriptedProber{reply: map[string]error{}}
		newScanner(p).ScanPort(context.Background(), "example.com", port)

		calls := p.Calls()
		testutil.AssertLen(t, calls, 1, "one probe")
		u, err := url.Parse(calls[0])
		testutil.RequireNoError(t, err, "probe url parses")
		testutil.AssertEqual(t, u.Scheme, first, "first protocol for "+strconv.Itoa(port))
		testutil.AssertEqual(t, u.Port(), strconv.Itoa(port), "port in url")
		testutil.AssertTrue(t, u.Query().Get("nocache") != "", "cache buster")
	}
}

func TestScanTarget(t *testing.T) {
	p := &scriptedProber{reply: map[string]error{}}
	rec := metrics.New()
	s := New(Config{}, p, logx.NewDiscard(), rec)

	records := s.ScanTarget(context.Background(), "example.com", 4444)
	testutil.AssertLen(t, records, len(CommonPorts)+1, "extra port appended")
	testutil.AssertEqual(t, records[len(records)-1], domain.PortRecord{Port: 4444, State: domain.PortOpen, Service: "unknown"}, "extra port record")
	testutil.AssertEqual(t, records[0], domain.PortRecord{Port: 21, State: domain.PortBlocked, Service: "ftp"}, "first record")

	again := s.ScanTarget(context.Background(), "example.com", 443)
	testutil.AssertLen(t, again, len(CommonPorts), "listed port not duplicated")
}

func TestHTTPProber(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	_, portStr, _ := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	port, _ := strconv.Atoi(portStr)

	s := New(Config{}, nil, logx.NewDiscard(), nil)
	testutil.AssertEqual(t, s.ScanPort(context.Background(), "127.0.0.1", port), domain.PortOpen, "any status is open")

	// los estados reintentables también son una respuesta
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		busy := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, busyPort, _ := net.SplitHostPort(strings.TrimPrefix(busy.URL, "http://"))
		n, _ := strconv.Atoi(busyPort)
		testutil.AssertEqual(t, s.ScanPort(context.Background(), "127.0.0.1", n), domain.PortOpen, http.StatusText(status)+" is open")
	}

	// puerto sin listener: rechazo inmediato en ambos protocolos
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testutil.RequireNoError(t, err, "listen")
	closedPort := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	testutil.AssertEqual(t, s.ScanPort(context.Background(), "127.0.0.1", closedPort), domain.PortClosed, "refused port is closed")
}

func TestServiceName(t *testing.T) {
	testutil.AssertEqual(t, ServiceName(5432), "postgresql", "known service")
	testutil.AssertEqual(t, ServiceName(9090), "unknown", "fallback")
	testutil.AssertTrue(t, IsUnsafe(6697), "irc tls is unsafe")
	testutil.AssertFalse(t, IsUnsafe(8080), "8080 is probed")
}
