// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"sync"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/race"
)

// mockSource es un mock de ports.Source para tests del lookup service
type mockSource struct {
	name       string
	tools      []domain.Tool
	lookupFunc func(ctx context.Context, tool domain.Tool, target string) (string, error)

	mu    sync.Mutex
	calls int
}

func newMockSource(name string, fn func(ctx context.Context, tool domain.Tool, target string) (string, error), tools ...domain.Tool) *mockSource {
	return &mockSource{name: name, tools: tools, lookupFunc: fn}
}

func (m *mockSource) Name() string         { return m.name }
func (m *mockSource) Tools() []domain.Tool { return m.tools }

func (m *mockSource) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.lookupFunc(ctx, tool, target)
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockTools es un ports.ToolRunner que responde "[Source: mock]" a todo
type mockTools struct {
	mu      sync.Mutex
	calls   []domain.Tool
	targets []string
}

func (m *mockTools) Run(_ context.Context, tool domain.Tool, target string) race.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, tool)
	m.targets = append(m.targets, target)
	return race.Outcome{Winner: "mock", Payload: string(tool) + " for " + target, Providers: 1}
}

func (m *mockTools) called(tool domain.Tool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == tool {
			return true
		}
	}
	return false
}

type mockPorts struct {
	records   []domain.PortRecord
	host      string
	extraPort int
}

func (m *mockPorts) ScanTarget(_ context.Context, host string, extraPort int) []domain.PortRecord {
	m.host, m.extraPort = host, extraPort
	return m.records
}

type mockDNS struct {
	resolveCalls   []uint16
	ptrCalls       []string
	subdomainCalls int
	panicOnResolve bool
}

func (m *mockDNS) Resolve(_ context.Context, name string, qtype uint16) []domain.DNSRecord {
	if m.panicOnResolve {
		panic("resolver exploded")
	}
	m.resolveCalls = append(m.resolveCalls, qtype)
	return []domain.DNSRecord{{Name: name + ".", Type: qtype, TTL: 60, Data: "record"}}
}

func (m *mockDNS) ReversePTR(_ context.Context, ip string) []domain.DNSRecord {
	m.ptrCalls = append(m.ptrCalls, ip)
	return []domain.DNSRecord{{Name: "1.2.0.192.in-addr.arpa.", Type: 12, TTL: 60, Data: "host.example."}}
}

func (m *mockDNS) FindSubdomains(context.Context, string) []string {
	m.subdomainCalls++
	return []string{"sub.example.com"}
}

type mockRegistration struct {
	reg   domain.Registration
	err   error
	calls int
}

func (m *mockRegistration) Registration(context.Context, string) (domain.Registration, error) {
	m.calls++
	return m.reg, m.err
}

type mockExposure struct {
	findings []domain.Finding
}

func (m *mockExposure) Probe(context.Context, string) []domain.Finding {
	return m.findings
}

type mockMapper struct {
	calls int
}

func (m *mockMapper) Analyze(context.Context, string) domain.SiteStructure {
	m.calls++
	return domain.SiteStructure{Robots: domain.RobotsFound, Disallowed: []string{"/admin"}}
}

type mockBruter struct {
	calls   int
	baseURL string
}

func (m *mockBruter) BruteForce(_ context.Context, baseURL string, wordlist []string, onProgress ports.ProgressFunc) []domain.BruteResult {
	m.calls++
	m.baseURL = baseURL
	if onProgress != nil {
		onProgress(ports.ProgressEvent{Type: ports.EventTypeDirBrute, Current: len(wordlist), Total: len(wordlist)})
	}
	return []domain.BruteResult{{Path: "/" + wordlist[0], Status: domain.BruteLabelExisting, Found: true, Code: 200}}
}

// recordingObserver guarda los eventos de etapa en orden
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) StageStarted(stage string) { r.add("start:" + stage) }
func (r *recordingObserver) StageFinished(stage string, _ time.Duration, err error) {
	if err != nil {
		r.add("fail:" + stage)
		return
	}
	r.add("done:" + stage)
}
func (r *recordingObserver) StageSkipped(stage string, _ string) { r.add("skip:" + stage) }

func (r *recordingObserver) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.events {
		if got == e {
			return true
		}
	}
	return false
}
