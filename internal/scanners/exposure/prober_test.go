package exposure

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

func TestProbe(t *testing.T) {
	srv := testutil.NewTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Method, http.MethodHead, "head request")
		switch r.URL.Path {
		case "/.env", "/server-status":
			w.WriteHeader(http.StatusOK)
		case "/.git/HEAD":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	findings := New(time.Second, logx.NewDiscard()).Probe(context.Background(), strings.TrimPrefix(srv.URL, "https://"))
	testutil.AssertEqual(t, findings, []domain.Finding{
		{Type: "Exposed File", Severity: domain.SeverityHigh, Detail: "Found reachable file: /.env"},
		{Type: "Exposed File", Severity: domain.SeverityHigh, Detail: "Found reachable file: /server-status"},
	}, "only 200 responses are findings")
}

func TestProbe_Unreachable(t *testing.T) {
	srv := testutil.NewTLSServer(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host := strings.TrimPrefix(srv.URL, "https://")
	srv.Close()

	findings := New(100*time.Millisecond, logx.NewDiscard()).Probe(context.Background(), host)
	testutil.AssertNotNil(t, findings, "never nil")
	testutil.AssertLen(t, findings, 0, "nothing reachable")
}

func TestVersionVulns(t *testing.T) {
	got := VersionVulns("Apache/2.4.49 (Unix) PHP/5.6.40")
	testutil.AssertLen(t, got, 2, "both rules match")
	testutil.AssertEqual(t, got[0].Type, "CVE-2021-41773", "apache cve")
	testutil.AssertEqual(t, got[0].Severity, domain.SeverityCritical, "critical")
	testutil.AssertEqual(t, got[1].Severity, domain.SeverityMedium, "eol is medium")

	testutil.AssertLen(t, VersionVulns("Apache/2.4.58"), 0, "patched apache")
	testutil.AssertLen(t, VersionVulns(""), 0, "no header")
}
