package rdap

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

const domainDoc = `{
  "objectClassName": "domain",
  "handle": "2336799_DOMAIN_COM-VRSN",
  "ldhName": "EXAMPLE.COM",
  "status": ["client delete prohibited"],
  "events": [
    {"eventAction": "registration", "eventDate": "1995-08-14T04:00:00Z"},
    {"eventAction": "expiration", "eventDate": "2026-08-13T04:00:00Z"},
    {"eventAction": "last changed", "eventDate": "2025-08-14T07:01:39Z"}
  ],
  "entities": [
    {"handle": "376", "roles": ["registrar"],
     "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "RESERVED-Internet Assigned Numbers Authority"]]]},
    {"handle": "ABUSE", "roles": ["abuse"],
     "vcardArray": ["vcard", [["fn", {}, "text", "Abuse Desk"],
                              ["adr", {}, "text", ["", "", "12025 Waterfront Drive", "Los Angeles", "CA", "90094", "US"]],
                              ["email", {}, "text", "abuse@example.net"],
                              ["tel", {"type": "voice"}, "uri", "tel:+1.3108239358"]]]}
  ],
  "nameservers": [{"ldhName": "A.IANA-SERVERS.NET"}, {"ldhName": "B.IANA-SERVERS.NET"}],
  "secureDNS": {"delegationSigned": true}
}`

const ipDoc = `{
  "objectClassName": "ip network",
  "handle": "NET-8-8-8-0-2",
  "name": "GOGL",
  "events": [{"eventAction": "registration", "eventDate": "2023-12-28T17:24:33-05:00"}]
}`

func newRDAP(t *testing.T, hits *int32) *RDAP {
	t.Helper()
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/domain/example.com":
			_, _ = w.Write([]byte(domainDoc))
		case "/ip/8.8.8.8":
			_, _ = w.Write([]byte(ipDoc))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	cfg := ports.DefaultSourceConfig()
	cfg.BaseURL = srv.URL
	cfg.Retries = 0
	return New(cfg, logx.NewDiscard())
}

func TestRDAP_LookupDomain(t *testing.T) {
	var hits int32
	source := newRDAP(t, &hits)

	out, err := source.Lookup(context.Background(), domain.ToolWhois, "www.example.com")
	testutil.RequireNoError(t, err, "whois lookup")

	for _, want := range []string{
		"Handle: 2336799_DOMAIN_COM-VRSN\n",
		"Name: EXAMPLE.COM\n",
		"registration: 1995-08-14T04:00:00Z\n",
		"Entity: 376 [registrar]\n",
		"  Name: RESERVED-Internet Assigned Numbers Authority\n",
		"  Address: 12025 Waterfront Drive, Los Angeles, CA, 90094, US\n",
		"  Email: abuse@example.net\n",
		"  Phone: tel:+1.3108239358\n",
		"\nNameservers:\n  A.IANA-SERVERS.NET\n  B.IANA-SERVERS.NET\n",
	} {
		testutil.AssertContains(t, out, want, "rendered text")
	}

	_, err = source.Lookup(context.Background(), domain.ToolWhois, "example.com")
	testutil.RequireNoError(t, err, "second lookup")
	testutil.AssertEqual(t, atomic.LoadInt32(&hits), int32(1), "base domain is cached")
}

func TestRDAP_LookupIP(t *testing.T) {
	var hits int32
	out, err := newRDAP(t, &hits).Lookup(context.Background(), domain.ToolWhois, "8.8.8.8")
	testutil.RequireNoError(t, err, "ip lookup")
	testutil.AssertEqual(t, out, "Handle: NET-8-8-8-0-2\nName: GOGL\nregistration: 2023-12-28T17:24:33-05:00\n", "ip network text")
}

func TestRDAP_LookupErrors(t *testing.T) {
	var hits int32
	source := newRDAP(t, &hits)

	_, err := source.Lookup(context.Background(), domain.ToolWhois, "unknown.test")
	testutil.AssertErrorIs(t, err, errors.ErrNotFound, "404 is not found")
	testutil.AssertContains(t, err.Error(), "RDAP HTTP 404", "status in message")

	_, err = source.Lookup(context.Background(), domain.ToolGeoIP, "8.8.8.8")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "unsupported tool")
}

func TestRDAP_Registration(t *testing.T) {
	var hits int32
	source := newRDAP(t, &hits)

	reg, err := source.Registration(context.Background(), "example.com")
	testutil.RequireNoError(t, err, "registration")
	testutil.AssertEqual(t, reg.Registrar, "RESERVED-Internet Assigned Numbers Authority", "registrar from registrar role")
	testutil.AssertEqual(t, reg.Created, "1995-08-14T04:00:00Z", "created")
	testutil.AssertEqual(t, reg.Updated, "2025-08-14T07:01:39Z", "updated")
	testutil.AssertEqual(t, reg.Expires, "2026-08-13T04:00:00Z", "expires")
	testutil.AssertEqual(t, reg.Handle, "2336799_DOMAIN_COM-VRSN", "handle")
	testutil.AssertEqual(t, reg.Nameservers, []string{"a.iana-servers.net", "b.iana-servers.net"}, "nameservers")
	testutil.AssertNotNil(t, reg.DNSSEC, "dnssec present")
	testutil.AssertTrue(t, *reg.DNSSEC, "delegation signed")

	_, err = source.Registration(context.Background(), "8.8.8.8")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "ip has no registration summary")
}

func TestSummarize_Defaults(t *testing.T) {
	reg := summarize(&rdapResponse{})
	testutil.AssertEqual(t, reg.Registrar, "Unknown", "registrar default")
	testutil.AssertEqual(t, reg.Created, "Unknown", "created default")
	testutil.AssertEqual(t, reg.Expires, "Unknown", "expires default")
	testutil.AssertNil(t, reg.DNSSEC, "no secureDNS block")
}

func TestExtractBaseDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"api.staging.example.com", "example.com"},
		{"test.example.co.uk", "example.co.uk"},
		{"Example.COM.", "example.com"},
		{"localhost", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testutil.AssertEqual(t, extractBaseDomain(tt.input), tt.expected, "extracted domain should match")
		})
	}
}

func TestVCard(t *testing.T) {
	vcardArray := []interface{}{
		"vcard",
		[]interface{}{
			[]interface{}{"version", map[string]interface{}{}, "text", "4.0"},
			[]interface{}{"FN", map[string]interface{}{}, "text", "Jane Doe"},
			[]interface{}{"short"},
		},
	}

	testutil.AssertEqual(t, vcardField(vcardArray, "fn"), "Jane Doe", "case insensitive")
	testutil.AssertEqual(t, vcardField(vcardArray, "email"), "", "missing field")
	testutil.AssertEqual(t, vcardField([]interface{}{}, "fn"), "", "invalid vcard")
	testutil.AssertLen(t, vcardProperties(vcardArray), 2, "malformed items skipped")

	testutil.AssertTrue(t, hasRole([]string{"Registrar"}, "registrar"), "case insensitive role")
	testutil.AssertFalse(t, hasRole(nil, "registrar"), "no roles")
}
