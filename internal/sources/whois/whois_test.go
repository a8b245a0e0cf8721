package whois

import (
	"context"
	"testing"
	"time"

	whoisparser "github.com/likexian/whois-parser"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

const comRecord = "   Domain Name: EXAMPLE.COM\r\n" +
	"   Registry Domain ID: 2336799_DOMAIN_COM-VRSN\r\n" +
	"   Registrar WHOIS Server: whois.iana.org\r\n" +
	"   Updated Date: 2025-08-14T07:01:39Z\r\n" +
	"   Creation Date: 1995-08-14T04:00:00Z\r\n" +
	"   Registry Expiry Date: 2026-08-13T04:00:00Z\r\n" +
	"   Registrar: RESERVED-Internet Assigned Numbers Authority\r\n" +
	"   Registrar IANA ID: 376\r\n" +
	"   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited\r\n" +
	"   Name Server: A.IANA-SERVERS.NET\r\n" +
	"   Name Server: B.IANA-SERVERS.NET\r\n" +
	"   DNSSEC: signedDelegation\r\n"

func stubbed(text string, err error, seen *string) *Whois {
	w := New(ports.DefaultSourceConfig(), logx.NewDiscard())
	w.query = func(ctx context.Context, target string) (string, error) {
		if seen != nil {
			*seen = target
		}
		return text, err
	}
	return w
}

func TestLookup_Domain(t *testing.T) {
	var seen string
	out, err := stubbed(comRecord, nil, &seen).Lookup(context.Background(), domain.ToolWhois, "Example.COM")
	testutil.RequireNoError(t, err, "lookup")
	testutil.AssertEqual(t, seen, "example.com", "target normalized")
	testutil.AssertContains(t, out, "Registrar: RESERVED-Internet Assigned Numbers Authority", "registrar line")
	testutil.AssertNotContains(t, out, "\r", "line endings normalized")
}

func TestLookup_IPIsRaw(t *testing.T) {
	raw := "NetRange: 8.8.8.0 - 8.8.8.255\nOrgName: Google LLC"
	out, err := stubbed(raw, nil, nil).Lookup(context.Background(), domain.ToolWhois, "8.8.8.8")
	testutil.RequireNoError(t, err, "lookup")
	testutil.AssertEqual(t, out, raw+"\n", "ip whois is passed through")
}

func TestLookup_Errors(t *testing.T) {
	_, err := stubbed("", nil, nil).Lookup(context.Background(), domain.ToolWhois, "example.com")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "empty response")

	_, err = stubbed("", errors.ErrTimeout, nil).Lookup(context.Background(), domain.ToolWhois, "example.com")
	testutil.AssertErrorIs(t, err, errors.ErrTimeout, "transport error wrapped")

	_, err = stubbed(comRecord, nil, nil).Lookup(context.Background(), domain.ToolDNS, "example.com")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "unsupported tool")
}

func TestClientQuery_Cancel(t *testing.T) {
	w := New(ports.SourceConfig{Timeout: time.Second}, logx.NewDiscard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.query(ctx, "example.invalid")
	testutil.AssertTrue(t, errors.IsCanceled(err), "cancelled context short-circuits the query")
}

func TestSummary(t *testing.T) {
	info := whoisparser.WhoisInfo{
		Domain: &whoisparser.Domain{
			Domain:         "example.com",
			CreatedDate:    "1995-08-14T04:00:00Z",
			ExpirationDate: "2026-08-13T04:00:00Z",
			NameServers:    []string{"a.iana-servers.net", "b.iana-servers.net"},
			DNSSec:         true,
		},
		Registrar: &whoisparser.Contact{Name: "Example Registrar"},
	}

	out := summary(info)
	testutil.AssertContains(t, out, "Domain: example.com\n", "domain")
	testutil.AssertContains(t, out, "Name Servers: a.iana-servers.net, b.iana-servers.net\n", "nameservers")
	testutil.AssertContains(t, out, "DNSSEC: signed\n", "dnssec")
	testutil.AssertContains(t, out, "Registrar: Example Registrar\n", "registrar")
	testutil.AssertNotContains(t, out, "Updated:", "empty fields are omitted")
}
