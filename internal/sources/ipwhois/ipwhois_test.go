package ipwhois

import (
	"context"
	"net/http"
	"testing"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

const googleDNS = `{"success":true,"ip":"8.8.8.8","type":"IPv4","country":"United States",
"country_code":"US","region":"California","city":"Mountain View","latitude":37.3860517,
"longitude":-122.0838511,"timezone":"America/Los_Angeles","isp":"Google LLC","org":"Google LLC","asn":"AS15169"}`

func newSource(t *testing.T, body string) (*IPWhois, *string) {
	t.Helper()
	var path string
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(body))
	}))
	cfg := ports.DefaultSourceConfig()
	cfg.BaseURL = srv.URL
	cfg.Retries = 0
	return New(cfg, logx.NewDiscard()), &path
}

func TestLookup_Whois(t *testing.T) {
	source, path := newSource(t, googleDNS)

	out, err := source.Lookup(context.Background(), domain.ToolWhois, "8.8.8.8")
	testutil.RequireNoError(t, err, "lookup")
	testutil.AssertEqual(t, *path, "/8.8.8.8", "target in path")
	testutil.AssertContains(t, out, "IP: 8.8.8.8\nType: IPv4\n", "leading lines")
	testutil.AssertContains(t, out, "Country: United States (US)\n", "country with code")
	testutil.AssertContains(t, out, "ASN: AS15169\n", "asn")
	testutil.AssertNotContains(t, out, "Latitude", "whois has no coordinates")
}

func TestLookup_GeoIP(t *testing.T) {
	source, _ := newSource(t, googleDNS)

	out, err := source.Lookup(context.Background(), domain.ToolGeoIP, "8.8.8.8")
	testutil.RequireNoError(t, err, "lookup")
	testutil.AssertContains(t, out, "Latitude: 37.3860517\n", "latitude")
	testutil.AssertContains(t, out, "Timezone: America/Los_Angeles\n", "timezone")
	testutil.AssertContains(t, out, "Country: United States\n", "country without code")
}

func TestLookup_Failure(t *testing.T) {
	source, _ := newSource(t, `{"success":false,"message":"invalid IP address"}`)

	_, err := source.Lookup(context.Background(), domain.ToolGeoIP, "nope")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "unsuccessful lookup")
	testutil.AssertContains(t, err.Error(), "invalid IP address", "api message kept")

	_, err = source.Lookup(context.Background(), domain.ToolASN, "8.8.8.8")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "asn not supported")
}
