package doh

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/miekg/dns"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

// zone es un conjunto fijo de respuestas indexado por nombre y tipo.
type zone map[string]map[uint16][]string

func (z zone) answers(name string, qtype uint16) []string {
	return z[dns.Fqdn(name)][qtype]
}

var fixtureZone = zone{
	"example.com.": {
		dns.TypeA:  {"example.com. 300 IN A 93.184.216.34"},
		dns.TypeMX: {"example.com. 300 IN MX 10 mail.example.com."},
	},
	"8.8.8.8.in-addr.arpa.": {
		dns.TypePTR: {"8.8.8.8.in-addr.arpa. 3600 IN PTR dns.google."},
	},
}

func sourceConfig(url string) ports.SourceConfig {
	cfg := ports.DefaultSourceConfig()
	cfg.BaseURL = url
	cfg.Retries = 0
	return cfg
}

// googleServer sirve /resolve a partir de una zona.
func googleServer(t *testing.T, z zone, queries *[]string) string {
	var mu sync.Mutex
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		qtype, _ := strconv.Atoi(r.URL.Query().Get("type"))
		mu.Lock()
		*queries = append(*queries, name)
		mu.Unlock()

		resp := googleResponse{Status: dns.RcodeSuccess}
		for _, s := range z.answers(name, uint16(qtype)) {
			rr, err := dns.NewRR(s)
			if err != nil {
				t.Errorf("bad fixture %q: %v", s, err)
				continue
			}
			resp.Answer = append(resp.Answer, fromRR(rr))
		}
		if _, ok := z[dns.Fqdn(name)]; !ok {
			resp.Status = dns.RcodeNameError
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return srv.URL
}

// cloudflareServer sirve /dns-query en formato wire.
func cloudflareServer(t *testing.T, z zone) string {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != dnsMessageType {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		raw, err := base64.RawURLEncoding.DecodeString(r.URL.Query().Get("dns"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		query := new(dns.Msg)
		if err := query.Unpack(raw); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		reply := new(dns.Msg)
		reply.SetReply(query)
		q := query.Question[0]
		for _, s := range z.answers(q.Name, q.Qtype) {
			rr, err := dns.NewRR(s)
			if err == nil {
				reply.Answer = append(reply.Answer, rr)
			}
		}
		if _, ok := z[q.Name]; !ok {
			reply.Rcode = dns.RcodeNameError
		}
		packed, _ := reply.Pack()
		w.Header().Set("Content-Type", dnsMessageType)
		_, _ = w.Write(packed)
	}))
	return srv.URL
}

func TestGoogle_Resolve(t *testing.T) {
	var queries []string
	g := NewGoogle(sourceConfig(googleServer(t, fixtureZone, &queries)), logx.NewDiscard())

	records, err := g.Resolve(context.Background(), "example.com", dns.TypeA)
	testutil.RequireNoError(t, err, "resolve A")
	testutil.AssertEqual(t, records, []domain.DNSRecord{
		{Name: "example.com.", Type: dns.TypeA, TTL: 300, Data: "93.184.216.34"},
	}, "A answer")

	records, err = g.Resolve(context.Background(), "missing.example", dns.TypeA)
	testutil.AssertNoError(t, err, "nxdomain is not an error")
	testutil.AssertLen(t, records, 0, "nxdomain has no answers")
}

func TestGoogle_Malformed(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>captcha</html>"))
	}))
	g := NewGoogle(sourceConfig(srv.URL), logx.NewDiscard())

	_, err := g.Resolve(context.Background(), "example.com", dns.TypeA)
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "html body is malformed")
}

func TestGoogle_ServFail(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Status":2}`))
	}))
	g := NewGoogle(sourceConfig(srv.URL), logx.NewDiscard())

	_, err := g.Resolve(context.Background(), "example.com", dns.TypeA)
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "servfail is a failure")
}

func TestCloudflare_Resolve(t *testing.T) {
	c := NewCloudflare(sourceConfig(cloudflareServer(t, fixtureZone)), logx.NewDiscard())

	records, err := c.Resolve(context.Background(), "example.com", dns.TypeMX)
	testutil.RequireNoError(t, err, "resolve MX")
	testutil.AssertLen(t, records, 1, "one MX")
	testutil.AssertEqual(t, records[0].Data, "10 mail.example.com.", "mx data in presentation format")
	testutil.AssertEqual(t, records[0].TypeName(), "MX", "type")

	records, err = c.Resolve(context.Background(), "missing.example", dns.TypeA)
	testutil.AssertNoError(t, err, "nxdomain is not an error")
	testutil.AssertLen(t, records, 0, "no answers")
}

func TestLookup_DNSReport(t *testing.T) {
	var queries []string
	g := NewGoogle(sourceConfig(googleServer(t, fixtureZone, &queries)), logx.NewDiscard())

	out, err := g.Lookup(context.Background(), domain.ToolDNS, "example.com")
	testutil.RequireNoError(t, err, "dns tool")
	testutil.AssertEqual(t, out, "example.com.\tA\t93.184.216.34\nexample.com.\tMX\t10 mail.example.com.\n", "report lines")
	testutil.AssertLen(t, queries, len(googleTypes), "one query per record type")

	_, err = g.Lookup(context.Background(), domain.ToolDNS, "missing.example")
	testutil.AssertErrorIs(t, err, errors.ErrNotFound, "empty report fails")
}

func TestLookup_PTRReport(t *testing.T) {
	for name, source := range map[string]ports.Source{
		"google":     NewGoogle(sourceConfig(googleServer(t, fixtureZone, new([]string))), logx.NewDiscard()),
		"cloudflare": NewCloudflare(sourceConfig(cloudflareServer(t, fixtureZone)), logx.NewDiscard()),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := source.Lookup(context.Background(), domain.ToolReverseDNS, "8.8.8.8")
			testutil.RequireNoError(t, err, "reverse dns")
			testutil.AssertEqual(t, out, "8.8.8.8\t→\tdns.google.", "ptr line")

			_, err = source.Lookup(context.Background(), domain.ToolReverseDNS, "example.com")
			testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "hostname is rejected")

			_, err = source.Lookup(context.Background(), domain.ToolPing, "8.8.8.8")
			testutil.AssertErrorIs(t, err, errors.ErrInvalidInput, "unsupported tool")
		})
	}
}
