// internal/platform/validator/validator_test.go
package validator

import (
	"testing"

	"webnmap/internal/testutil"
)

func TestIsDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid domain", "example.com", true},
		{"valid multi-level", "api.test.example.com", true},
		{"single label", "localhost", true},
		{"empty string", "", false},
		{"too long", string(make([]byte, 300)), false},
		{"ip address", "192.168.1.1", false},
		{"invalid chars", "exam ple.com", false},
		{"starts with hyphen", "-example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsDomain(tt.input), tt.expected, "domain validation")
		})
	}
}

func TestInDomain(t *testing.T) {
	tests := []struct {
		name, domain string
		expected     bool
	}{
		{"sub.example.com", "example.com", true},
		{"example.com", "example.com", true},
		{"A.B.Example.COM.", "example.com", true},
		{"evilexample.com", "example.com", false},
		{"example.com.evil.net", "example.com", false},
		{"", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, InDomain(tt.name, tt.domain), tt.expected, "suffix match")
		})
	}
}

func TestIsDottedQuad(t *testing.T) {
	testutil.AssertTrue(t, IsDottedQuad("192.0.2.1"), "plain ipv4")
	testutil.AssertTrue(t, IsDottedQuad("999.1.1.1"), "ranges are not checked")
	testutil.AssertFalse(t, IsDottedQuad("192.0.2"), "three groups")
	testutil.AssertFalse(t, IsDottedQuad("example.com"), "hostname")
	testutil.AssertFalse(t, IsDottedQuad("::1"), "ipv6")

	testutil.AssertFalse(t, IsIPv4("999.1.1.1"), "strict check rejects ranges")
	testutil.AssertTrue(t, IsIPv6("2001:db8::1"), "ipv6")
}

func TestReverseIPv4Name(t *testing.T) {
	name, ok := ReverseIPv4Name("8.8.8.8")
	testutil.AssertTrue(t, ok, "valid ip")
	testutil.AssertEqual(t, name, "8.8.8.8.in-addr.arpa", "palindromic address")

	name, ok = ReverseIPv4Name("192.0.2.1")
	testutil.AssertTrue(t, ok, "valid ip")
	testutil.AssertEqual(t, name, "1.2.0.192.in-addr.arpa", "octets reversed")

	_, ok = ReverseIPv4Name("example.com")
	testutil.AssertFalse(t, ok, "hostname rejected")
}

func TestParsePort(t *testing.T) {
	port, ok := ParsePort("8443")
	testutil.AssertTrue(t, ok, "valid port")
	testutil.AssertEqual(t, port, 8443, "parsed value")

	for _, bad := range []string{"0", "65536", "http", ""} {
		testutil.AssertFalse(t, IsPort(bad), "invalid port "+bad)
	}
}
