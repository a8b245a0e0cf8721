// internal/core/domain/scan_result_test.go
package domain

import (
	"encoding/json"
	"testing"
	"time"

	"webnmap/internal/testutil"
)

func mustTarget(t *testing.T, raw string) Target {
	t.Helper()
	target, err := ParseTarget(raw)
	testutil.RequireNoError(t, err, "parse target")
	return target
}

func TestNewScanResult(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	result := NewScanResult("scan-1", mustTarget(t, "https://example.com:8443/"), now)

	testutil.AssertEqual(t, result.ScanID, "scan-1", "id")
	testutil.AssertEqual(t, result.Domain, "example.com", "domain")
	testutil.AssertEqual(t, result.FullTarget, "https://example.com:8443/", "full target")
	testutil.AssertEqual(t, *result.TargetPort, 8443, "port")
	testutil.AssertEqual(t, result.Timestamp, int64(1700000000123), "unix ms")
	testutil.AssertNotNil(t, result.Ports, "ports initialized")
	testutil.AssertNotNil(t, result.Vulns, "vulns initialized")
	testutil.AssertNotNil(t, result.DirBrute, "dir_brute initialized")
	testutil.AssertFalse(t, result.HasErrors(), "no errors yet")
}

func TestScanResult_JSONDefaults(t *testing.T) {
	result := NewScanResult("scan-1", mustTarget(t, "example.com"), time.Now())

	raw, err := json.Marshal(result)
	testutil.RequireNoError(t, err, "marshal")

	var doc map[string]any
	testutil.RequireNoError(t, json.Unmarshal(raw, &doc), "unmarshal")

	testutil.AssertEqual(t, doc["ports"], []any{}, "ports is an empty list")
	testutil.AssertEqual(t, doc["subdomains"], []any{}, "subdomains is an empty list")
	testutil.AssertEqual(t, doc["vulns"], []any{}, "vulns is an empty list")
	testutil.AssertEqual(t, doc["dir_brute"], []any{}, "dir_brute is an empty list")
	testutil.AssertEqual(t, doc["whois"], map[string]any{}, "whois is an empty object")
	testutil.AssertEqual(t, doc["structure"], map[string]any{}, "structure is an empty object")
	testutil.AssertNil(t, doc["target_port"], "no port")
}

func TestScanResult_Record_Branches(t *testing.T) {
	t.Run("hostname scan omits rec_ptr", func(t *testing.T) {
		result := NewScanResult("a", mustTarget(t, "example.com"), time.Now())
		result.RecA = []DNSRecord{{Name: "example.com.", Type: 1, TTL: 300, Data: "93.184.216.34"}}

		rec, err := result.Record()
		testutil.RequireNoError(t, err, "record")
		testutil.AssertContains(t, rec.Keys(), "rec_a", "hostname branch key")
		testutil.AssertNotContains(t, rec.Keys(), "rec_ptr", "ip branch key dropped")
	})

	t.Run("ip scan omits hostname records", func(t *testing.T) {
		result := NewScanResult("b", mustTarget(t, "192.0.2.1"), time.Now())

		rec, err := result.Record()
		testutil.RequireNoError(t, err, "record")
		testutil.AssertContains(t, rec.Keys(), "rec_ptr", "ip branch key")
		for _, k := range []string{"rec_a", "rec_aaaa", "rec_mx", "rec_ns", "rec_txt"} {
			testutil.AssertNotContains(t, rec.Keys(), k, "hostname branch key dropped")
		}
	})
}

func TestScanResult_OpenPortsAndErrors(t *testing.T) {
	result := NewScanResult("c", mustTarget(t, "example.com"), time.Now())
	result.Ports = []PortRecord{
		{Port: 22, State: PortBlocked, Service: "ssh"},
		{Port: 80, State: PortOpen, Service: "http"},
		{Port: 81, State: PortClosed, Service: "unknown"},
		{Port: 443, State: PortOpen, Service: "https"},
	}
	result.AddError("ports", "boom")

	testutil.AssertEqual(t, result.OpenPorts(), []int{80, 443}, "open ports")
	testutil.AssertTrue(t, result.HasErrors(), "error recorded")
	testutil.AssertEqual(t, result.Errors[0], StageError{Stage: "ports", Message: "boom"}, "stage error")
	testutil.AssertTrue(t, testutil.ContainsStr(result.Summary(), "open_ports=2"), "summary counts open ports")
}

func TestDNSRecord_TypeName(t *testing.T) {
	testutil.AssertEqual(t, DNSRecord{Type: 12}.TypeName(), "PTR", "ptr")
	testutil.AssertEqual(t, DNSRecord{Type: 28}.TypeName(), "AAAA", "aaaa")
}
