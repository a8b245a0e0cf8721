// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureHostnames contiene objetivos de tipo hostname.
var FixtureHostnames = []string{
	"example.com",
	"sub.example.com",
	"https://example.com:8443/",
	"example.com:8080",
}

// FixtureIPs contiene objetivos IPv4 (rangos de documentación).
var FixtureIPs = []string{
	"192.0.2.1",
	"198.51.100.7",
	"203.0.113.10",
	"8.8.8.8",
}

// FixtureCTResponse es una respuesta de crt.sh con comodín y duplicado.
const FixtureCTResponse = `[
  {"issuer_name":"C=US, O=Let's Encrypt","name_value":"*.example.com","not_before":"2024-01-01T00:00:00","not_after":"2024-04-01T00:00:00","serial_number":"01"},
  {"issuer_name":"C=US, O=Let's Encrypt","name_value":"sub.example.com","not_before":"2024-01-01T00:00:00","not_after":"2024-04-01T00:00:00","serial_number":"02"},
  {"issuer_name":"C=US, O=Let's Encrypt","name_value":"sub.example.com","not_before":"2024-01-01T00:00:00","not_after":"2024-04-01T00:00:00","serial_number":"03"}
]`

// FixtureRobots es un robots.txt con reglas y un sitemap declarado.
const FixtureRobots = `User-agent: *
Disallow: /admin
DISALLOW: /private/
Allow: /public
Sitemap: https://example.com/sitemap_index.xml
`

// FixtureServerHeaders contiene cabeceras de respuesta típicas (ya en minúsculas).
var FixtureServerHeaders = map[string]string{
	"server":       "Apache/2.4.49 (Ubuntu)",
	"x-powered-by": "PHP/5.6.40",
	"content-type": "text/html; charset=UTF-8",
}
