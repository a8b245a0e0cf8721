// Package fingerprint guesses operating system, server and CMS from HTTP
// response headers with fixed rules. Header names must be lowercase.
package fingerprint

import (
	"strings"

	"webnmap/internal/core/domain"
)

const unknown = "Unknown"

// serverRule se aplica sobre la cabecera Server en minúsculas. Gana la
// primera que coincide.
type serverRule struct {
	needles    []string
	os         string
	confidence int
	capped     bool // confidence es un máximo, no un valor fijo
}

var serverRules = []serverRule{
	{needles: []string{"ubuntu"}, os: "Linux (Ubuntu)", confidence: 90},
	{needles: []string{"debian"}, os: "Linux (Debian)", confidence: 90},
	{needles: []string{"centos"}, os: "Linux (CentOS)", confidence: 90},
	{needles: []string{"fedora"}, os: "Linux (Fedora)", confidence: 90},
	{needles: []string{"win32", "microsoft-iis"}, os: "Windows Server", confidence: 95},
	{needles: []string{"apache"}, os: "Linux/Unix (Apache)", confidence: 60, capped: true},
	{needles: []string{"nginx"}, os: "Linux/BSD (Nginx)", confidence: 60, capped: true},
	{needles: []string{"cloudflare"}, os: "Cloudflare Edge (Linux)", confidence: 80},
	{needles: []string{"litespeed"}, os: "Linux (LiteSpeed)", confidence: 85},
}

// infraRules detectan plataformas por la presencia de una cabecera.
var infraRules = []struct {
	header     string
	os         string
	confidence int
}{
	{"x-vcl-host", "Fastly Edge", 90},
	{"x-vercel-id", "Vercel (Serverless)", 95},
	{"x-amz-cf-id", "AWS CloudFront", 80},
}

// Analyze aplica las reglas a las cabeceras.
func Analyze(headers map[string]string) domain.Fingerprint {
	fp := domain.Fingerprint{OS: unknown, Server: unknown, CMS: unknown}

	server := headers["server"]
	if server != "" {
		fp.Server = server
		lower := strings.ToLower(server)
	rules:
		for _, rule := range serverRules {
			for _, needle := range rule.needles {
				if strings.Contains(lower, needle) {
					fp.OS = rule.os
					if rule.capped {
						fp.Confidence = max(fp.Confidence, rule.confidence)
					} else {
						fp.Confidence = rule.confidence
					}
					break rules
				}
			}
		}
	}

	if powered := headers["x-powered-by"]; powered != "" {
		switch {
		case strings.Contains(powered, "ASP.NET"):
			fp.OS = "Windows"
			fp.Confidence = 95
		case strings.Contains(powered, "PHP"):
			if fp.OS == unknown {
				fp.OS = "Linux/Unix"
			}
			fp.Confidence = max(fp.Confidence, 50)
		case strings.Contains(powered, "Express"):
			fp.OS = "Linux/Node.js"
			fp.Confidence = 70
		}
	}

	for _, rule := range infraRules {
		if _, ok := headers[rule.header]; ok {
			fp.OS = rule.os
			fp.Confidence = rule.confidence
		}
	}

	fp.CMS = detectCMS(headers, server)
	if fp.CMS == "WordPress" && fp.OS == unknown {
		fp.OS = "Linux (likely)"
	}
	return fp
}

func detectCMS(headers map[string]string, server string) string {
	generator := headers["x-generator"]
	if generator == "" {
		generator = headers["wp-generator"]
	}
	if generator != "" {
		if strings.Contains(strings.ToLower(generator), "wordpress") {
			return "WordPress"
		}
		return generator
	}
	if strings.Contains(strings.ToLower(server), "wordpress") {
		return "WordPress"
	}
	return unknown
}
