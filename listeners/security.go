// Package listeners provides concrete JobListener/TriggerListener/
// SchedulerListener implementations that deliver fire/completion events to
// outside systems (webhooks, Slack, email), scoped by core.Matcher.
package listeners

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// blockedHosts contains hostnames that should never be reachable from a
// webhook delivery, adapted from the teacher's webhook_security.go.
var blockedHosts = map[string]bool{
	"localhost":                true,
	"127.0.0.1":                true,
	"::1":                      true,
	"0.0.0.0":                  true,
	"metadata.google":          true,
	"metadata":                 true,
	"169.254.169.254":          true,
	"metadata.google.internal": true,
}

var blockedPrefixes = []string{
	"10.",
	"192.168.",
	"172.16.", "172.17.", "172.18.", "172.19.",
	"172.20.", "172.21.", "172.22.", "172.23.",
	"172.24.", "172.25.", "172.26.", "172.27.",
	"172.28.", "172.29.", "172.30.", "172.31.",
	"fd", "fe80:", "::ffff:",
}

var blockedSuffixes = []string{
	".local", ".internal", ".localhost", ".localdomain", ".corp", ".home", ".lan",
}

// ValidateWebhookURL rejects URLs that could be used for SSRF against
// internal infrastructure or cloud metadata endpoints.
func ValidateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != schemeHTTP && u.Scheme != schemeHTTPS {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	lowerHost := strings.ToLower(hostname)
	if blockedHosts[lowerHost] {
		return fmt.Errorf("access to %q is not allowed (blocked host)", hostname)
	}
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(lowerHost, prefix) {
			return fmt.Errorf("access to %q is not allowed (private network)", hostname)
		}
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(lowerHost, suffix) {
			return fmt.Errorf("access to %q is not allowed (internal domain)", hostname)
		}
	}
	return nil
}
