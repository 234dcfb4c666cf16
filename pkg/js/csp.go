package js

import (
	"strings"

	"tinybrowser/pkg/net"
)

// parseCSPAllowlist extracts the http(s) origins a Content-Security-Policy
// response header allowlists, for the cross-origin XHR check (§6
// "CSP/cross-origin XHR checks"). Directive names and 'self'/'none' keyword
// sources are ignored; only absolute http(s) URLs are collected, each
// reduced to its origin.
func parseCSPAllowlist(header string) map[string]bool {
	allow := make(map[string]bool)
	for _, tok := range strings.Fields(header) {
		if strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://") {
			if origin, err := net.Origin(tok); err == nil {
				allow[origin] = true
			}
		}
	}
	return allow
}
