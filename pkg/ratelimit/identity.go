package ratelimit

import "strings"

const (
	DefaultTrustedProxyHeader = "CF-Connecting-IP"
	UnknownIdentifier         = "unknown"
)

// ResolveIdentifier derives the client identifier used to attribute requests
// for admission decisions. Precedence, first non-empty wins: the configured
// trusted proxy header, the first element of X-Forwarded-For, X-Real-IP, the
// transport remote address, else "unknown".
//
// Headers are taken at face value. Without a deployment-level proxy trust
// boundary any of them can be spoofed; which header to trust is a
// configuration input, not something this function can verify.
func ResolveIdentifier(header func(string) string, remoteAddr, trustedProxyHeader string) string {
	if trustedProxyHeader == "" {
		trustedProxyHeader = DefaultTrustedProxyHeader
	}
	if v := header(trustedProxyHeader); v != "" {
		return v
	}
	if v := header("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if v := header("X-Real-IP"); v != "" {
		return v
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return UnknownIdentifier
}
