package utils

import (
	"net"
	"net/http"
	"strings"
)

// UnknownAddress is used when a request carries no address header.
const UnknownAddress = "localhost"

// ClientIP resolves the originating address of a signup request. Headers are
// consulted in a fixed order: X-Forwarded-For (first entry, loopback "::1"
// ignored), X-Real-IP, then CF-Connecting-IP.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" && forwarded != "::1" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := NormalizeIP(first); ip != "" {
			return ip
		}
	}

	if ip := NormalizeIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if ip := NormalizeIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	return UnknownAddress
}

// TrustedClientIP applies ClientIP only when the direct peer is inside one of
// trustedProxies; other peers are keyed by their own address. An empty list
// trusts every peer.
func TrustedClientIP(r *http.Request, trustedProxies []string) string {
	if len(trustedProxies) == 0 {
		return ClientIP(r)
	}
	peer := NormalizeIP(r.RemoteAddr)
	if IsAllowedIP(peer, trustedProxies) {
		return ClientIP(r)
	}
	if peer == "" {
		return UnknownAddress
	}
	return peer
}

// NormalizeIP trims raw, drops a port and brackets, and canonicalizes parseable
// IPs so that one client maps to one counter key.
func NormalizeIP(raw string) string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")

	if parsed := net.ParseIP(addr); parsed != nil {
		if v4 := parsed.To4(); v4 != nil {
			return v4.String()
		}
		return parsed.String()
	}
	return strings.ToLower(addr)
}

// IsAllowedIP checking if the IP address enters the allowed CIDR subnetwork
func IsAllowedIP(ip string, allowedCIDRs []string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	for _, cidr := range allowedCIDRs {
		_, netblock, err := net.ParseCIDR(cidr)
		if err != nil {
			// Skip invalid CIDR
			continue
		}
		if netblock.Contains(parsed) {
			return true
		}
	}
	return false
}
