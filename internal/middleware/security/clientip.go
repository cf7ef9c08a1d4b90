package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPResolver extracts the client address, trusting forwarding headers only
// from configured proxy networks.
type IPResolver struct {
	trustedProxies []*net.IPNet
}

// NewIPResolver trusts loopback and private networks plus any extra CIDRs.
func NewIPResolver(extra ...string) (*IPResolver, error) {
	r := &IPResolver{}
	for _, cidr := range append([]string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}, extra...) {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %s: %w", cidr, err)
		}
		r.trustedProxies = append(r.trustedProxies, network)
	}
	return r, nil
}

// ClientIP returns the request's client address.
func (r *IPResolver) ClientIP(req *http.Request) string {
	directIP, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		directIP = req.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !r.trusted(parsed) {
		return directIP
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(req.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (r *IPResolver) trusted(ip net.IP) bool {
	for _, network := range r.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
