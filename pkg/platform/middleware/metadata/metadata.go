// Package metadata resolves who is calling: the client address, honouring
// forwarding headers only from trusted proxies, and a short client description.
package metadata

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"credledger/pkg/requestcontext"
)

// MaxForwardedLength bounds the forwarding headers we are willing to parse.
const MaxForwardedLength = 512

type Config struct {
	// TrustedProxies may set X-Forwarded-For and X-Real-IP. Empty trusts none.
	TrustedProxies []netip.Prefix
}

func DefaultConfig() *Config {
	return &Config{}
}

// ParseTrustedProxies reads a comma separated list of CIDRs or bare addresses.
func ParseTrustedProxies(csv string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			addr, err := netip.ParseAddr(part)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy %q: %w", part, err)
			}
			out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", part, err)
		}
		out = append(out, prefix.Masked())
	}
	return out, nil
}

type Middleware struct {
	trusted []netip.Prefix
}

func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{trusted: cfg.TrustedProxies}
}

// Handler stores the client address and description in the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := "unknown"
		if addr, ok := m.ClientAddr(r); ok {
			ip = addr.String()
		}
		ctx := requestcontext.WithClientMetadata(r.Context(), ip, DescribeClient(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientAddr walks X-Forwarded-For from the nearest hop outwards and returns
// the first address not owned by a trusted proxy. Forwarding headers are
// ignored unless the peer itself is trusted.
func (m *Middleware) ClientAddr(r *http.Request) (netip.Addr, bool) {
	peer, ok := parseRemoteAddr(r.RemoteAddr)
	if !ok {
		return netip.Addr{}, false
	}
	if !m.trustedProxy(peer) {
		return peer, true
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= MaxForwardedLength {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return peer, true
			}
			hop = hop.Unmap()
			if !m.trustedProxy(hop) {
				return hop, true
			}
		}
		return peer, true
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxForwardedLength {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap(), true
		}
	}
	return peer, true
}

func (m *Middleware) trustedProxy(addr netip.Addr) bool {
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(remoteAddr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]")); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

// DescribeClient reduces a User-Agent header to "name/major" for SDKs and
// bots or "browser on os" for browsers.
func DescribeClient(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	if ua.Bot() || ua.OS() == "" {
		if major, _, _ := strings.Cut(version, "."); major != "" {
			return name + "/" + major
		}
		return name
	}
	return strings.TrimSpace(name + " on " + ua.OS())
}
