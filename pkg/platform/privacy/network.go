// Package privacy reduces request metadata to what logs are allowed to keep.
package privacy

import "net/netip"

const (
	ipv4Bits = 24
	ipv6Bits = 48
)

// ClientNetwork masks ip to its /24 (IPv4) or /48 (IPv6) network and returns
// it in CIDR form. IPv4-mapped IPv6 addresses are treated as IPv4.
func ClientNetwork(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.String()
}
