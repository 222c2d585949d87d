// Package privacy reduces client addresses to network prefixes before they
// reach logs.
package privacy

import "net/netip"

// Unknown is logged when the remote address cannot be parsed.
const Unknown = "unknown"

// Prefix lengths kept for each address family.
const (
	IPv4PrefixBits = 24
	IPv6PrefixBits = 48
)

// ClientPrefix reduces an http.Request RemoteAddr ("host:port" or a bare
// address) to its /24 (IPv4) or /48 (IPv6) network in CIDR form.
// IPv4-mapped IPv6 addresses are treated as IPv4.
func ClientPrefix(remoteAddr string) string {
	addr, ok := parseRemote(remoteAddr)
	if !ok {
		return Unknown
	}
	bits := IPv6PrefixBits
	if addr.Is4() {
		bits = IPv4PrefixBits
	}
	p, err := addr.Prefix(bits)
	if err != nil {
		return Unknown
	}
	return p.String()
}

func parseRemote(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap().WithZone(""), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap().WithZone(""), true
	}
	return netip.Addr{}, false
}
