// Package privacy truncates personal data before it reaches logs.
package privacy

import (
	"net/netip"
)

// AnonymizeIP keeps the network part of an address: the /24 of an IPv4
// address and the /48 of an IPv6 one. "192.168.1.47" becomes "192.168.1.0".
//
// Empty input yields "unknown" and unparseable input yields "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
