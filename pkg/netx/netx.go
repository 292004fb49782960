package netx

import (
	"fmt"
	"math/bits"
	"net"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/projecteru2/yanet/pkg/terrors"
)

// NetmaskToPrefix converts a dotted-decimal netmask to a prefix length
// by summing the set bits of every octet.
func NetmaskToPrefix(netmask string) (int, error) {
	ip := net.ParseIP(netmask)
	if ip == nil || ip.To4() == nil {
		return 0, errors.Wrapf(terrors.ErrInvalidNetmask, "%s", netmask)
	}

	var prefix int
	for _, octet := range ip.To4() {
		prefix += bits.OnesCount8(octet)
	}
	return prefix, nil
}

// PrefixToNetmask .
func PrefixToNetmask(prefix int) string {
	if prefix > net.IPv4len*8 {
		prefix = net.IPv4len * 8
	}
	mask := net.CIDRMask(prefix, net.IPv4len*8)
	return net.IP(mask).String()
}

// IPv4Network returns the CIDR of the network containing addr, given a
// dotted-decimal netmask.
func IPv4Network(addr, netmask string) (string, error) {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return "", errors.Wrapf(terrors.ErrInvalidIPv4Addr, "%s", addr)
	}

	prefix, err := NetmaskToPrefix(netmask)
	if err != nil {
		return "", err
	}

	network := ip.To4().Mask(net.CIDRMask(prefix, net.IPv4len*8))
	return fmt.Sprintf("%s/%d", network, prefix), nil
}

// SplitCIDR splits "addr/prefix" notation into the address and the
// numeric prefix length.
func SplitCIDR(cidr string) (string, int, error) {
	addr, prefix, found := strings.Cut(cidr, "/")
	if !found {
		return "", 0, errors.Wrapf(terrors.ErrInvalidCIDR, "%s", cidr)
	}

	plen, err := strconv.Atoi(prefix)
	if err != nil {
		return "", 0, errors.Wrapf(terrors.ErrInvalidCIDR, "%s", cidr)
	}
	return addr, plen, nil
}

// Contains reports whether the network of cidr contains addr.
func Contains(cidr, addr string) bool {
	_, ipn, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return ipn.Contains(ip)
}

// IsLinkLocal reports whether addr belongs to the IPv4 or IPv6
// link-local range.
func IsLinkLocal(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsLinkLocalUnicast()
}
