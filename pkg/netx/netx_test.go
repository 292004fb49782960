package netx

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yanet/pkg/terrors"
	"github.com/projecteru2/yanet/pkg/test/assert"
)

func TestNetmaskToPrefix(t *testing.T) {
	cases := map[string]int{
		"255.255.255.0":   24,
		"255.255.255.252": 30,
		"255.255.0.0":     16,
		"255.0.0.0":       8,
		"255.255.255.255": 32,
		"0.0.0.0":         0,
	}
	for netmask, exp := range cases {
		prefix, err := NetmaskToPrefix(netmask)
		assert.NilErr(t, err)
		assert.Equal(t, exp, prefix)
	}

	_, err := NetmaskToPrefix("255.255.256.0")
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrInvalidNetmask))

	_, err = NetmaskToPrefix("")
	assert.Err(t, err)
}

func TestPrefixToNetmask(t *testing.T) {
	assert.Equal(t, "255.255.255.0", PrefixToNetmask(24))
	assert.Equal(t, "255.255.255.252", PrefixToNetmask(30))
	assert.Equal(t, "0.0.0.0", PrefixToNetmask(0))
	assert.Equal(t, "255.255.255.255", PrefixToNetmask(40))
}

func TestIPv4Network(t *testing.T) {
	network, err := IPv4Network("192.168.1.110", "255.255.255.0")
	assert.NilErr(t, err)
	assert.Equal(t, "192.168.1.0/24", network)

	network, err = IPv4Network("10.20.30.40", "255.255.0.0")
	assert.NilErr(t, err)
	assert.Equal(t, "10.20.0.0/16", network)

	_, err = IPv4Network("fd00::1", "255.255.255.0")
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrInvalidIPv4Addr))
}

func TestSplitCIDR(t *testing.T) {
	addr, prefix, err := SplitCIDR("fd00:1234::1/64")
	assert.NilErr(t, err)
	assert.Equal(t, "fd00:1234::1", addr)
	assert.Equal(t, 64, prefix)

	_, _, err = SplitCIDR("fd00:1234::1")
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrInvalidCIDR))

	_, _, err = SplitCIDR("fd00::1/abc")
	assert.Err(t, err)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("192.168.1.0/24", "192.168.1.100"))
	assert.False(t, Contains("192.168.1.0/24", "192.168.2.100"))
	assert.False(t, Contains("not-a-cidr", "192.168.1.100"))
	assert.False(t, Contains("192.168.1.0/24", "not-an-ip"))
}

func TestIsLinkLocal(t *testing.T) {
	assert.True(t, IsLinkLocal("169.254.10.1"))
	assert.True(t, IsLinkLocal("fe80::1"))
	assert.False(t, IsLinkLocal("192.168.1.1"))
	assert.False(t, IsLinkLocal(""))
}
