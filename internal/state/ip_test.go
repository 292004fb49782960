package state

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/pkg/terrors"
	"github.com/projecteru2/yanet/pkg/test/assert"
)

func TestBuildIPv4Static(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:        "net1",
		Nic:         "eth0",
		IPv4Addr:    "192.168.1.10",
		IPv4Netmask: "255.255.255.0",
		Switch:      netconf.SwitchLinuxBridge,
	}

	ip, err := BuildIPv4(cfg, false)
	assert.NilErr(t, err)
	assert.True(t, ip.Enabled)
	assert.Len(t, ip.Address, 1)
	assert.Equal(t, "192.168.1.10", ip.Address[0].IP)
	assert.Equal(t, 24, ip.Address[0].PrefixLength)
	assert.NotNil(t, ip.DHCP)
	assert.False(t, *ip.DHCP)
}

func TestBuildIPv4BadNetmask(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:        "net1",
		Nic:         "eth0",
		IPv4Addr:    "192.168.1.10",
		IPv4Netmask: "255.255.255",
		Switch:      netconf.SwitchLinuxBridge,
	}

	_, err := BuildIPv4(cfg, false)
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrInvalidNetmask))
}

func TestBuildIPv4DHCP(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:         "net1",
		Nic:          "eth0",
		DHCPv4:       true,
		DefaultRoute: true,
		Switch:       netconf.SwitchLinuxBridge,
	}

	ip, err := BuildIPv4(cfg, true)
	assert.NilErr(t, err)
	assert.True(t, ip.Enabled)
	assert.True(t, *ip.DHCP)
	assert.True(t, *ip.AutoDNS)
	assert.True(t, *ip.AutoGateway)
	assert.True(t, *ip.AutoRoutes)
	assert.Equal(t, nmstate.DefaultRouteTable, *ip.AutoRouteTableID)
}

func TestBuildIPv4DHCPNonDefaultRoute(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:   "net1",
		Nic:    "eth0",
		DHCPv4: true,
		Switch: netconf.SwitchLinuxBridge,
	}

	ip, err := BuildIPv4(cfg, false)
	assert.NilErr(t, err)
	assert.False(t, *ip.AutoDNS)
	assert.Equal(t, GenerateTableID("eth0"), *ip.AutoRouteTableID)
}

func TestBuildIPv4Disabled(t *testing.T) {
	cfg := &netconf.NetworkConfig{Name: "net1", Nic: "eth0", Switch: netconf.SwitchLinuxBridge}
	ip, err := BuildIPv4(cfg, false)
	assert.NilErr(t, err)
	assert.False(t, ip.Enabled)
	assert.Len(t, ip.Address, 0)
}

func TestBuildIPv6Static(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:     "net1",
		Nic:      "eth0",
		IPv6Addr: "fd00:1234::5/64",
		Switch:   netconf.SwitchLinuxBridge,
	}

	ip, err := BuildIPv6(cfg, false)
	assert.NilErr(t, err)
	assert.True(t, ip.Enabled)
	assert.Equal(t, "fd00:1234::5", ip.Address[0].IP)
	assert.Equal(t, 64, ip.Address[0].PrefixLength)
	assert.False(t, *ip.DHCP)
	assert.False(t, *ip.Autoconf)
}

func TestBuildIPv6BadCIDR(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:     "net1",
		Nic:      "eth0",
		IPv6Addr: "fd00:1234::5",
		Switch:   netconf.SwitchLinuxBridge,
	}

	_, err := BuildIPv6(cfg, false)
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrInvalidCIDR))
}

func TestBuildIPv6Autoconf(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:         "net1",
		Nic:          "eth0",
		IPv6AutoConf: true,
		Switch:       netconf.SwitchLinuxBridge,
	}

	ip, err := BuildIPv6(cfg, false)
	assert.NilErr(t, err)
	assert.True(t, ip.Enabled)
	assert.False(t, *ip.DHCP)
	assert.True(t, *ip.Autoconf)
	assert.Equal(t, GenerateTableID("eth0"), *ip.AutoRouteTableID)
}
