package ovsinfo

import (
	"testing"

	"github.com/samber/lo"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/internal/state"
	"github.com/projecteru2/yanet/pkg/test/assert"
)

func reportCurrent() *state.CurrentState {
	return state.ParseCurrentState(&nmstate.NetworkState{
		Interfaces: []nmstate.Interface{
			{
				Name: "vdsmbr_deadbeef",
				Type: nmstate.TypeOvsBridge,
				Bridge: &nmstate.BridgeConfig{
					Port: []nmstate.BridgePort{
						{Name: "eth0"},
						{Name: "net1", Vlan: &nmstate.PortVlanConf{Mode: nmstate.OvsPortModeAccess, Tag: 100}},
					},
				},
			},
			{
				Name: "net1",
				Type: nmstate.TypeOvsInterface,
				MTU:  1500,
				IPv4: &nmstate.IPConfig{
					Enabled: true,
					Address: []nmstate.IPAddress{{IP: "192.168.1.10", PrefixLength: 24}},
					DHCP:    lo.ToPtr(false),
				},
			},
			{Name: "eth0", Type: nmstate.TypeEthernet, MTU: 1500},
		},
		Routes: &nmstate.Routes{
			Running: []nmstate.Route{
				{
					Destination:      nmstate.DefaultDestinationV4,
					NextHopAddress:   "192.168.1.1",
					NextHopInterface: "net1",
					TableID:          nmstate.DefaultRouteTable,
				},
			},
		},
	})
}

func TestBuildReport(t *testing.T) {
	running := map[string]*netconf.NetworkConfig{
		"net1": {
			Name:   "net1",
			Nic:    "eth0",
			Vlan:   lo.ToPtr(100),
			MTU:    1500,
			Switch: netconf.SwitchOvs,
		},
		"ignored": {
			Name:   "ignored",
			Nic:    "eth5",
			Switch: netconf.SwitchLinuxBridge,
		},
	}

	report := Build(running, reportCurrent())

	assert.Len(t, report.Networks, 1)
	network := report.Networks["net1"]
	assert.NotNil(t, network)
	assert.Equal(t, "eth0.100", network.Iface)
	assert.Equal(t, "eth0.100", network.Southbound)
	assert.False(t, network.Bridged)
	assert.Equal(t, netconf.SwitchOvs, network.Switch)
	assert.Equal(t, 1500, network.MTU)
	assert.Equal(t, []string{"eth0", "net1"}, network.Ports)
	assert.Equal(t, []string{"192.168.1.10/24"}, network.IPv4Addrs)
	assert.Equal(t, "192.168.1.10", network.IPv4Addr)
	assert.Equal(t, "255.255.255.0", network.IPv4Netmask)
	assert.Equal(t, "192.168.1.1", network.Gateway)
	assert.True(t, network.IPv4DefaultRoute)
	assert.False(t, network.DHCPv4)

	vlan := report.Vlans["eth0.100"]
	assert.NotNil(t, vlan)
	assert.Equal(t, "eth0", vlan.Iface)
	assert.Equal(t, 100, vlan.VlanID)

	nic := report.Nics["eth0"]
	assert.NotNil(t, nic)
	assert.Equal(t, 1500, nic.MTU)
}

func TestBuildReportBridged(t *testing.T) {
	running := map[string]*netconf.NetworkConfig{
		"net1": {
			Name:    "net1",
			Nic:     "eth0",
			Bridged: true,
			MTU:     1500,
			Switch:  netconf.SwitchOvs,
		},
	}

	report := Build(running, reportCurrent())

	network := report.Networks["net1"]
	assert.Equal(t, "net1", network.Iface)
	assert.Equal(t, "eth0", network.Southbound)
	assert.True(t, network.Bridged)

	bridge := report.Bridges["net1"]
	assert.NotNil(t, bridge)
	assert.Equal(t, []string{"eth0"}, bridge.Ports)
}

func TestSelectPrimaryAddress(t *testing.T) {
	addrs := []string{"10.0.0.5/8", "192.168.1.10/24"}

	assert.Equal(t, "192.168.1.10/24", selectPrimaryAddress(addrs, "192.168.1.1"))
	assert.Equal(t, "10.0.0.5/8", selectPrimaryAddress(addrs, "10.1.2.3"))
	assert.Equal(t, "10.0.0.5/8", selectPrimaryAddress(addrs, ""))
	assert.Equal(t, "", selectPrimaryAddress(addrs, "172.16.0.1"))
	assert.Equal(t, "10.0.0.5/8", selectPrimaryAddress(addrs[:1], "172.16.0.1"))
	assert.Equal(t, "", selectPrimaryAddress(nil, "192.168.1.1"))
}

func TestFindGateway(t *testing.T) {
	routes := []nmstate.Route{
		{Destination: nmstate.DefaultDestinationV4, NextHopAddress: "192.168.1.1", NextHopInterface: "net1"},
		{Destination: "10.0.0.0/8", NextHopAddress: "192.168.1.254", NextHopInterface: "net1"},
	}
	assert.Equal(t, "192.168.1.1", findGateway(routes, "net1", false))
	assert.Equal(t, "", findGateway(routes, "net2", false))

	ambiguous := append(routes, nmstate.Route{
		Destination:      nmstate.DefaultDestinationV4,
		NextHopAddress:   "192.168.1.2",
		NextHopInterface: "net1",
	})
	assert.Equal(t, "", findGateway(ambiguous, "net1", false))
}

func TestHasDefaultRoute(t *testing.T) {
	routes := []nmstate.Route{
		{
			Destination:      nmstate.DefaultDestinationV4,
			NextHopAddress:   "192.168.1.1",
			NextHopInterface: "net1",
			TableID:          nmstate.DefaultRouteTable,
		},
		{
			Destination:      nmstate.DefaultDestinationV4,
			NextHopAddress:   "10.0.0.1",
			NextHopInterface: "net2",
			TableID:          5000,
		},
	}
	assert.True(t, hasDefaultRoute(routes, "net1", "192.168.1.1", false))
	// a source-route table entry never counts as the default route
	assert.False(t, hasDefaultRoute(routes, "net2", "10.0.0.1", false))
	assert.False(t, hasDefaultRoute(routes, "net1", "", false))
}

func TestAddressStringsSkipsLinkLocal(t *testing.T) {
	addrs := addressStrings([]nmstate.IPAddress{
		{IP: "fe80::1", PrefixLength: 64},
		{IP: "fd00::5", PrefixLength: 64},
	})
	assert.Equal(t, []string{"fd00::5/64"}, addrs)
}
