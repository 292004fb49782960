package state

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/pkg/netx"
)

// DisabledIP is the fragment that force-disables one address family,
// used on bridge ports and OVS southbound interfaces.
func DisabledIP() *nmstate.IPConfig {
	return &nmstate.IPConfig{Enabled: false}
}

// BuildIPv4 computes the IPv4 family state for one network. autoDNS
// comes from the DNS builder and only matters for DHCP.
func BuildIPv4(cfg *netconf.NetworkConfig, autoDNS bool) (*nmstate.IPConfig, error) {
	switch {
	case cfg.IPv4Addr != "":
		prefix, err := netx.NetmaskToPrefix(cfg.IPv4Netmask)
		if err != nil {
			return nil, errors.Wrapf(err, "network %s", cfg.Name)
		}
		return &nmstate.IPConfig{
			Enabled: true,
			Address: []nmstate.IPAddress{{IP: cfg.IPv4Addr, PrefixLength: prefix}},
			DHCP:    lo.ToPtr(false),
		}, nil
	case cfg.DHCPv4:
		return dynamicIP(cfg, autoDNS, lo.ToPtr(true), nil), nil
	default:
		return DisabledIP(), nil
	}
}

// BuildIPv6 computes the IPv6 family state for one network. Static
// addresses arrive in CIDR notation.
func BuildIPv6(cfg *netconf.NetworkConfig, autoDNS bool) (*nmstate.IPConfig, error) {
	switch {
	case cfg.IPv6Addr != "":
		addr, prefix, err := netx.SplitCIDR(cfg.IPv6Addr)
		if err != nil {
			return nil, errors.Wrapf(err, "network %s", cfg.Name)
		}
		return &nmstate.IPConfig{
			Enabled:  true,
			Address:  []nmstate.IPAddress{{IP: addr, PrefixLength: prefix}},
			DHCP:     lo.ToPtr(false),
			Autoconf: lo.ToPtr(false),
		}, nil
	case cfg.DHCPv6 || cfg.IPv6AutoConf:
		return dynamicIP(cfg, autoDNS, lo.ToPtr(cfg.DHCPv6), lo.ToPtr(cfg.IPv6AutoConf)), nil
	default:
		return DisabledIP(), nil
	}
}

func dynamicIP(cfg *netconf.NetworkConfig, autoDNS bool, dhcp, autoconf *bool) *nmstate.IPConfig {
	tableID := nmstate.DefaultRouteTable
	if !cfg.DefaultRoute {
		tableID = GenerateTableID(cfg.NextHopIface())
	}
	return &nmstate.IPConfig{
		Enabled:          true,
		DHCP:             dhcp,
		Autoconf:         autoconf,
		AutoDNS:          lo.ToPtr(autoDNS),
		AutoGateway:      lo.ToPtr(true),
		AutoRoutes:       lo.ToPtr(true),
		AutoRouteTableID: lo.ToPtr(tableID),
	}
}
