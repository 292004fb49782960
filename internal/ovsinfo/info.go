// Package ovsinfo reconstructs the legacy reporting view of OVS-switch
// networks from the previously persisted running config and the live
// current state. It is the reverse of the state-generation path and
// shares its wire constants so the two can never drift apart.
package ovsinfo

import (
	"fmt"
	"sort"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/internal/state"
	"github.com/projecteru2/yanet/pkg/netx"
)

// Build renders the report for every OVS-switch network in the running
// config. Inconsistent chain state degrades the affected entry's
// fidelity instead of failing the whole report.
func Build(running map[string]*netconf.NetworkConfig, current *state.CurrentState) *Report {
	report := NewReport()
	info := state.NewOvsInfo(current)

	names := make([]string, 0, len(running))
	for name, cfg := range running {
		if cfg.Ovs() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		addNetwork(report, running[name], info, current)
	}
	return report
}

func addNetwork(report *Report, cfg *netconf.NetworkConfig, info *state.OvsInfo, current *state.CurrentState) {
	base := cfg.BaseIface()
	southbound := base
	if cfg.Vlan != nil {
		southbound = fmt.Sprintf("%s.%d", base, *cfg.Vlan)
	}

	northbound, _ := current.Iface(cfg.Name)
	ipInfo := buildIPInfo(cfg.Name, northbound, current)

	network := &Network{
		IPInfo:     ipInfo,
		Bridged:    cfg.Bridged,
		Southbound: southbound,
		Ports:      bridgePortNames(info, base),
		STP:        false, // not tracked for OVS
		Switch:     netconf.SwitchOvs,
		MTU:        northbound.MTU,
		VlanID:     cfg.Vlan,
	}
	if cfg.Bridged {
		network.Iface = cfg.Name
		report.Bridges[cfg.Name] = &Bridge{Ports: []string{southbound}}
	} else {
		network.Iface = southbound
	}
	report.Networks[cfg.Name] = network

	if cfg.Vlan != nil {
		report.Vlans[southbound] = &Vlan{
			IPInfo: ipInfo,
			Iface:  base,
			VlanID: *cfg.Vlan,
			MTU:    northbound.MTU,
		}
	}
	backfillBaseEntity(report, base, current)
}

// backfillBaseEntity attributes the southbound device's own live MTU and
// IP facts to the map it belongs to: vlans, bondings or nics.
func backfillBaseEntity(report *Report, base string, current *state.CurrentState) {
	iface, ok := current.Iface(base)
	if !ok {
		return
	}
	ipInfo := buildIPInfo(base, iface, current)

	switch iface.Type {
	case nmstate.TypeVlan:
		vlan := &Vlan{IPInfo: ipInfo, MTU: iface.MTU}
		if iface.Vlan != nil {
			vlan.Iface = iface.Vlan.BaseIface
			vlan.VlanID = iface.Vlan.ID
		}
		report.Vlans[base] = vlan
	case nmstate.TypeBond:
		report.Bondings[base] = &Device{IPInfo: ipInfo, MTU: iface.MTU}
	default:
		report.Nics[base] = &Device{IPInfo: ipInfo, MTU: iface.MTU}
	}
}

func bridgePortNames(info *state.OvsInfo, southbound string) []string {
	bridge := info.BridgeBySouthbound[southbound]
	ports := info.PortsByBridge[bridge]
	names := make([]string, 0, len(ports))
	for _, port := range ports {
		names = append(names, port.Name)
	}
	sort.Strings(names)
	return names
}

func buildIPInfo(ifname string, iface nmstate.Interface, current *state.CurrentState) IPInfo {
	ipInfo := IPInfo{
		IPv4Addrs: []string{},
		IPv6Addrs: []string{},
	}

	if iface.IPv4 != nil {
		ipInfo.IPv4Addrs = addressStrings(iface.IPv4.Address)
		if iface.IPv4.DHCP != nil {
			ipInfo.DHCPv4 = *iface.IPv4.DHCP
		}
	}
	ipInfo.Gateway = findGateway(current.Routes(), ifname, false)
	if primary := selectPrimaryAddress(ipInfo.IPv4Addrs, ipInfo.Gateway); primary != "" {
		addr, prefix, err := netx.SplitCIDR(primary)
		if err == nil {
			ipInfo.IPv4Addr = addr
			ipInfo.IPv4Netmask = netx.PrefixToNetmask(prefix)
		}
	}
	ipInfo.IPv4DefaultRoute = hasDefaultRoute(current.Routes(), ifname, ipInfo.Gateway, false)

	if iface.IPv6 != nil {
		ipInfo.IPv6Addrs = addressStrings(iface.IPv6.Address)
		if iface.IPv6.DHCP != nil {
			ipInfo.DHCPv6 = *iface.IPv6.DHCP
		}
		if iface.IPv6.Autoconf != nil {
			ipInfo.IPv6AutoConf = *iface.IPv6.Autoconf
		}
	}
	ipInfo.IPv6Gateway = findGateway(current.Routes(), ifname, true)

	return ipInfo
}

func addressStrings(addrs []nmstate.IPAddress) []string {
	out := []string{}
	for _, addr := range addrs {
		if netx.IsLinkLocal(addr.IP) {
			continue
		}
		out = append(out, fmt.Sprintf("%s/%d", addr.IP, addr.PrefixLength))
	}
	return out
}

// findGateway attributes a gateway to ifname from the live default
// routes. Multiple distinct candidates are ambiguous and resolve to
// none rather than an arbitrary pick.
func findGateway(routes []nmstate.Route, ifname string, ipv6 bool) string {
	destination := nmstate.DefaultDestinationV4
	if ipv6 {
		destination = nmstate.DefaultDestinationV6
	}

	gateway := ""
	for _, route := range routes {
		if route.Destination != destination || route.NextHopInterface != ifname {
			continue
		}
		if gateway != "" && gateway != route.NextHopAddress {
			return ""
		}
		gateway = route.NextHopAddress
	}
	return gateway
}

// selectPrimaryAddress picks the address whose network contains the
// gateway; with a single address or no gateway the first one wins.
func selectPrimaryAddress(addrs []string, gateway string) string {
	if len(addrs) == 0 {
		return ""
	}
	if len(addrs) == 1 || gateway == "" {
		return addrs[0]
	}
	for _, addr := range addrs {
		if netx.Contains(addr, gateway) {
			return addr
		}
	}
	return ""
}

// hasDefaultRoute reports whether ifname carries the family's default
// route in the main table via the already-selected gateway. Source-route
// tables never qualify.
func hasDefaultRoute(routes []nmstate.Route, ifname, gateway string, ipv6 bool) bool {
	if gateway == "" {
		return false
	}
	destination := nmstate.DefaultDestinationV4
	if ipv6 {
		destination = nmstate.DefaultDestinationV6
	}
	for _, route := range routes {
		if route.Destination == destination &&
			route.TableID == nmstate.DefaultRouteTable &&
			route.NextHopInterface == ifname &&
			route.NextHopAddress == gateway {
			return true
		}
	}
	return false
}
