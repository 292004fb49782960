package state

import (
	"hash/adler32"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/pkg/netx"
)

// GenerateTableID derives a stable routing table ID from the next-hop
// interface name. The checksum keeps table IDs stable across runs without
// a central allocator; the collision risk is accepted as negligible.
func GenerateTableID(ifname string) uint32 {
	return adler32.Checksum([]byte(ifname))
}

// BuildRoutes computes the default-route entries needed to move one
// network from its previous gateway configuration to the desired one,
// for both address families. prev is nil for a brand-new network.
func BuildRoutes(cfg, prev *netconf.NetworkConfig) []nmstate.Route {
	routes := buildFamilyRoutes(cfg, prev, false)
	return append(routes, buildFamilyRoutes(cfg, prev, true)...)
}

func buildFamilyRoutes(cfg, prev *netconf.NetworkConfig, ipv6 bool) []nmstate.Route {
	// A removal has no desired gateway even when its config still carries
	// one; the interface removal takes the routes with it.
	gateway := ""
	if !cfg.Remove {
		gateway = familyGateway(cfg, ipv6)
	}
	prevGateway := ""
	prevDefaultRoute := false
	if prev != nil {
		prevGateway = familyGateway(prev, ipv6)
		prevDefaultRoute = prev.DefaultRoute
	}

	nextHop := cfg.NextHopIface()
	var routes []nmstate.Route

	if gateway != "" {
		if cfg.DefaultRoute {
			routes = append(routes, defaultGatewayRoute(gateway, nextHop, ipv6))
		} else {
			routes = append(routes, absentDefaultGatewayRoute(gateway, nextHop, ipv6))
		}
		if prevGateway != "" && prevGateway != gateway {
			routes = append(routes, absentDefaultGatewayRoute(prevGateway, nextHop, ipv6))
		}
		return routes
	}

	// No desired gateway: drop the stale default route when this network
	// previously supplied it and either lost the lease source (DHCP) or
	// was demoted from default-route ownership.
	if prevDefaultRoute && prevGateway != "" && !cfg.Remove &&
		(familyDynamic(cfg, ipv6) || !cfg.DefaultRoute) {
		routes = append(routes, absentDefaultGatewayRoute(prevGateway, nextHop, ipv6))
	}
	return routes
}

func familyGateway(cfg *netconf.NetworkConfig, ipv6 bool) string {
	if ipv6 {
		return cfg.IPv6Gateway
	}
	return cfg.Gateway
}

func familyDynamic(cfg *netconf.NetworkConfig, ipv6 bool) bool {
	if ipv6 {
		return cfg.DHCPv6 || cfg.IPv6AutoConf
	}
	return cfg.DHCPv4
}

func defaultDestination(ipv6 bool) string {
	if ipv6 {
		return nmstate.DefaultDestinationV6
	}
	return nmstate.DefaultDestinationV4
}

func defaultGatewayRoute(gateway, nextHop string, ipv6 bool) nmstate.Route {
	return nmstate.Route{
		Destination:      defaultDestination(ipv6),
		NextHopAddress:   gateway,
		NextHopInterface: nextHop,
		TableID:          nmstate.DefaultRouteTable,
	}
}

func absentDefaultGatewayRoute(gateway, nextHop string, ipv6 bool) nmstate.Route {
	route := defaultGatewayRoute(gateway, nextHop, ipv6)
	route.State = nmstate.RouteStateAbsent
	return route
}

// BuildSourceRoutes computes the IPv4 policy-routing churn for one
// network: removal of outdated per-interface tables and rules, then the
// new table/rule pairs when a static gateway is configured. Removal
// entries precede additions so that convergent application never sees
// two live entries for one table. IPv6 source routing is unsupported.
func BuildSourceRoutes(cfg, prev *netconf.NetworkConfig, current *CurrentState) ([]nmstate.Route, []nmstate.RouteRule, error) {
	var (
		routes []nmstate.Route
		rules  []nmstate.RouteRule
	)

	if shouldRemoveSourceRoutes(cfg, prev) {
		routes, rules = removedSourceRoutes(cfg.NextHopIface(), current)
	}

	prevGateway := ""
	if prev != nil {
		prevGateway = prev.Gateway
	}
	if cfg.Remove || cfg.Gateway == "" || cfg.Gateway == prevGateway {
		return routes, rules, nil
	}
	if cfg.IPv4Addr == "" || cfg.IPv4Netmask == "" {
		// Dynamic addressing: source routes follow the lease, not the
		// static config. See AddDynamicSourceRouteState.
		return routes, rules, nil
	}

	network, err := netx.IPv4Network(cfg.IPv4Addr, cfg.IPv4Netmask)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "network %s", cfg.Name)
	}

	nextHop := cfg.NextHopIface()
	tableID := GenerateTableID(nextHop)
	routes = append(routes,
		nmstate.Route{
			Destination:      nmstate.DefaultDestinationV4,
			NextHopAddress:   cfg.Gateway,
			NextHopInterface: nextHop,
			TableID:          tableID,
		},
		nmstate.Route{
			Destination:      network,
			NextHopAddress:   cfg.IPv4Addr,
			NextHopInterface: nextHop,
			TableID:          tableID,
		},
	)
	rules = append(rules, sourceRouteRules(network, tableID)...)
	return routes, rules, nil
}

func shouldRemoveSourceRoutes(cfg, prev *netconf.NetworkConfig) bool {
	if cfg.Remove {
		return true
	}
	if prev == nil {
		return false
	}
	if cfg.DHCPv4 != prev.DHCPv4 {
		return true
	}
	return prev.Gateway != "" && prev.Gateway != cfg.Gateway
}

// removedSourceRoutes scans the live routing state for every source-route
// table hanging off nextHop and marks its routes and rules absent.
func removedSourceRoutes(nextHop string, current *CurrentState) ([]nmstate.Route, []nmstate.RouteRule) {
	var routes []nmstate.Route
	tables := mapset.NewThreadUnsafeSet[uint32]()
	for _, route := range current.Routes() {
		if route.NextHopInterface != nextHop || route.TableID == nmstate.DefaultRouteTable {
			continue
		}
		tables.Add(route.TableID)
		route.State = nmstate.RouteStateAbsent
		routes = append(routes, route)
	}

	var rules []nmstate.RouteRule
	for _, rule := range current.Rules() {
		if !tables.Contains(rule.RouteTable) {
			continue
		}
		rule.State = nmstate.RouteStateAbsent
		rules = append(rules, rule)
	}
	return routes, rules
}

func sourceRouteRules(network string, tableID uint32) []nmstate.RouteRule {
	return []nmstate.RouteRule{
		{
			IPFrom:     network,
			Priority:   nmstate.SourceRoutePriority,
			RouteTable: tableID,
		},
		{
			IPTo:       network,
			Priority:   nmstate.SourceRoutePriority,
			RouteTable: tableID,
		},
	}
}
