package state

import (
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/pkg/netx"
)

// GenerateSriovState builds the single-interface document that sets the
// number of virtual functions on one physical device.
func GenerateSriovState(device string, numVFs int) *nmstate.NetworkState {
	return &nmstate.NetworkState{
		Interfaces: []nmstate.Interface{{
			Name:  device,
			Type:  nmstate.TypeEthernet,
			State: nmstate.StateUp,
			Ethernet: &nmstate.EthernetConfig{
				SRIOV: &nmstate.SRIOVConfig{TotalVFs: numVFs},
			},
		}},
	}
}

// AddDynamicSourceRouteState builds the route/rule document installing
// source routing for a dynamically addressed interface once its lease is
// known.
func AddDynamicSourceRouteState(ifname, ipaddr, netmask, gateway string) (*nmstate.NetworkState, error) {
	network, err := netx.IPv4Network(ipaddr, netmask)
	if err != nil {
		return nil, err
	}

	tableID := GenerateTableID(ifname)
	routes := []nmstate.Route{
		{
			Destination:      nmstate.DefaultDestinationV4,
			NextHopAddress:   gateway,
			NextHopInterface: ifname,
			TableID:          tableID,
		},
		{
			Destination:      network,
			NextHopAddress:   ipaddr,
			NextHopInterface: ifname,
			TableID:          tableID,
		},
	}
	return &nmstate.NetworkState{
		Routes:     &nmstate.Routes{Config: routes},
		RouteRules: &nmstate.RouteRules{Config: sourceRouteRules(network, tableID)},
	}, nil
}

// RemoveDynamicSourceRouteState builds the removal document for every
// source-route table hanging off ifname in current state. A nil return
// means there is nothing to remove.
func RemoveDynamicSourceRouteState(current *CurrentState, ifname string) *nmstate.NetworkState {
	routes, rules := removedSourceRoutes(ifname, current)
	if len(routes) == 0 && len(rules) == 0 {
		return nil
	}

	doc := &nmstate.NetworkState{}
	if len(routes) > 0 {
		doc.Routes = &nmstate.Routes{Config: routes}
	}
	if len(rules) > 0 {
		doc.RouteRules = &nmstate.RouteRules{Config: rules}
	}
	return doc
}
